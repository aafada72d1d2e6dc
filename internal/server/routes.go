package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AHorihuela/juno-sub001/internal/memory"
)

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content    string              `json:"content"`
		Usefulness float64             `json:"usefulness"`
		Metadata   memory.ItemMetadata `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, `{"error":"content required"}`, http.StatusBadRequest)
		return
	}

	item, err := s.manager.AddMemoryItem(req.Content, req.Usefulness, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	var items []*memory.MemoryItem
	var err error

	if tier := r.URL.Query().Get("tier"); tier != "" {
		items, err = s.manager.GetMemoryByTier(tier)
	} else {
		items, err = s.manager.GetAllMemoryItems()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []*memory.MemoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(items),
		"items": items,
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.manager.GetMemoryItemByID(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if item == nil {
		http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleAccessItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.manager.AccessMemoryItem(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if item == nil {
		http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ok, err := s.manager.DeleteMemoryItem(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handlePromoteItem(w http.ResponseWriter, r *http.Request) {
	found, err := s.manager.PromoteMemoryItem(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

func (s *Server) handleDemoteItem(w http.ResponseWriter, r *http.Request) {
	found, err := s.manager.DemoteMemoryItem(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "demoted"})
}

func (s *Server) handleRelevant(w http.ResponseWriter, r *http.Request) {
	command := r.URL.Query().Get("command")
	if command == "" {
		http.Error(w, `{"error":"command parameter required"}`, http.StatusBadRequest)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	items, err := s.manager.FindRelevantMemories(command, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []*memory.MemoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"command": command,
		"count":   len(items),
		"items":   items,
	})
}

func (s *Server) handleClearTier(w http.ResponseWriter, r *http.Request) {
	n, err := s.manager.ClearMemoryTier(chi.URLParam(r, "tier"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared", "removed": n})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.manager.ClearAllMemory()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared", "removed": n})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.SaveMemory(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleMemoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.manager.GetMemoryStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	record, err := s.manager.GetAIUsageStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleTrackUsage(w http.ResponseWriter, r *http.Request) {
	var usage memory.TokenUsage
	if err := json.NewDecoder(r.Body).Decode(&usage); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	if err := s.manager.TrackAIUsage(usage); err != nil {
		writeError(w, err)
		return
	}
	record, err := s.manager.GetAIUsageStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// writeError maps memory subsystem errors onto HTTP statuses: tier and
// argument errors are the caller's fault (400), an uninitialized manager
// is a service problem (503), storage failures are server errors (500).
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var me *memory.Error
	if errors.As(err, &me) {
		switch me.Kind {
		case memory.KindTier, memory.KindAccess:
			status = http.StatusBadRequest
		case memory.KindMemory:
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"error": me.Record()})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
