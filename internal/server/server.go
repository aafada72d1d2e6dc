package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AHorihuela/juno-sub001/internal/memory"
)

// Server is the junomem HTTP API — the IPC surface consumed by the
// command processor, the recorder pipeline, and the settings UI.
type Server struct {
	manager *memory.Manager
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server over an initialized memory manager.
func New(manager *memory.Manager, version string) *Server {
	s := &Server{
		manager: manager,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/memory", func(r chi.Router) {
			r.Post("/items", s.handleAddItem)
			r.Get("/items", s.handleListItems)
			r.Get("/items/{itemID}", s.handleGetItem)
			r.Post("/items/{itemID}/access", s.handleAccessItem)
			r.Delete("/items/{itemID}", s.handleDeleteItem)
			r.Post("/items/{itemID}/promote", s.handlePromoteItem)
			r.Post("/items/{itemID}/demote", s.handleDemoteItem)

			r.Get("/relevant", s.handleRelevant)
			r.Delete("/tiers/{tier}", s.handleClearTier)
			r.Delete("/", s.handleClearAll)
			r.Post("/save", s.handleSave)
			r.Get("/stats", s.handleMemoryStats)
		})

		r.Get("/usage", s.handleGetUsage)
		r.Post("/usage", s.handleTrackUsage)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
