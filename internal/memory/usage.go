package memory

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	usageDirName   = "ai-usage"
	usageFileName  = "usage-stats.json"
	defaultModel   = "unknown"
	dailyKeyLayout = "2006-01-02"
)

// TokenUsage is one AI call's token accounting.
type TokenUsage struct {
	PromptTokens     int64  `json:"promptTokens"`
	CompletionTokens int64  `json:"completionTokens"`
	Model            string `json:"model"`
}

// UsageRecord is the persisted AI usage accounting. Total, daily, and
// per-model counts survive restarts; sessionTokens never does.
type UsageRecord struct {
	TotalTokens   int64            `json:"totalTokens"`
	SessionTokens int64            `json:"sessionTokens"`
	DailyUsage    map[string]int64 `json:"dailyUsage"`
	ModelUsage    map[string]int64 `json:"modelUsage"`
	LastUpdated   time.Time        `json:"lastUpdated"`
}

// UsageTracker accounts AI token usage, persisted separately from the
// memory store. Usage is a diagnostic metric: save failures are logged
// and swallowed so they can never fail the caller's primary operation.
type UsageTracker struct {
	initialized bool
	path        string
	record      UsageRecord
}

// NewUsageTracker returns an uninitialized tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Initialize resolves the usage file under the app-data directory and
// loads any persisted record, forcing sessionTokens back to zero and
// stamping lastUpdated to now. Idempotent.
func (t *UsageTracker) Initialize(cfg Config) error {
	if t.initialized {
		return nil
	}
	if cfg == nil {
		return &Error{Kind: KindStats, Message: "usage tracker requires a config collaborator"}
	}
	dir := filepath.Join(cfg.AppDataPath(), usageDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Kind: KindStats, Message: "create ai-usage directory", Cause: err}
	}
	t.path = filepath.Join(dir, usageFileName)

	t.record = UsageRecord{
		DailyUsage: map[string]int64{},
		ModelUsage: map[string]int64{},
	}
	if data, err := os.ReadFile(t.path); err == nil {
		var loaded UsageRecord
		if err := json.Unmarshal(data, &loaded); err != nil {
			log.Printf("usage: discarding unreadable %s: %v", t.path, err)
		} else {
			t.record = loaded
			if t.record.DailyUsage == nil {
				t.record.DailyUsage = map[string]int64{}
			}
			if t.record.ModelUsage == nil {
				t.record.ModelUsage = map[string]int64{}
			}
		}
	}
	// Session tokens never survive a restart.
	t.record.SessionTokens = 0
	t.record.LastUpdated = time.Now()
	t.initialized = true
	return nil
}

// TrackUsage adds one call's tokens to every aggregate and persists the
// record immediately. Write-through on every call is deliberate:
// durability of a lightweight metric over I/O efficiency.
func (t *UsageTracker) TrackUsage(u TokenUsage) error {
	if err := t.ensure("trackUsage"); err != nil {
		return err
	}
	if u.PromptTokens < 0 {
		u.PromptTokens = 0
	}
	if u.CompletionTokens < 0 {
		u.CompletionTokens = 0
	}
	model := u.Model
	if model == "" {
		model = defaultModel
	}

	total := u.PromptTokens + u.CompletionTokens
	t.record.TotalTokens += total
	t.record.SessionTokens += total
	t.record.DailyUsage[time.Now().Format(dailyKeyLayout)] += total
	t.record.ModelUsage[model] += total
	t.record.LastUpdated = time.Now()

	t.saveStats()
	return nil
}

// GetStats returns a read-only copy of the full usage record.
func (t *UsageTracker) GetStats() (UsageRecord, error) {
	if err := t.ensure("getStats"); err != nil {
		return UsageRecord{}, err
	}
	out := t.record
	out.DailyUsage = copyCounts(t.record.DailyUsage)
	out.ModelUsage = copyCounts(t.record.ModelUsage)
	return out, nil
}

// GetDailyUsage returns a copy of the per-day token counts.
func (t *UsageTracker) GetDailyUsage() (map[string]int64, error) {
	if err := t.ensure("getDailyUsage"); err != nil {
		return nil, err
	}
	return copyCounts(t.record.DailyUsage), nil
}

// GetModelUsage returns a copy of the per-model token counts.
func (t *UsageTracker) GetModelUsage() (map[string]int64, error) {
	if err := t.ensure("getModelUsage"); err != nil {
		return nil, err
	}
	return copyCounts(t.record.ModelUsage), nil
}

// GetSessionUsage returns the tokens used since this process started.
func (t *UsageTracker) GetSessionUsage() (int64, error) {
	if err := t.ensure("getSessionUsage"); err != nil {
		return 0, err
	}
	return t.record.SessionTokens, nil
}

// saveStats persists the record and reports success. Failures are
// logged, never propagated — usage tracking must not fail the caller.
func (t *UsageTracker) saveStats() bool {
	data, err := json.MarshalIndent(t.record, "", "  ")
	if err != nil {
		log.Printf("usage: encode %s: %v", t.path, err)
		return false
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		log.Printf("usage: write %s: %v", t.path, err)
		return false
	}
	return true
}

func (t *UsageTracker) ensure(op string) error {
	if !t.initialized {
		return (&Error{Kind: KindStats, Message: "usage tracker used before initialization"}).With("operation", op)
	}
	return nil
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
