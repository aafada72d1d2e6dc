package memory

import (
	"testing"
	"time"
)

// testConfig implements the Config collaborator over a temp directory.
type testConfig string

func (c testConfig) AppDataPath() string { return string(c) }

func tempConfig(t *testing.T) testConfig {
	t.Helper()
	return testConfig(t.TempDir())
}

// fakeContext records invalidation notifications.
type fakeContext struct {
	deleted []string
	cleared []string
}

func (f *fakeContext) DeleteMemoryItem(id string) { f.deleted = append(f.deleted, id) }
func (f *fakeContext) ClearMemory(scope string)   { f.cleared = append(f.cleared, scope) }

// seedItem builds a long-term style item with fixed timestamps, suitable
// for persistence round-trips.
func seedItem(id, content string, score float64) *MemoryItem {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &MemoryItem{
		ID:             id,
		Content:        content,
		Metadata:       ItemMetadata{Tier: TierLongTerm, Type: "command", Source: "recorder"},
		Usefulness:     5,
		CreatedAt:      created,
		LastAccessed:   created,
		AccessCount:    1,
		RelevanceScore: score,
	}
}
