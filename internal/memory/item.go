package memory

import "time"

// Tier names. Working is the smallest and most volatile tier; long-term
// is the largest and the only one persisted to disk.
const (
	TierWorking   = "working"
	TierShortTerm = "shortTerm"
	TierLongTerm  = "longTerm"
)

// tierNames lists the tiers in promotion order, working → longTerm.
var tierNames = []string{TierWorking, TierShortTerm, TierLongTerm}

// ValidTier reports whether name is one of the three tier names.
func ValidTier(name string) bool {
	return name == TierWorking || name == TierShortTerm || name == TierLongTerm
}

// ItemMetadata describes where an item lives and where it came from.
// An item belongs to exactly one tier at a time.
type ItemMetadata struct {
	Tier   string `json:"tier"`
	Type   string `json:"type,omitempty"`   // e.g. "command", "clipboard", "highlight"
	Source string `json:"source,omitempty"` // e.g. "recorder", "ipc", "processor"
}

// MemoryItem is a single contextual memory: a recent command, a
// clipboard or highlight snapshot, or a usage-history entry.
type MemoryItem struct {
	ID             string       `json:"id"`
	Content        string       `json:"content"`
	Metadata       ItemMetadata `json:"metadata"`
	Usefulness     float64      `json:"usefulness"` // caller hint, 0–10
	CreatedAt      time.Time    `json:"createdAt"`
	LastAccessed   time.Time    `json:"lastAccessed"`
	AccessCount    int          `json:"accessCount"`
	RelevanceScore float64      `json:"relevanceScore"` // always in [0,1]
}

// Clone returns a shallow copy of the item.
func (it *MemoryItem) Clone() *MemoryItem {
	c := *it
	return &c
}
