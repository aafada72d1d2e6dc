package memory

import (
	"time"

	"github.com/google/uuid"
)

// TierCapacities fixes the maximum size of each tier. Working is the
// smallest and most volatile; long-term the largest and most durable.
type TierCapacities struct {
	Working   int
	ShortTerm int
	LongTerm  int
}

// DefaultCapacities returns the standard tier sizes.
func DefaultCapacities() TierCapacities {
	return TierCapacities{Working: 50, ShortTerm: 200, LongTerm: 1000}
}

func (c TierCapacities) of(tier string) int {
	switch tier {
	case TierWorking:
		return c.Working
	case TierShortTerm:
		return c.ShortTerm
	default:
		return c.LongTerm
	}
}

// Tier event kinds.
const (
	EventPromoted = "promoted"
	EventDemoted  = "demoted"
	EventEvicted  = "evicted"
)

// TierEvent reports a side effect of a tier mutation — an overflow
// promotion, a demotion, or a capacity eviction — so the orchestrator
// can account for it explicitly.
type TierEvent struct {
	Kind   string
	ItemID string
	From   string
	To     string // empty for evictions
}

// TierManager owns the three ordered tier collections and enforces
// their capacities. It is not safe for concurrent use on its own; the
// Manager serializes all access.
type TierManager struct {
	caps  TierCapacities
	tiers map[string][]*MemoryItem
}

// NewTierManager creates an empty tiered store. Non-positive capacities
// fall back to the defaults.
func NewTierManager(caps TierCapacities) *TierManager {
	def := DefaultCapacities()
	if caps.Working <= 0 {
		caps.Working = def.Working
	}
	if caps.ShortTerm <= 0 {
		caps.ShortTerm = def.ShortTerm
	}
	if caps.LongTerm <= 0 {
		caps.LongTerm = def.LongTerm
	}
	return &TierManager{
		caps: caps,
		tiers: map[string][]*MemoryItem{
			TierWorking:   {},
			TierShortTerm: {},
			TierLongTerm:  {},
		},
	}
}

// AddToMemory inserts new content into the working tier with a fresh ID
// and an initial relevance score. On overflow the lowest-scoring
// working item is pushed into short-term; if short-term then overflows
// too, its lowest-scoring item loses its place entirely.
func (m *TierManager) AddToMemory(content string, usefulness float64, meta ItemMetadata) (*MemoryItem, []TierEvent) {
	now := time.Now()
	meta.Tier = TierWorking
	item := &MemoryItem{
		ID:           uuid.NewString(),
		Content:      content,
		Metadata:     meta,
		Usefulness:   usefulness,
		CreatedAt:    now,
		LastAccessed: now,
	}
	item.RelevanceScore = CalculateInitialScore(item)

	m.tiers[TierWorking] = append(m.tiers[TierWorking], item)

	var events []TierEvent
	if len(m.tiers[TierWorking]) > m.caps.Working {
		loser := m.removeLowest(TierWorking)
		loser.Metadata.Tier = TierShortTerm
		m.tiers[TierShortTerm] = append(m.tiers[TierShortTerm], loser)
		events = append(events, TierEvent{Kind: EventPromoted, ItemID: loser.ID, From: TierWorking, To: TierShortTerm})

		if len(m.tiers[TierShortTerm]) > m.caps.ShortTerm {
			evicted := m.removeLowest(TierShortTerm)
			events = append(events, TierEvent{Kind: EventEvicted, ItemID: evicted.ID, From: TierShortTerm})
		}
	}
	return item, events
}

// FindMemoryItemByID returns the item, or nil when absent — a missing
// item is an expected condition, not an error.
func (m *TierManager) FindMemoryItemByID(id string) *MemoryItem {
	for _, tier := range tierNames {
		for _, it := range m.tiers[tier] {
			if it.ID == id {
				return it
			}
		}
	}
	return nil
}

// AccessMemoryItem bumps the item's access accounting and recomputes
// its relevance score. Returns nil when the item does not exist.
func (m *TierManager) AccessMemoryItem(id string) *MemoryItem {
	item := m.FindMemoryItemByID(id)
	if item == nil {
		return nil
	}
	item.AccessCount++
	item.LastAccessed = time.Now()
	item.RelevanceScore = CalculateScore(item)
	return item
}

// DeleteMemoryItem removes an item, reporting the tier it lived in and
// whether it existed at all.
func (m *TierManager) DeleteMemoryItem(id string) (string, bool) {
	for _, tier := range tierNames {
		for i, it := range m.tiers[tier] {
			if it.ID == id {
				m.tiers[tier] = append(m.tiers[tier][:i], m.tiers[tier][i+1:]...)
				return tier, true
			}
		}
	}
	return "", false
}

// PromoteMemoryItem moves an item one tier toward longer-lived storage.
// Promoting past the long-term tier is a no-op. Returns nil when the
// item does not exist.
func (m *TierManager) PromoteMemoryItem(id string) (*MemoryItem, []TierEvent) {
	return m.shift(id, +1, EventPromoted)
}

// DemoteMemoryItem moves an item one tier toward shorter-lived storage.
// Demoting past the working tier is a no-op.
func (m *TierManager) DemoteMemoryItem(id string) (*MemoryItem, []TierEvent) {
	return m.shift(id, -1, EventDemoted)
}

func (m *TierManager) shift(id string, dir int, kind string) (*MemoryItem, []TierEvent) {
	item := m.FindMemoryItemByID(id)
	if item == nil {
		return nil, nil
	}
	from := item.Metadata.Tier
	to := adjacentTier(from, dir)
	if to == "" {
		return item, nil
	}

	m.detach(item, from)
	item.Metadata.Tier = to
	m.tiers[to] = append(m.tiers[to], item)

	events := []TierEvent{{Kind: kind, ItemID: item.ID, From: from, To: to}}
	if len(m.tiers[to]) > m.caps.of(to) {
		evicted := m.removeLowest(to)
		events = append(events, TierEvent{Kind: EventEvicted, ItemID: evicted.ID, From: to})
	}
	return item, events
}

// GetMemoryTier returns a copy of one tier's item list.
func (m *TierManager) GetMemoryTier(name string) ([]*MemoryItem, error) {
	if !ValidTier(name) {
		return nil, (&Error{Kind: KindTier, Message: "unknown memory tier"}).With("tier", name)
	}
	items := m.tiers[name]
	out := make([]*MemoryItem, len(items))
	copy(out, items)
	return out, nil
}

// ClearMemoryTier empties one tier and returns how many items it held.
func (m *TierManager) ClearMemoryTier(name string) (int, error) {
	if !ValidTier(name) {
		return 0, (&Error{Kind: KindTier, Message: "unknown memory tier"}).With("tier", name)
	}
	n := len(m.tiers[name])
	m.tiers[name] = []*MemoryItem{}
	return n, nil
}

// ClearAllMemory empties every tier and returns the total removed.
func (m *TierManager) ClearAllMemory() int {
	total := 0
	for _, tier := range tierNames {
		total += len(m.tiers[tier])
		m.tiers[tier] = []*MemoryItem{}
	}
	return total
}

// SetMemoryTiers bulk-seeds the collections from persisted state at
// startup, bypassing capacity enforcement and eviction. Tier membership
// on each item is normalized to the collection it lands in.
func (m *TierManager) SetMemoryTiers(working, shortTerm, longTerm []*MemoryItem) {
	m.tiers[TierWorking] = seed(working, TierWorking)
	m.tiers[TierShortTerm] = seed(shortTerm, TierShortTerm)
	m.tiers[TierLongTerm] = seed(longTerm, TierLongTerm)
}

// AllItems returns every item across tiers, working tier first.
func (m *TierManager) AllItems() []*MemoryItem {
	var out []*MemoryItem
	for _, tier := range tierNames {
		out = append(out, m.tiers[tier]...)
	}
	return out
}

// Counts returns the per-tier item counts.
func (m *TierManager) Counts() map[string]int {
	out := make(map[string]int, len(tierNames))
	for _, tier := range tierNames {
		out[tier] = len(m.tiers[tier])
	}
	return out
}

// RescoreAll recomputes every item's relevance score and returns the
// number of items whose score changed.
func (m *TierManager) RescoreAll() int {
	changed := 0
	for _, tier := range tierNames {
		for _, it := range m.tiers[tier] {
			next := CalculateScore(it)
			if next != it.RelevanceScore {
				it.RelevanceScore = next
				changed++
			}
		}
	}
	return changed
}

// removeLowest removes and returns the lowest-scoring item in a tier.
func (m *TierManager) removeLowest(tier string) *MemoryItem {
	items := m.tiers[tier]
	if len(items) == 0 {
		return nil
	}
	low := 0
	for i, it := range items {
		if it.RelevanceScore < items[low].RelevanceScore {
			low = i
		}
	}
	item := items[low]
	m.tiers[tier] = append(items[:low], items[low+1:]...)
	return item
}

func (m *TierManager) detach(item *MemoryItem, tier string) {
	for i, it := range m.tiers[tier] {
		if it.ID == item.ID {
			m.tiers[tier] = append(m.tiers[tier][:i], m.tiers[tier][i+1:]...)
			return
		}
	}
}

func adjacentTier(name string, dir int) string {
	for i, t := range tierNames {
		if t == name {
			j := i + dir
			if j >= 0 && j < len(tierNames) {
				return tierNames[j]
			}
			return ""
		}
	}
	return ""
}

func seed(items []*MemoryItem, tier string) []*MemoryItem {
	if items == nil {
		return []*MemoryItem{}
	}
	for _, it := range items {
		if it != nil {
			it.Metadata.Tier = tier
		}
	}
	return items
}
