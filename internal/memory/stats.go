package memory

import (
	"log"
	"time"
)

// OperationCounts tallies mutations since initialization or the last reset.
type OperationCounts struct {
	Additions   int64 `json:"additions"`
	Accesses    int64 `json:"accesses"`
	Deletions   int64 `json:"deletions"`
	Promotions  int64 `json:"promotions"`
	Demotions   int64 `json:"demotions"`
	Expirations int64 `json:"expirations"`
}

// Stats is a diagnostic snapshot of the store. It is fed by explicit
// tracker calls from the orchestrator rather than by observing tier
// state, so it is eventually consistent — diagnostic, not authoritative.
type Stats struct {
	TotalItems            int             `json:"totalItems"`
	ItemsByTier           map[string]int  `json:"itemsByTier"`
	Operations            OperationCounts `json:"operations"`
	AverageRelevanceScore float64         `json:"averageRelevanceScore"`
	LastUpdated           time.Time       `json:"lastUpdated"`
}

// StatsTracker maintains operation counters and aggregate metrics.
type StatsTracker struct {
	initialized bool
	stats       Stats
}

// NewStatsTracker returns an uninitialized tracker. All tracking
// methods fail with a stats error until Initialize is called.
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{}
}

// Initialize zeroes the counters. Idempotent: a second call is a no-op
// and does not reset counts or bump lastUpdated.
func (t *StatsTracker) Initialize() {
	if t.initialized {
		return
	}
	t.stats = Stats{
		ItemsByTier: map[string]int{TierWorking: 0, TierShortTerm: 0, TierLongTerm: 0},
		LastUpdated: time.Now(),
	}
	t.initialized = true
}

// UpdateItemCount overwrites one tier's item count and recomputes the total.
func (t *StatsTracker) UpdateItemCount(tier string, n int) error {
	if err := t.ensure("updateItemCount"); err != nil {
		return err
	}
	if err := t.checkTier(tier); err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	t.stats.ItemsByTier[tier] = n
	t.recomputeTotal()
	t.touch()
	return nil
}

// TrackItemAdded bumps the addition counter and the tier's count.
func (t *StatsTracker) TrackItemAdded(tier string) error {
	if err := t.ensure("trackItemAdded"); err != nil {
		return err
	}
	if err := t.checkTier(tier); err != nil {
		return err
	}
	t.stats.ItemsByTier[tier]++
	t.stats.Operations.Additions++
	t.recomputeTotal()
	t.touch()
	return nil
}

// TrackItemAccessed bumps the access counter. Accesses do not change
// tier membership, so counts are untouched.
func (t *StatsTracker) TrackItemAccessed(tier string) error {
	if err := t.ensure("trackItemAccessed"); err != nil {
		return err
	}
	if err := t.checkTier(tier); err != nil {
		return err
	}
	t.stats.Operations.Accesses++
	t.touch()
	return nil
}

// TrackItemDeleted bumps the deletion counter and decrements the tier's
// count, flooring at zero.
func (t *StatsTracker) TrackItemDeleted(tier string) error {
	if err := t.ensure("trackItemDeleted"); err != nil {
		return err
	}
	if err := t.checkTier(tier); err != nil {
		return err
	}
	t.decrement(tier)
	t.stats.Operations.Deletions++
	t.recomputeTotal()
	t.touch()
	return nil
}

// TrackItemPromoted moves one unit of count from → to and bumps the
// promotion counter.
func (t *StatsTracker) TrackItemPromoted(from, to string) error {
	if err := t.ensure("trackItemPromoted"); err != nil {
		return err
	}
	if err := t.checkTier(from); err != nil {
		return err
	}
	if err := t.checkTier(to); err != nil {
		return err
	}
	t.decrement(from)
	t.stats.ItemsByTier[to]++
	t.stats.Operations.Promotions++
	t.recomputeTotal()
	t.touch()
	return nil
}

// TrackItemDemoted moves one unit of count from → to and bumps the
// demotion counter.
func (t *StatsTracker) TrackItemDemoted(from, to string) error {
	if err := t.ensure("trackItemDemoted"); err != nil {
		return err
	}
	if err := t.checkTier(from); err != nil {
		return err
	}
	if err := t.checkTier(to); err != nil {
		return err
	}
	t.decrement(from)
	t.stats.ItemsByTier[to]++
	t.stats.Operations.Demotions++
	t.recomputeTotal()
	t.touch()
	return nil
}

// TrackItemExpired records a capacity eviction from the given tier.
func (t *StatsTracker) TrackItemExpired(tier string) error {
	if err := t.ensure("trackItemExpired"); err != nil {
		return err
	}
	if err := t.checkTier(tier); err != nil {
		return err
	}
	t.decrement(tier)
	t.stats.Operations.Expirations++
	t.recomputeTotal()
	t.touch()
	return nil
}

// CalculateAverageScore records and returns the mean relevance score of
// the given items. An empty list averages to 0.
func (t *StatsTracker) CalculateAverageScore(items []*MemoryItem) (float64, error) {
	if err := t.ensure("calculateAverageScore"); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		t.stats.AverageRelevanceScore = 0
		t.touch()
		return 0, nil
	}
	sum := 0.0
	for _, it := range items {
		if it != nil {
			sum += it.RelevanceScore
		}
	}
	avg := sum / float64(len(items))
	t.stats.AverageRelevanceScore = avg
	t.touch()
	return avg, nil
}

// ResetStats zeroes all counters and counts.
func (t *StatsTracker) ResetStats() error {
	if err := t.ensure("resetStats"); err != nil {
		return err
	}
	t.stats = Stats{
		ItemsByTier: map[string]int{TierWorking: 0, TierShortTerm: 0, TierLongTerm: 0},
		LastUpdated: time.Now(),
	}
	return nil
}

// GetStats returns a defensive copy of the current snapshot.
func (t *StatsTracker) GetStats() (Stats, error) {
	if err := t.ensure("getStats"); err != nil {
		return Stats{}, err
	}
	out := t.stats
	out.ItemsByTier = make(map[string]int, len(t.stats.ItemsByTier))
	for k, v := range t.stats.ItemsByTier {
		out.ItemsByTier[k] = v
	}
	return out, nil
}

// decrement floors a tier's count at zero. Decrementing an already-empty
// tier is logged but is not an error — stats are diagnostic.
func (t *StatsTracker) decrement(tier string) {
	if t.stats.ItemsByTier[tier] <= 0 {
		log.Printf("stats: %s count already 0, not decrementing", tier)
		t.stats.ItemsByTier[tier] = 0
		return
	}
	t.stats.ItemsByTier[tier]--
}

func (t *StatsTracker) recomputeTotal() {
	total := 0
	for _, n := range t.stats.ItemsByTier {
		total += n
	}
	t.stats.TotalItems = total
}

func (t *StatsTracker) touch() {
	t.stats.LastUpdated = time.Now()
}

func (t *StatsTracker) ensure(op string) error {
	if !t.initialized {
		return (&Error{Kind: KindStats, Message: "stats tracker used before initialization"}).With("operation", op)
	}
	return nil
}

func (t *StatsTracker) checkTier(tier string) error {
	if !ValidTier(tier) {
		return (&Error{Kind: KindStats, Message: "unknown memory tier"}).With("tier", tier)
	}
	return nil
}
