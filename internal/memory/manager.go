package memory

import (
	"log"
	"sort"
	"sync"
)

// Config supplies the app-data base directory for persisted files.
type Config interface {
	AppDataPath() string
}

// ContextNotifier receives invalidation notifications when memory items
// are deleted or tiers are cleared, so externally cached references
// stay consistent. Notifications are one-directional, memory → context.
type ContextNotifier interface {
	DeleteMemoryItem(id string)
	ClearMemory(scope string)
}

// Services are the external collaborators wired in at initialization.
type Services struct {
	Config  Config
	Context ContextNotifier
}

// ClearScopeAll is the scope reported to ContextNotifier.ClearMemory
// when every tier is cleared at once.
const ClearScopeAll = "all"

// defaultRelevantLimit caps FindRelevantMemories when the caller passes
// no limit.
const defaultRelevantLimit = 5

// Manager is the orchestrating facade over the memory subsystem. A
// single mutex serializes every public operation: each call runs to
// completion before the next begins, so no partial tier state is ever
// observable. The original design relies on a single-threaded event
// loop for the same guarantee.
type Manager struct {
	mu          sync.Mutex
	initialized bool

	context ContextNotifier
	tiers   *TierManager
	stats   *StatsTracker
	persist *Persistence
	usage   *UsageTracker
}

// NewManager assembles an uninitialized manager. Every public operation
// fails with a memory error until Initialize succeeds.
func NewManager(caps TierCapacities) *Manager {
	return &Manager{
		tiers:   NewTierManager(caps),
		stats:   NewStatsTracker(),
		persist: NewPersistence(),
		usage:   NewUsageTracker(),
	}
}

// Initialize wires the collaborators, initializes the components in
// dependency order, then loads the persisted long-term tier and seeds
// the store with it. Idempotent.
func (m *Manager) Initialize(services Services) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}
	if services.Config == nil {
		return &Error{Kind: KindMemory, Message: "memory manager requires a config collaborator"}
	}
	if services.Context == nil {
		return &Error{Kind: KindMemory, Message: "memory manager requires a context collaborator"}
	}

	m.stats.Initialize()
	if err := m.persist.Initialize(services.Config); err != nil {
		return err
	}
	if err := m.usage.Initialize(services.Config); err != nil {
		return err
	}

	longTerm, err := m.persist.LoadLongTermMemory()
	if err != nil {
		return err
	}
	m.tiers.SetMemoryTiers(nil, nil, longTerm)
	m.trackStat(m.stats.UpdateItemCount(TierLongTerm, len(longTerm)))

	m.context = services.Context
	m.initialized = true
	return nil
}

// AddMemoryItem stores new content in the working tier and returns the
// created item.
func (m *Manager) AddMemoryItem(content string, usefulness float64, meta ItemMetadata) (*MemoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("addMemoryItem"); err != nil {
		return nil, err
	}

	item, events := m.tiers.AddToMemory(content, usefulness, meta)
	m.trackStat(m.stats.TrackItemAdded(TierWorking))
	m.applyEvents(events)
	return item, nil
}

// GetMemoryItemByID returns the item, or nil when absent.
func (m *Manager) GetMemoryItemByID(id string) (*MemoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("getMemoryItemById"); err != nil {
		return nil, err
	}
	return m.tiers.FindMemoryItemByID(id), nil
}

// AccessMemoryItem bumps the item's access accounting, rescores it, and
// returns it. Returns nil when the item does not exist.
func (m *Manager) AccessMemoryItem(id string) (*MemoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("accessMemoryItem"); err != nil {
		return nil, err
	}
	item := m.tiers.AccessMemoryItem(id)
	if item != nil {
		m.trackStat(m.stats.TrackItemAccessed(item.Metadata.Tier))
	}
	return item, nil
}

// DeleteMemoryItem removes an item and notifies the context collaborator.
// Reports whether the item existed; a missing item is not an error.
func (m *Manager) DeleteMemoryItem(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("deleteMemoryItem"); err != nil {
		return false, err
	}
	tier, ok := m.tiers.DeleteMemoryItem(id)
	if !ok {
		return false, nil
	}
	m.trackStat(m.stats.TrackItemDeleted(tier))
	m.context.DeleteMemoryItem(id)
	return true, nil
}

// GetAllMemoryItems returns every item across all tiers.
func (m *Manager) GetAllMemoryItems() ([]*MemoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("getAllMemoryItems"); err != nil {
		return nil, err
	}
	return m.tiers.AllItems(), nil
}

// GetMemoryByTier returns one tier's items.
func (m *Manager) GetMemoryByTier(tier string) ([]*MemoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("getMemoryByTier"); err != nil {
		return nil, err
	}
	return m.tiers.GetMemoryTier(tier)
}

// FindRelevantMemories scores every current item against the command,
// sorts descending, and returns the top limit items. O(n log n), fine:
// n is capacity-bounded to low hundreds.
func (m *Manager) FindRelevantMemories(command string, limit int) ([]*MemoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("findRelevantMemories"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRelevantLimit
	}

	items := m.tiers.AllItems()
	type scored struct {
		item  *MemoryItem
		score float64
	}
	ranked := make([]scored, len(items))
	for i, it := range items {
		ranked[i] = scored{item: it, score: CalculateRelevanceToCommand(it, command)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]*MemoryItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out, nil
}

// PromoteMemoryItem moves an item one tier toward longer-lived storage.
// Reports whether the item existed; promoting past the end tier is a
// no-op that still reports true.
func (m *Manager) PromoteMemoryItem(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("promoteMemoryItem"); err != nil {
		return false, err
	}
	item, events := m.tiers.PromoteMemoryItem(id)
	m.applyEvents(events)
	return item != nil, nil
}

// DemoteMemoryItem moves an item one tier toward shorter-lived storage.
func (m *Manager) DemoteMemoryItem(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("demoteMemoryItem"); err != nil {
		return false, err
	}
	item, events := m.tiers.DemoteMemoryItem(id)
	m.applyEvents(events)
	return item != nil, nil
}

// ClearMemoryTier empties one tier and notifies the context collaborator.
func (m *Manager) ClearMemoryTier(tier string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("clearMemoryTier"); err != nil {
		return 0, err
	}
	n, err := m.tiers.ClearMemoryTier(tier)
	if err != nil {
		return 0, err
	}
	m.trackStat(m.stats.UpdateItemCount(tier, 0))
	m.context.ClearMemory(tier)
	return n, nil
}

// ClearAllMemory empties every tier and notifies the context collaborator.
func (m *Manager) ClearAllMemory() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("clearAllMemory"); err != nil {
		return 0, err
	}
	n := m.tiers.ClearAllMemory()
	for _, tier := range tierNames {
		m.trackStat(m.stats.UpdateItemCount(tier, 0))
	}
	m.context.ClearMemory(ClearScopeAll)
	return n, nil
}

// SaveMemory persists the long-term tier. Working and short-term tiers
// are never written to disk.
func (m *Manager) SaveMemory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("saveMemory"); err != nil {
		return err
	}
	longTerm, err := m.tiers.GetMemoryTier(TierLongTerm)
	if err != nil {
		return err
	}
	return m.persist.SaveLongTermMemory(longTerm)
}

// GetMemoryStats refreshes the per-tier counts and average score, then
// returns a snapshot.
func (m *Manager) GetMemoryStats() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("getMemoryStats"); err != nil {
		return Stats{}, err
	}
	for tier, n := range m.tiers.Counts() {
		m.trackStat(m.stats.UpdateItemCount(tier, n))
	}
	if _, err := m.stats.CalculateAverageScore(m.tiers.AllItems()); err != nil {
		return Stats{}, err
	}
	return m.stats.GetStats()
}

// GetAIUsageStats returns a copy of the AI usage record.
func (m *Manager) GetAIUsageStats() (UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("getAIUsageStats"); err != nil {
		return UsageRecord{}, err
	}
	return m.usage.GetStats()
}

// TrackAIUsage records one AI call's token usage, write-through.
func (m *Manager) TrackAIUsage(u TokenUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("trackAIUsage"); err != nil {
		return err
	}
	return m.usage.TrackUsage(u)
}

// RescoreAll recomputes every item's relevance score. Scores are
// recomputed on access anyway; this keeps idle items' decay fresh.
func (m *Manager) RescoreAll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensure("rescoreAll"); err != nil {
		return 0, err
	}
	return m.tiers.RescoreAll(), nil
}

func (m *Manager) ensure(op string) error {
	if !m.initialized {
		return (&Error{Kind: KindMemory, Message: "memory manager used before initialization"}).With("operation", op)
	}
	return nil
}

// applyEvents feeds tier mutation side effects into the stats tracker.
func (m *Manager) applyEvents(events []TierEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case EventPromoted:
			m.trackStat(m.stats.TrackItemPromoted(ev.From, ev.To))
		case EventDemoted:
			m.trackStat(m.stats.TrackItemDemoted(ev.From, ev.To))
		case EventEvicted:
			m.trackStat(m.stats.TrackItemExpired(ev.From))
		}
	}
}

// trackStat logs a stats bookkeeping failure. Stats are diagnostic — a
// failed counter update must not fail the memory operation itself.
func (m *Manager) trackStat(err error) {
	if err != nil {
		log.Printf("memory: stats update failed: %v", err)
	}
}
