package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsTrackerRequiresInitialization(t *testing.T) {
	tracker := NewStatsTracker()

	assert.True(t, IsKind(tracker.TrackItemAdded(TierWorking), KindStats))
	assert.True(t, IsKind(tracker.TrackItemAccessed(TierWorking), KindStats))
	assert.True(t, IsKind(tracker.TrackItemDeleted(TierWorking), KindStats))
	assert.True(t, IsKind(tracker.TrackItemPromoted(TierWorking, TierShortTerm), KindStats))
	assert.True(t, IsKind(tracker.TrackItemExpired(TierShortTerm), KindStats))
	assert.True(t, IsKind(tracker.ResetStats(), KindStats))

	_, err := tracker.GetStats()
	assert.True(t, IsKind(err, KindStats))
	_, err = tracker.CalculateAverageScore(nil)
	assert.True(t, IsKind(err, KindStats))
}

func TestStatsTrackerInitializeIsIdempotent(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()
	require.NoError(t, tracker.TrackItemAdded(TierWorking))

	tracker.Initialize()

	stats, err := tracker.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Operations.Additions)
	assert.Equal(t, 1, stats.ItemsByTier[TierWorking])
}

func TestStatsTrackerAddThenPromote(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()

	require.NoError(t, tracker.TrackItemAdded(TierWorking))
	require.NoError(t, tracker.TrackItemPromoted(TierWorking, TierShortTerm))

	stats, err := tracker.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ItemsByTier[TierWorking])
	assert.Equal(t, 1, stats.ItemsByTier[TierShortTerm])
	assert.Equal(t, 1, stats.TotalItems)
	assert.Equal(t, int64(1), stats.Operations.Promotions)
}

func TestStatsTrackerDeleteFloorsAtZero(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()

	// Deleting from an empty tier still counts the operation but the
	// tier count never goes negative.
	require.NoError(t, tracker.TrackItemDeleted(TierLongTerm))

	stats, err := tracker.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ItemsByTier[TierLongTerm])
	assert.Equal(t, 0, stats.TotalItems)
	assert.Equal(t, int64(1), stats.Operations.Deletions)
}

func TestStatsTrackerRejectsUnknownTier(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()

	assert.True(t, IsKind(tracker.TrackItemAdded("mediumTerm"), KindStats))
	assert.True(t, IsKind(tracker.UpdateItemCount("", 3), KindStats))
	assert.True(t, IsKind(tracker.TrackItemPromoted(TierWorking, "bogus"), KindStats))
}

func TestStatsTrackerUpdateItemCount(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()

	require.NoError(t, tracker.UpdateItemCount(TierWorking, 3))
	require.NoError(t, tracker.UpdateItemCount(TierLongTerm, 7))
	require.NoError(t, tracker.UpdateItemCount(TierShortTerm, -2))

	stats, err := tracker.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ItemsByTier[TierWorking])
	assert.Equal(t, 0, stats.ItemsByTier[TierShortTerm])
	assert.Equal(t, 7, stats.ItemsByTier[TierLongTerm])
	assert.Equal(t, 10, stats.TotalItems)
}

func TestStatsTrackerAverageScore(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()

	items := []*MemoryItem{
		{RelevanceScore: 0.5},
		{RelevanceScore: 0.7},
		{RelevanceScore: 0.9},
	}
	avg, err := tracker.CalculateAverageScore(items)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, avg, 0.0001)

	stats, err := tracker.GetStats()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, stats.AverageRelevanceScore, 0.0001)

	avg, err = tracker.CalculateAverageScore(nil)
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestStatsTrackerReset(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()
	require.NoError(t, tracker.TrackItemAdded(TierWorking))
	require.NoError(t, tracker.TrackItemAccessed(TierWorking))

	require.NoError(t, tracker.ResetStats())

	stats, err := tracker.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalItems)
	assert.Zero(t, stats.Operations.Additions)
	assert.Zero(t, stats.Operations.Accesses)
}

func TestStatsTrackerSnapshotIsDefensiveCopy(t *testing.T) {
	tracker := NewStatsTracker()
	tracker.Initialize()
	require.NoError(t, tracker.TrackItemAdded(TierWorking))

	snap, err := tracker.GetStats()
	require.NoError(t, err)
	snap.ItemsByTier[TierWorking] = 99

	fresh, err := tracker.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.ItemsByTier[TierWorking])
}
