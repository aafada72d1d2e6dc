package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateInitialScoreBlendsUsefulnessAndRecency(t *testing.T) {
	// (0.4*(8/10) + 0.3*1.0) / 0.7
	item := &MemoryItem{Usefulness: 8}
	assert.InDelta(t, 0.8857, CalculateInitialScore(item), 0.001)

	item.Usefulness = 0
	assert.InDelta(t, 0.4286, CalculateInitialScore(item), 0.001)

	item.Usefulness = 10
	assert.InDelta(t, 1.0, CalculateInitialScore(item), 0.0001)
}

func TestCalculateInitialScoreClampsUsefulness(t *testing.T) {
	assert.InDelta(t, 1.0, CalculateInitialScore(&MemoryItem{Usefulness: 15}), 0.0001)
	assert.InDelta(t, 0.4286, CalculateInitialScore(&MemoryItem{Usefulness: -3}), 0.001)
}

func TestCalculateInitialScoreNilItem(t *testing.T) {
	assert.Equal(t, 0.5, CalculateInitialScore(nil))
}

func TestCalculateScoreFreshItem(t *testing.T) {
	now := time.Now()
	item := &MemoryItem{
		Usefulness:   5,
		CreatedAt:    now,
		LastAccessed: now,
	}
	// recency 1.0, frequency 0, usefulness 0.5, age decay 1.0:
	// 0.3 + 0 + 0.2 + 0.1 = 0.6
	assert.InDelta(t, 0.6, CalculateScore(item), 0.001)
}

func TestCalculateScoreDecayedItem(t *testing.T) {
	now := time.Now()
	item := &MemoryItem{
		Usefulness:   10,
		AccessCount:  20,
		CreatedAt:    now.Add(-70 * 24 * time.Hour),
		LastAccessed: now.Add(-7 * 24 * time.Hour),
	}
	// recency 0.5, frequency capped at 1, usefulness 1, age decay floored
	// at 0.1: 0.15 + 0.2 + 0.4 + 0.01 = 0.76
	assert.InDelta(t, 0.76, CalculateScore(item), 0.001)
}

func TestCalculateScoreAlwaysInRange(t *testing.T) {
	now := time.Now()
	items := []*MemoryItem{
		{},
		{Usefulness: 10, AccessCount: 1000, CreatedAt: now, LastAccessed: now},
		{Usefulness: -5, CreatedAt: now.Add(-1000 * 24 * time.Hour)},
		{Usefulness: 3, LastAccessed: now.Add(-400 * 24 * time.Hour)},
	}
	for _, it := range items {
		score := CalculateScore(it)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestCalculateScoreFallsBackToLastScore(t *testing.T) {
	// No timestamps at all: the last known score wins, or 0.5.
	assert.Equal(t, 0.8, CalculateScore(&MemoryItem{RelevanceScore: 0.8}))
	assert.Equal(t, 0.5, CalculateScore(&MemoryItem{}))
	assert.Equal(t, 0.5, CalculateScore(nil))
}

func TestCalculateRelevanceToCommandOverlap(t *testing.T) {
	now := time.Now()
	item := &MemoryItem{
		Content:      "Quarterly report draft for the finance team",
		Usefulness:   5,
		CreatedAt:    now,
		LastAccessed: now,
	}
	// "summarize" misses, "the" is too short, "quarterly" and "report"
	// hit: overlap 2/4 = 0.5; base score 0.6.
	// 0.3*0.6 + 0.7*0.5 = 0.53
	got := CalculateRelevanceToCommand(item, "summarize the quarterly report")
	assert.InDelta(t, 0.53, got, 0.005)
}

func TestCalculateRelevanceToCommandCapsDenominator(t *testing.T) {
	now := time.Now()
	item := &MemoryItem{
		Content:      "alpha bravo charlie delta echo foxtrot golf hotel",
		Usefulness:   0,
		CreatedAt:    now,
		LastAccessed: now,
	}
	// All eight words match but the denominator caps at 5, so the
	// overlap term clamps to 1.
	got := CalculateRelevanceToCommand(item, "alpha bravo charlie delta echo foxtrot golf hotel")
	assert.GreaterOrEqual(t, got, 0.7)
	assert.LessOrEqual(t, got, 1.0)
}

func TestCalculateRelevanceToCommandDefaults(t *testing.T) {
	assert.Equal(t, 0.2, CalculateRelevanceToCommand(nil, "anything"))
	assert.Equal(t, 0.2, CalculateRelevanceToCommand(&MemoryItem{Content: "x"}, ""))
	assert.Equal(t, 0.2, CalculateRelevanceToCommand(&MemoryItem{Content: "x"}, "   "))
}

func TestCalculateRelevanceToCommandNoMatches(t *testing.T) {
	now := time.Now()
	item := &MemoryItem{
		Content:      "grocery list: milk, eggs",
		Usefulness:   5,
		CreatedAt:    now,
		LastAccessed: now,
	}
	// No overlap: pure base-score contribution, 0.3*0.6.
	got := CalculateRelevanceToCommand(item, "summarize the quarterly report")
	assert.InDelta(t, 0.18, got, 0.005)
}
