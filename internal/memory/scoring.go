package memory

import (
	"math"
	"strings"
	"time"
)

// Scoring weights. The four terms of CalculateScore sum to 1; the
// initial score renormalizes the two terms that apply to a new item.
const (
	usefulnessWeight = 0.4
	recencyWeight    = 0.3
	frequencyWeight  = 0.2
	ageDecayWeight   = 0.1

	recencyScaleDays    = 7.0
	decayHalfLifeDays   = 7.0
	decayFloor          = 0.1
	frequencySaturation = 10.0
	maxUsefulness       = 10.0

	newItemRecencyBonus   = 1.0
	overlapDenominatorCap = 5

	fallbackScore     = 0.5
	fallbackRelevance = 0.2
)

// CalculateInitialScore scores a brand-new item from the caller's
// usefulness hint blended with a fixed recency bonus. Only two of the
// four scoring terms apply to an item that has never been accessed, so
// their weights are renormalized to sum to 1 for this call.
func CalculateInitialScore(item *MemoryItem) float64 {
	if item == nil {
		return fallbackScore
	}
	usefulness := clamp(item.Usefulness, 0, maxUsefulness) / maxUsefulness
	score := (usefulnessWeight*usefulness + recencyWeight*newItemRecencyBonus) /
		(usefulnessWeight + recencyWeight)
	return clamp(score, 0, 1)
}

// CalculateScore recomputes an item's relevance from four weighted
// terms: recency of last access, access frequency, the usefulness
// hint, and exponential age decay (7-day half-life, floor 0.1). When
// the item carries too little information to score, the item's last
// known score is returned, or 0.5 if it never had one.
func CalculateScore(item *MemoryItem) float64 {
	if item == nil {
		return fallbackScore
	}

	lastAccess := item.LastAccessed
	if lastAccess.IsZero() {
		lastAccess = item.CreatedAt
	}
	if lastAccess.IsZero() {
		return lastKnownScore(item)
	}

	now := time.Now()
	daysSinceAccess := math.Max(0, now.Sub(lastAccess).Hours()/24)
	recency := 1 / (1 + daysSinceAccess/recencyScaleDays)

	frequency := math.Min(1, float64(item.AccessCount)/frequencySaturation)

	usefulness := clamp(item.Usefulness, 0, maxUsefulness) / maxUsefulness

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = lastAccess
	}
	ageDays := math.Max(0, now.Sub(createdAt).Hours()/24)
	ageDecay := math.Max(decayFloor, math.Pow(0.5, ageDays/decayHalfLifeDays))

	score := recencyWeight*recency + frequencyWeight*frequency +
		usefulnessWeight*usefulness + ageDecayWeight*ageDecay
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return lastKnownScore(item)
	}
	return clamp(score, 0, 1)
}

// CalculateRelevanceToCommand scores an item against an incoming voice
// command: 0.3×base score + 0.7×lexical word overlap. The overlap term
// counts command words longer than three characters that appear
// literally in the lowercased item content, over min(5, word count).
// Deliberately a crude bag-of-words heuristic — swapping in semantic
// matching is a product decision, not a refactor.
func CalculateRelevanceToCommand(item *MemoryItem, command string) float64 {
	if item == nil {
		return fallbackRelevance
	}
	words := strings.Fields(strings.ToLower(command))
	if len(words) == 0 {
		return fallbackRelevance
	}

	content := strings.ToLower(item.Content)
	matches := 0
	for _, w := range words {
		if len(w) > 3 && strings.Contains(content, w) {
			matches++
		}
	}

	denom := len(words)
	if denom > overlapDenominatorCap {
		denom = overlapDenominatorCap
	}
	overlap := clamp(float64(matches)/float64(denom), 0, 1)

	return clamp(0.3*CalculateScore(item)+0.7*overlap, 0, 1)
}

func lastKnownScore(item *MemoryItem) float64 {
	if item.RelevanceScore > 0 {
		return clamp(item.RelevanceScore, 0, 1)
	}
	return fallbackScore
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
