package memory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Kind: KindStorage, Message: "write long-term memory", Cause: cause}

	assert.Equal(t, "write long-term memory: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := &Error{Kind: KindTier, Message: "unknown memory tier"}
	assert.Equal(t, "unknown memory tier", bare.Error())
}

func TestErrorWithAccumulatesContext(t *testing.T) {
	err := (&Error{Kind: KindAccess, Message: "item not found"}).
		With("id", "abc").
		With("operation", "accessMemoryItem")

	assert.Equal(t, "abc", err.Context["id"])
	assert.Equal(t, "accessMemoryItem", err.Context["operation"])
}

func TestErrorRecordNames(t *testing.T) {
	cases := map[Kind]string{
		KindMemory:  "MemoryError",
		KindAccess:  "MemoryAccessError",
		KindStorage: "MemoryStorageError",
		KindTier:    "MemoryTierError",
		KindScoring: "MemoryScoringError",
		KindStats:   "MemoryStatsError",
	}
	for kind, name := range cases {
		rec := (&Error{Kind: kind, Message: "m"}).Record()
		assert.Equal(t, name, rec.Name)
	}

	withCause := &Error{Kind: KindStorage, Message: "read", Cause: errors.New("boom")}
	assert.Equal(t, "boom", withCause.Record().Cause)
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	inner := &Error{Kind: KindStorage, Message: "parse long-term memory"}
	wrapped := fmt.Errorf("initialize: %w", inner)

	assert.True(t, IsKind(wrapped, KindStorage))
	assert.False(t, IsKind(wrapped, KindTier))
	assert.False(t, IsKind(errors.New("plain"), KindStorage))
	assert.False(t, IsKind(nil, KindStorage))
}
