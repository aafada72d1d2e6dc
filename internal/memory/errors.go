package memory

import (
	"errors"
	"fmt"
)

// Kind discriminates memory subsystem errors so callers can pick a
// per-kind policy without string matching.
type Kind string

const (
	KindMemory  Kind = "memory"
	KindAccess  Kind = "access"
	KindStorage Kind = "storage"
	KindTier    Kind = "tier"
	KindScoring Kind = "scoring"
	KindStats   Kind = "stats"
)

// Error is the typed error used throughout the memory subsystem. It
// carries a message, an optional wrapped cause, and a free-form context
// map for diagnostic detail.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// With attaches a context key/value pair and returns the error, so
// constructors can chain detail onto a fixed-shape record.
func (e *Error) With(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string, 1)
	}
	e.Context[key] = value
	return e
}

// ErrorRecord is the plain serializable form of an Error, used on the
// wire and in logs.
type ErrorRecord struct {
	Name    string            `json:"name"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
	Cause   string            `json:"cause,omitempty"`
}

// Record converts the error to its wire form.
func (e *Error) Record() ErrorRecord {
	rec := ErrorRecord{Name: e.Kind.name(), Message: e.Message, Context: e.Context}
	if e.Cause != nil {
		rec.Cause = e.Cause.Error()
	}
	return rec
}

func (k Kind) name() string {
	switch k {
	case KindAccess:
		return "MemoryAccessError"
	case KindStorage:
		return "MemoryStorageError"
	case KindTier:
		return "MemoryTierError"
	case KindScoring:
		return "MemoryScoringError"
	case KindStats:
		return "MemoryStatsError"
	default:
		return "MemoryError"
	}
}

// IsKind reports whether err is (or wraps) a memory Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind == kind
	}
	return false
}
