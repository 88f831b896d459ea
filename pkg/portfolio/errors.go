package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNotFound indicates the addressed row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a write collided with an existing row (duplicate
	// key, second settings row, dangling reference)
	ErrConflict = errors.New("record conflict")

	// ErrTransport indicates the store could not be reached or failed mid-request
	ErrTransport = errors.New("store unavailable")

	// ErrInvalidRecord indicates a record failed validation before a write
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidField indicates an edit named an unknown field or carried a
	// value that cannot be coerced to the field's type
	ErrInvalidField = errors.New("invalid field")

	// ErrUnknownCollection indicates a collection name outside the six known ones
	ErrUnknownCollection = errors.New("unknown collection")
)

// Kind classifies an error for callers that need to branch on the failure
// mode (HTTP status mapping, admin banners) without matching sentinels.
type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindConflict  Kind = "conflict"
	KindTransport Kind = "transport"
	KindInvalid   Kind = "invalid"
	KindUnknown   Kind = "unknown"
)

// KindOf returns the kind of err. A nil error has an empty kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidRecord), errors.Is(err, ErrInvalidField), errors.Is(err, ErrUnknownCollection):
		return KindInvalid
	case errors.Is(err, ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	}
	return KindUnknown
}

// RecordError represents an error related to a gateway operation on one row
type RecordError struct {
	Collection Collection
	ID         uuid.UUID
	Op         string
	Err        error
}

func (e *RecordError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s %s failed: %v", e.Collection, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed for %s: %v", e.Collection, e.Op, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
