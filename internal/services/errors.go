package services

import (
	"errors"
	"fmt"
)

var (
	// ErrCheckoutNotAllowed is returned when checkout preconditions do not hold.
	ErrCheckoutNotAllowed = errors.New("checkout not allowed")
	// ErrUnknownFormat is returned for an unsupported export format.
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrUnknownSortKey is returned for an unsupported catalog ordering.
	ErrUnknownSortKey = errors.New("unknown sort key")
)

// FormatError reports an import payload whose overall shape is wrong,
// such as a top-level value that is not a JSON array.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid cart import: %s: %v", e.Reason, e.Err)
	}
	return "invalid cart import: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports an import entry with a missing or mistyped field.
// Index is the zero-based position of the entry in the payload.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid cart import entry %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid cart import entry %d: field %q %s", e.Index, e.Field, e.Reason)
}
