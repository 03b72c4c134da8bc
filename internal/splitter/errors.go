package splitter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a missing path or directory, or a
	// non-positive page or segment count. No work is attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates the input file was rejected before any
	// split decision was made.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError carries the reason a file was rejected.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid PDF file %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// SegmentError reports the segment that stopped an execution. Every segment
// with a lower index was written; this one and all later ones were not.
type SegmentError struct {
	Index int
	Path  string
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d (%s) failed: %v", e.Index, e.Path, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
