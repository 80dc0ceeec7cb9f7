package filmlab

import (
	"errors"
	"fmt"
)

// Pipeline errors.
var (
	// ErrNoDrawingContext is returned when the destination or the source
	// is nil or empty.
	ErrNoDrawingContext = errors.New("filmlab: no drawing context")

	// ErrResourceExhausted is returned when the output exceeds the
	// pipeline's pixel limit.
	ErrResourceExhausted = errors.New("filmlab: output too large")

	// ErrCanceled is returned when the context ends before pixel work
	// completes. It wraps the context's error.
	ErrCanceled = errors.New("filmlab: canceled")

	// ErrClosed is returned by a Pipeline after Close.
	ErrClosed = errors.New("filmlab: pipeline closed")
)

func canceled(err error) error {
	return fmt.Errorf("%w: %w", ErrCanceled, err)
}
