package insight

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamFetch marks failures to obtain one of the six input
	// collections. The engine never returns it itself; fetchers wrap it so
	// callers can classify a failed analysis with errors.Is.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrMalformedInput marks input windows that are missing required fields.
	ErrMalformedInput = errors.New("malformed input")
)

// InputError describes the first malformed record found in a Listening.
type InputError struct {
	Window Window
	Kind   string // "artist" or "track"
	Index  int
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s window, %s #%d: %s %s", ErrMalformedInput, e.Window, e.Kind, e.Index, e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrMalformedInput
}
