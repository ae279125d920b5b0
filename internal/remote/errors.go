package remote

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrBadResponse means the authority answered with a body that does not
	// follow the endpoint contract.
	ErrBadResponse = errors.New("unexpected response from authority")

	// ErrCircuitOpen means the breaker is rejecting calls after repeated failures.
	ErrCircuitOpen = errors.New("remote authority unavailable")
)

// Error describes a failed call to the authority. Rejections with a valid
// status envelope are not errors; see CartResult and ReplacementResult.
type Error struct {
	Endpoint   string
	StatusCode int
	RequestID  string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

