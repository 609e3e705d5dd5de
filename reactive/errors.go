package reactive

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is returned for operations on an unknown or disposed
	// node, or for writes to a node that is not a writable signal.
	ErrInvalidHandle = errors.New("reactive: invalid handle")

	// ErrCyclicDependency is returned when a computed reads itself, directly
	// or transitively, while it is being evaluated.
	ErrCyclicDependency = errors.New("reactive: cyclic dependency")

	// ErrCallbackFailure marks errors and panics raised by effect callbacks.
	ErrCallbackFailure = errors.New("reactive: effect callback failed")

	// ErrRunawayEffects is reported when synchronous flushing keeps
	// re-queueing effects past the configured round limit.
	ErrRunawayEffects = errors.New("reactive: effects did not settle")
)

// CallbackError is delivered to the error channel when an effect fails.
// It matches both ErrCallbackFailure and the callback's own error.
type CallbackError struct {
	Effect NodeID
	Err    error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("reactive: effect %d failed: %v", e.Effect, e.Err)
}

func (e *CallbackError) Unwrap() []error {
	return []error{ErrCallbackFailure, e.Err}
}

func invalidHandle(id NodeID, reason string) error {
	return fmt.Errorf("%w: node %d %s", ErrInvalidHandle, id, reason)
}
