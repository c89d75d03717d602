package navigation

import (
	"errors"
	"fmt"
)

// Sentinel errors for navigation outcomes.
var (
	// ErrInvalidOperation is the root of every error caused by asking the
	// stack or coordinator for something its current state cannot do.
	ErrInvalidOperation = errors.New("invalid navigation operation")

	// ErrUnavailable indicates GoBack or GoForward was requested with nothing
	// in that direction.
	ErrUnavailable = fmt.Errorf("%w: no entry in that direction", ErrInvalidOperation)

	// ErrRemoveCurrent indicates an attempt to remove the active entry.
	ErrRemoveCurrent = fmt.Errorf("%w: cannot remove the current entry", ErrInvalidOperation)

	// ErrIndexOutOfRange indicates a stack index outside [0, Len).
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrInvalidOperation)

	// ErrBusy indicates a transition is already in flight. Requests are refused,
	// never queued.
	ErrBusy = fmt.Errorf("%w: a navigation is already in progress", ErrInvalidOperation)

	// ErrUnknownPage indicates a type key with no registered factory.
	ErrUnknownPage = fmt.Errorf("%w: page type not registered", ErrInvalidOperation)

	// ErrCancelled indicates a guard vetoed the transition.
	// This is a normal flow control outcome, not a failure.
	ErrCancelled = errors.New("navigation cancelled")

	// ErrParameterNotRestorable indicates a parameter that would not decode
	// back to an equal value on restore. Register the page WithDecoder.
	ErrParameterNotRestorable = errors.New("parameter does not survive session restore")

	// ErrCorruptSession indicates a session blob that could not be decoded or
	// does not describe a valid stack.
	ErrCorruptSession = errors.New("corrupt session state")
)

// GuardError wraps a failure raised by page code during a transition: a
// navigating-from hook, a back guard or a page factory. The stack is left
// exactly as it was before the transition started.
type GuardError struct {
	Op      string  // Hook that failed (e.g., "navigating_from", "back_guard", "create_page")
	TypeKey TypeKey // Page involved, empty for back guards
	Err     error   // Underlying error
}

func (e *GuardError) Error() string {
	if e.TypeKey != "" {
		return fmt.Sprintf("navigation: %s %s: %v", e.Op, e.TypeKey, e.Err)
	}
	return fmt.Sprintf("navigation: %s: %v", e.Op, e.Err)
}

func (e *GuardError) Unwrap() error {
	return e.Err
}

// IsGuardError checks if an error was raised by page code during a transition.
func IsGuardError(err error) bool {
	var guardErr *GuardError
	return errors.As(err, &guardErr)
}

// IsCancelled checks if an error indicates a vetoed transition.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsInvalidOperation checks if an error was caused by an operation the current
// state does not allow.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}
