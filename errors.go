package hsmx

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHierarchy is wrapped by every ConfigError.
	ErrInvalidHierarchy = errors.New("invalid state hierarchy")
	// ErrDepthExceeded reports a state nested deeper than MaxDepth.
	ErrDepthExceeded = errors.New("hierarchy depth exceeds MaxDepth")

	// ErrReentrantDispatch is returned when Dispatch or Shutdown is called
	// from inside a callback of the same machine.
	ErrReentrantDispatch = errors.New("re-entrant dispatch")
	// ErrTransitionToTop is returned when a handler requests a transition to Top.
	ErrTransitionToTop = errors.New("transition to top state")
	// ErrUnknownState is returned for a transition target the hierarchy does not define.
	ErrUnknownState = errors.New("unknown state")
	// ErrNoActiveState is returned when a transition is requested with no active leaf.
	ErrNoActiveState = errors.New("no active state")
	// ErrShutdown is returned by Dispatch and Shutdown after the machine was shut down.
	ErrShutdown = errors.New("machine is shut down")
	// ErrCorrupted is returned by Dispatch and Shutdown once a callback
	// panicked part way through a transition or teardown. The active
	// configuration no longer describes a root-to-leaf path.
	ErrCorrupted = errors.New("machine left mid-transition by a panic")
)

// ConfigError describes a broken hierarchy definition. It is a programmer
// error detected while building or starting a machine.
type ConfigError struct {
	State  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("invalid state hierarchy: %s", e.Reason)
	}
	return fmt.Sprintf("invalid state hierarchy at state %q: %s", e.State, e.Reason)
}

// Unwrap exposes ErrInvalidHierarchy and, when set, the specific cause.
func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidHierarchy, e.Err}
	}
	return []error{ErrInvalidHierarchy}
}

func newConfigError(state, reason string, args ...any) *ConfigError {
	return &ConfigError{State: state, Reason: fmt.Sprintf(reason, args...)}
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
