// Package hsmx is a hierarchical state machine engine.
//
// States form a single rooted tree below the implicit Top state. Events are
// offered to the active leaf first and bubble to each ancestor on the active
// path until a handler returns Handled or TransitionTo. Transitions run exit
// actions from the current leaf up to the least common ancestor (LCA) of
// source and destination, then entry actions from below the LCA down to the
// destination, then follow initial children until a leaf is active.
//
// A Machine is single-threaded: one Dispatch call runs to completion before
// the next may start. Concurrent producers feed a single consumer such as
// realtime.Runtime.
package hsmx

// StateID identifies a state definition. IDs are assigned once by the
// builder and stay valid for the lifetime of the Hierarchy.
type StateID int

// Top is the implicit root of every hierarchy. It is never entered, never
// exited, never offered events and never a legal transition target.
const Top StateID = 0

// EventID selects which handler of a state runs.
type EventID string

// Event carries an identity and an immutable payload. Events are values:
// copying one is enough to queue it for later dispatch.
type Event struct {
	ID      EventID
	Payload any
}

// NewEvent creates an Event.
func NewEvent(id EventID, payload any) Event {
	return Event{ID: id, Payload: payload}
}

// Handler reacts to an event offered to a state.
type Handler func(ctx *Context, evt Event) Outcome

// Action is an entry or exit action.
type Action func(ctx *Context)

const (
	// MaxDepth bounds the number of states between Top (exclusive) and any
	// leaf (inclusive).
	MaxDepth = 8

	// MaxDeferredEvents bounds the events a collaborator may hold back for
	// later dispatch.
	MaxDeferredEvents = 4

	// EventPoolSize is the default capacity of collaborator queues.
	EventPoolSize = MaxDeferredEvents + 2
)
