package hsmx

import "go.uber.org/zap"

// Context is passed to handlers and entry/exit actions. The machine reuses
// a single Context value; callbacks must not retain it after returning.
type Context struct {
	// Machine is the machine running the callback.
	Machine *Machine
	// State is the state whose callback runs.
	State StateID
	// Event is the event being dispatched, nil during the initial
	// transition and during Shutdown.
	Event *Event
	// Store is the machine's extended state.
	Store *Store
	// Logger is the machine's logger.
	Logger *zap.SugaredLogger
}

// StateName returns the name of the state whose callback runs.
func (c *Context) StateName() string {
	return c.Machine.h.Name(c.State)
}

// IsInState reports whether id is currently on the active path.
func (c *Context) IsInState(id StateID) bool {
	return c.Machine.IsInState(id)
}

// Lookup resolves a state name against the machine's hierarchy.
func (c *Context) Lookup(name string) (StateID, bool) {
	return c.Machine.h.Lookup(name)
}
