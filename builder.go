package hsmx

import (
	"errors"
	"fmt"
	"strings"
)

// TopName is the registered name of Top.
const TopName = "top"

// MachineBuilder provides a fluent API for declaring a hierarchy with
// string state names instead of hand-assigned StateIDs.
type MachineBuilder struct {
	nextID   StateID
	nameToID map[string]StateID
	idToName map[StateID]string
	states   map[StateID]*StateDef
	errs     []error
}

// StateBuilder provides fluent methods for configuring one state.
type StateBuilder struct {
	b     *MachineBuilder
	state *StateDef
	name  string
}

// NewMachineBuilder creates a builder whose initial transition enters
// initialStateName (and its initial chain).
func NewMachineBuilder(initialStateName string) *MachineBuilder {
	b := &MachineBuilder{
		nextID:   1, // Top gets ID 0
		nameToID: map[string]StateID{TopName: Top},
		idToName: map[StateID]string{Top: TopName},
		states:   make(map[StateID]*StateDef),
	}
	b.states[Top] = &StateDef{
		ID:      Top,
		Name:    TopName,
		Parent:  noState,
		Initial: b.assignID(initialStateName),
	}
	return b
}

// State creates or retrieves a state by name.
// Dot notation declares ancestry: "Root.State1.State11" registers State11
// as a child of State1 and State1 as a child of Root; the first segment
// keeps its parent (Top unless declared otherwise). The last segment is
// the state's name, and names are global.
func (b *MachineBuilder) State(path string) *StateBuilder {
	segments := strings.Split(path, ".")
	var sb *StateBuilder
	for i, seg := range segments {
		child := b.declare(strings.TrimSpace(seg))
		if i > 0 {
			child.setParent(sb.state.ID)
		}
		sb = child
	}
	return sb
}

func (b *MachineBuilder) declare(name string) *StateBuilder {
	if name == "" || name == TopName {
		b.errs = append(b.errs, fmt.Errorf("%w: reserved or empty state name %q", ErrInvalidHierarchy, name))
	}
	id := b.assignID(name)
	state := b.states[id]
	if state == nil {
		state = &StateDef{ID: id, Name: name, Parent: Top}
		b.states[id] = state
	}
	return &StateBuilder{b: b, state: state, name: name}
}

// Build validates the declarations and returns the Hierarchy.
func (b *MachineBuilder) Build() (*Hierarchy, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	defs := make([]StateDef, b.nextID)
	for id := StateID(0); id < b.nextID; id++ {
		state, ok := b.states[id]
		if !ok {
			return nil, newConfigError(b.idToName[id], "referenced but never declared")
		}
		defs[id] = *state
	}
	return NewHierarchy(defs)
}

// MustBuild is like Build but panics on an invalid hierarchy.
func (b *MachineBuilder) MustBuild() *Hierarchy {
	h, err := b.Build()
	if err != nil {
		panic(err)
	}
	return h
}

// GetID returns the assigned StateID for a given state name, assigning a
// new one for names not seen yet.
func (b *MachineBuilder) GetID(name string) StateID {
	return b.assignID(name)
}

// GetName returns the name for a given StateID.
// Returns empty string if the ID doesn't exist.
func (b *MachineBuilder) GetName(id StateID) string {
	return b.idToName[id]
}

// assignID returns the existing ID for a name, or creates a new sequential ID.
// This ensures deterministic ID assignment and allows forward references.
func (b *MachineBuilder) assignID(name string) StateID {
	if id, exists := b.nameToID[name]; exists {
		return id
	}

	id := b.nextID
	b.nextID++
	b.nameToID[name] = id
	b.idToName[id] = name
	return id
}

// StateBuilder fluent methods

// ID returns the state's id.
func (sb *StateBuilder) ID() StateID { return sb.state.ID }

// Parent places this state below the named state.
func (sb *StateBuilder) Parent(name string) *StateBuilder {
	parent := sb.b.declare(name)
	sb.setParent(parent.state.ID)
	return sb
}

func (sb *StateBuilder) setParent(parent StateID) {
	if sb.state.Parent != Top && sb.state.Parent != parent {
		sb.b.errs = append(sb.b.errs, newConfigError(sb.name, "declared under both %q and %q",
			sb.b.idToName[sb.state.Parent], sb.b.idToName[parent]))
		return
	}
	sb.state.Parent = parent
}

// Initial marks this state as composite and names the child entered when
// this state is the target of a transition.
func (sb *StateBuilder) Initial(childName string) *StateBuilder {
	sb.state.Initial = sb.b.assignID(childName)
	return sb
}

// Entry sets the entry action for this state.
func (sb *StateBuilder) Entry(action Action) *StateBuilder {
	sb.state.Entry = action
	return sb
}

// Exit sets the exit action for this state.
func (sb *StateBuilder) Exit(action Action) *StateBuilder {
	sb.state.Exit = action
	return sb
}

// On registers the handler run when evt is offered to this state.
func (sb *StateBuilder) On(evt EventID, handler Handler) *StateBuilder {
	if sb.state.Handlers == nil {
		sb.state.Handlers = make(map[EventID]Handler)
	}
	sb.state.Handlers[evt] = handler
	return sb
}

// Transition registers a handler that always transitions to targetName.
func (sb *StateBuilder) Transition(evt EventID, targetName string) *StateBuilder {
	target := sb.b.assignID(targetName)
	return sb.On(evt, func(*Context, Event) Outcome {
		return TransitionTo(target)
	})
}

// OnInternal registers an action that consumes evt without changing state.
func (sb *StateBuilder) OnInternal(evt EventID, action func(*Context, Event)) *StateBuilder {
	return sb.On(evt, func(ctx *Context, e Event) Outcome {
		if action != nil {
			action(ctx, e)
		}
		return Handled
	})
}

// Default registers a catch-all handler for events without a specific one.
func (sb *StateBuilder) Default(handler Handler) *StateBuilder {
	sb.state.Default = handler
	return sb
}
