package hsmx

import (
	"fmt"

	"go.uber.org/zap"
)

// Result reports what happened to a dispatched event.
type Result struct {
	// Handled is true when some state returned Handled or TransitionTo.
	Handled bool
	// HandledBy is the state that consumed the event, Top when unhandled.
	HandledBy StateID
	// Transitioned is true when the event caused a transition.
	Transitioned bool
	// Target is the requested transition destination.
	Target StateID
}

// Machine drives one active configuration through a Hierarchy.
// It is not safe for concurrent use: a single goroutine owns Dispatch and
// Shutdown.
type Machine struct {
	h      *Hierarchy
	active StatePath // root-to-leaf, Top excluded
	store  *Store
	log    *zap.SugaredLogger
	name   string

	observers  []Observer
	assertions bool

	busy      bool
	shutdown  bool
	corrupted bool
	tran      transition
	ctx      Context
}

// New validates h, creates a machine and performs the initial transition
// into the initial chain below Top, firing every entry action on the way.
func New(h *Hierarchy, opts ...Option) (*Machine, error) {
	if h == nil {
		return nil, newConfigError("", "nil hierarchy")
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		h:     h,
		store: NewStore(),
		log:   zap.NewNop().Sugar(),
		name:  "hsm",
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx = Context{Machine: m, Store: m.store, Logger: m.log}

	initial, _ := h.Initial(Top)
	m.busy = true
	err := m.transition(Top, initial, nil)
	m.busy = false
	if err != nil {
		return nil, fmt.Errorf("initial transition: %w", err)
	}
	m.log.Debugw("machine started", "machine", m.name, "leaf", h.Name(m.Current()))
	return m, nil
}

// Dispatch offers evt to the active leaf and then to each ancestor until a
// state handles it or requests a transition. Events every state passes are
// discarded and reported through a zero Result with a nil error.
//
// Dispatch must not be called from a callback of the same machine.
func (m *Machine) Dispatch(evt Event) (Result, error) {
	if m.busy {
		return Result{}, m.violation(ErrReentrantDispatch, evt.ID)
	}
	if m.corrupted {
		return Result{}, ErrCorrupted
	}
	if m.shutdown {
		return Result{}, ErrShutdown
	}
	if m.active.Len() == 0 {
		return Result{}, m.violation(ErrNoActiveState, evt.ID)
	}

	m.busy = true
	defer func() { m.busy = false }()

	m.log.Debugw("dispatch", "machine", m.name, "event", evt.ID, "leaf", m.h.Name(m.active.Last()))

	for i := m.active.Len() - 1; i >= 0; i-- {
		state := m.active.At(i)
		fn := m.h.handler(state, evt.ID)
		if fn == nil {
			continue
		}
		out := fn(m.context(state, &evt), evt)
		m.observe(Trace{Kind: TraceHandle, State: state, Event: evt.ID, Outcome: out})

		switch out.Kind() {
		case OutcomePass:
			continue
		case OutcomeHandled:
			m.log.Debugw("event handled", "machine", m.name, "event", evt.ID, "state", m.h.Name(state))
			return Result{Handled: true, HandledBy: state}, nil
		case OutcomeTransition:
			source := m.active.Last()
			if err := m.transition(source, out.Target(), &evt); err != nil {
				return Result{HandledBy: state, Target: out.Target()}, m.violation(err, evt.ID)
			}
			m.observe(Trace{
				Kind:   TraceTransition,
				State:  state,
				Event:  evt.ID,
				Source: source,
				Target: out.Target(),
				LCA:    m.tran.lca,
			})
			return Result{Handled: true, HandledBy: state, Transitioned: true, Target: out.Target()}, nil
		default:
			return Result{HandledBy: state}, m.violation(fmt.Errorf("state %q returned unknown outcome %d", m.h.Name(state), out.Kind()), evt.ID)
		}
	}

	m.log.Debugw("event unhandled", "machine", m.name, "event", evt.ID)
	m.observe(Trace{Kind: TraceUnhandled, State: Top, Event: evt.ID})
	return Result{HandledBy: Top}, nil
}

// Shutdown exits every active state from the leaf up to the outermost
// state. It may run exactly once; later calls return ErrShutdown.
func (m *Machine) Shutdown() error {
	if m.busy {
		return m.violation(ErrReentrantDispatch, "")
	}
	if m.corrupted {
		return ErrCorrupted
	}
	if m.shutdown {
		return ErrShutdown
	}
	m.busy = true
	defer func() { m.busy = false }()
	defer m.failOnPanic("shutdown")

	for m.active.Len() > 0 {
		m.exitState(m.active.Last(), nil)
	}
	m.shutdown = true
	m.log.Debugw("machine shut down", "machine", m.name)
	return nil
}

// transition moves the active leaf source to dest. Paths are computed
// before any action runs, so an error leaves the configuration untouched.
// A panicking action leaves the machine corrupted and the panic propagates.
func (m *Machine) transition(source, dest StateID, evt *Event) error {
	t := &m.tran
	if err := m.h.buildTransition(source, dest, t); err != nil {
		return err
	}
	defer m.failOnPanic("transition")
	m.log.Debugw("transition",
		"machine", m.name,
		"from", m.h.Name(source),
		"to", m.h.Name(dest),
		"lca", m.h.Name(t.lca),
		"exits", t.exit.Len(),
		"entries", t.enter.Len(),
	)
	for i := 0; i < t.exit.Len(); i++ {
		m.exitState(t.exit.At(i), evt)
	}
	for i := 0; i < t.enter.Len(); i++ {
		m.enterState(t.enter.At(i), evt)
	}
	return nil
}

func (m *Machine) enterState(id StateID, evt *Event) {
	// Capacity holds by construction: entries never exceed MaxDepth.
	_ = m.active.push(id)
	if fn := m.h.states[id].Entry; fn != nil {
		fn(m.context(id, evt))
	}
	m.observe(Trace{Kind: TraceEntry, State: id, Event: eventID(evt)})
}

func (m *Machine) exitState(id StateID, evt *Event) {
	if fn := m.h.states[id].Exit; fn != nil {
		fn(m.context(id, evt))
	}
	m.active.pop()
	m.observe(Trace{Kind: TraceExit, State: id, Event: eventID(evt)})
}

// failOnPanic must be deferred directly around steps that mutate the
// active path. It marks the machine corrupted and re-panics.
func (m *Machine) failOnPanic(step string) {
	if r := recover(); r != nil {
		m.corrupted = true
		m.log.Errorw("panic in callback, machine corrupted",
			"machine", m.name,
			"step", step,
			"active", m.ActiveNames(),
			"panic", r,
		)
		panic(r)
	}
}

func (m *Machine) context(id StateID, evt *Event) *Context {
	m.ctx.State = id
	m.ctx.Event = evt
	return &m.ctx
}

func (m *Machine) observe(t Trace) {
	for _, o := range m.observers {
		o.Observe(m, t)
	}
}

// violation reports a protocol violation: a panic with assertions enabled,
// otherwise a logged error.
func (m *Machine) violation(err error, evt EventID) error {
	if m.assertions {
		panic(fmt.Sprintf("hsmx: protocol violation in %s: %v", m.name, err))
	}
	m.log.Warnw("protocol violation", "machine", m.name, "event", evt, "error", err)
	return err
}

func eventID(evt *Event) EventID {
	if evt == nil {
		return ""
	}
	return evt.ID
}

// Current returns the active leaf, or Top after Shutdown.
func (m *Machine) Current() StateID { return m.active.Last() }

// Active returns the active states from the outermost state to the leaf.
func (m *Machine) Active() []StateID { return m.active.Slice() }

// ActiveNames returns the names of Active().
func (m *Machine) ActiveNames() []string {
	names := make([]string, 0, m.active.Len())
	for i := 0; i < m.active.Len(); i++ {
		names = append(names, m.h.Name(m.active.At(i)))
	}
	return names
}

// IsInState reports whether id is on the active path. Top is always
// considered active while the machine runs.
func (m *Machine) IsInState(id StateID) bool {
	if id == Top {
		return !m.shutdown
	}
	return m.active.contains(id)
}

// Hierarchy returns the machine's state table.
func (m *Machine) Hierarchy() *Hierarchy { return m.h }

// Store returns the machine's extended state.
func (m *Machine) Store() *Store { return m.store }

// Name returns the machine's label.
func (m *Machine) Name() string { return m.name }

// IsShutdown reports whether Shutdown completed.
func (m *Machine) IsShutdown() bool { return m.shutdown }

// IsCorrupted reports whether a callback panicked while the active path
// was being changed. A corrupted machine accepts no further events.
func (m *Machine) IsCorrupted() bool { return m.corrupted }
