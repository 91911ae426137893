package hsmx

// TraceKind classifies a Trace.
type TraceKind uint8

const (
	// TraceEntry is emitted after a state's entry action ran.
	TraceEntry TraceKind = iota + 1
	// TraceExit is emitted after a state's exit action ran.
	TraceExit
	// TraceHandle is emitted after a registered handler returned.
	TraceHandle
	// TraceTransition is emitted once a transition fully applied.
	TraceTransition
	// TraceUnhandled is emitted when every active state passed an event.
	TraceUnhandled
)

func (k TraceKind) String() string {
	switch k {
	case TraceEntry:
		return "entry"
	case TraceExit:
		return "exit"
	case TraceHandle:
		return "handle"
	case TraceTransition:
		return "transition"
	case TraceUnhandled:
		return "unhandled"
	default:
		return "unknown"
	}
}

// Trace records one observable step of a machine.
type Trace struct {
	Kind TraceKind
	// State is the entered, exited or handling state. For transitions it
	// is the state whose handler requested it.
	State StateID
	// Event is the dispatched event id, empty outside Dispatch.
	Event EventID
	// Outcome is set for TraceHandle.
	Outcome Outcome
	// Source, Target and LCA are set for TraceTransition.
	Source StateID
	Target StateID
	LCA    StateID
}

// Observer receives traces synchronously on the dispatching goroutine.
// Observers must not call Dispatch or Shutdown.
type Observer interface {
	Observe(m *Machine, t Trace)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(m *Machine, t Trace)

// Observe calls f.
func (f ObserverFunc) Observe(m *Machine, t Trace) { f(m, t) }
