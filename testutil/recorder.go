package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/comalice/hsmx"
)

// Recorder is an hsmx.Observer that keeps a readable log of callbacks:
// "entry(State1)", "exit(State11)", "handle(State11,Event1)". Transition
// and unhandled traces are only kept when the matching flag is set.
type Recorder struct {
	mu      sync.Mutex
	entries []string

	// Transitions records "transition(State11->State12)" lines.
	Transitions bool
	// Unhandled records "unhandled(Event)" lines.
	Unhandled bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe implements hsmx.Observer.
func (r *Recorder) Observe(m *hsmx.Machine, t hsmx.Trace) {
	h := m.Hierarchy()
	var line string
	switch t.Kind {
	case hsmx.TraceEntry:
		line = fmt.Sprintf("entry(%s)", h.Name(t.State))
	case hsmx.TraceExit:
		line = fmt.Sprintf("exit(%s)", h.Name(t.State))
	case hsmx.TraceHandle:
		line = fmt.Sprintf("handle(%s,%s)", h.Name(t.State), t.Event)
	case hsmx.TraceTransition:
		if !r.Transitions {
			return
		}
		line = fmt.Sprintf("transition(%s->%s)", h.Name(t.Source), h.Name(t.Target))
	case hsmx.TraceUnhandled:
		if !r.Unhandled {
			return
		}
		line = fmt.Sprintf("unhandled(%s)", t.Event)
	default:
		return
	}
	r.mu.Lock()
	r.entries = append(r.entries, line)
	r.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

// Reset drops every recorded line.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = r.entries[:0]
	r.mu.Unlock()
}

// Count returns how often line was recorded.
func (r *Recorder) Count(line string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.entries {
		if l == line {
			n++
		}
	}
	return n
}

// Balance returns entries minus exits per state name. A machine that was
// shut down has zero for every state.
func (r *Recorder) Balance() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := make(map[string]int)
	for _, l := range r.entries {
		if name, ok := unwrap(l, "entry("); ok {
			balance[name]++
		} else if name, ok := unwrap(l, "exit("); ok {
			balance[name]--
		}
	}
	return balance
}

func unwrap(line, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(line, prefix)
	if !ok {
		return "", false
	}
	return strings.CutSuffix(rest, ")")
}
