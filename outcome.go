package hsmx

import "fmt"

// OutcomeKind classifies an Outcome.
type OutcomeKind uint8

const (
	// OutcomePass continues bubbling to the parent state.
	OutcomePass OutcomeKind = iota
	// OutcomeHandled stops bubbling without a transition.
	OutcomeHandled
	// OutcomeTransition stops bubbling and reconfigures the active states.
	OutcomeTransition
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePass:
		return "pass"
	case OutcomeHandled:
		return "handled"
	case OutcomeTransition:
		return "transition"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", uint8(k))
	}
}

// Outcome is the result of offering an event to one state.
// The zero value is Pass.
type Outcome struct {
	kind   OutcomeKind
	target StateID
}

var (
	// Pass hands the event to the parent state.
	Pass = Outcome{kind: OutcomePass}
	// Handled consumes the event.
	Handled = Outcome{kind: OutcomeHandled}
)

// TransitionTo consumes the event and requests a transition to dest.
func TransitionTo(dest StateID) Outcome {
	return Outcome{kind: OutcomeTransition, target: dest}
}

// Kind returns the outcome classification.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Target returns the requested destination. Only meaningful for
// OutcomeTransition.
func (o Outcome) Target() StateID { return o.target }

// IsPass reports whether the event should bubble further.
func (o Outcome) IsPass() bool { return o.kind == OutcomePass }

func (o Outcome) String() string {
	if o.kind == OutcomeTransition {
		return fmt.Sprintf("transition(%d)", o.target)
	}
	return o.kind.String()
}
