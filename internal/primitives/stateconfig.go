package primitives

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StateConfig defines a state configuration, supporting hierarchical nesting.
type StateConfig struct {
	ID string `json:"id" yaml:"id"`
	// Initial names the child entered with this state; required when
	// Children is not empty.
	Initial  string                        `json:"initial,omitempty" yaml:"initial,omitempty"`
	On       map[string][]TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
	Entry    []string                      `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit     []string                      `json:"exit,omitempty" yaml:"exit,omitempty"`
	Children []*StateConfig                `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewStateConfig creates a new StateConfig.
func NewStateConfig(id string) *StateConfig {
	return &StateConfig{ID: id}
}

// WithInitial sets the initial child state ID.
func (s *StateConfig) WithInitial(initial string) *StateConfig {
	s.Initial = initial
	return s
}

// AddTransition adds a transition for an event.
func (s *StateConfig) AddTransition(event string, trans TransitionConfig) *StateConfig {
	if s.On == nil {
		s.On = make(map[string][]TransitionConfig)
	}
	s.On[event] = append(s.On[event], trans)
	return s
}

// AddEntry adds an entry action reference.
func (s *StateConfig) AddEntry(action string) *StateConfig {
	s.Entry = append(s.Entry, action)
	return s
}

// AddExit adds an exit action reference.
func (s *StateConfig) AddExit(action string) *StateConfig {
	s.Exit = append(s.Exit, action)
	return s
}

// AddChild adds a child state. The first child becomes the initial one
// unless Initial is already set.
func (s *StateConfig) AddChild(child *StateConfig) *StateConfig {
	s.Children = append(s.Children, child)
	if s.Initial == "" {
		s.Initial = child.ID
	}
	return s
}

// State creates and adds a child state.
// Returns the child for fluent chaining: parent.State("child").Transition("evt", "target").
func (s *StateConfig) State(id string) *StateConfig {
	child := NewStateConfig(id)
	s.AddChild(child)
	return child
}

// Transition adds a simple transition from event to target.
// Optionally override with full TransitionConfig via first arg.
// Usage: .Transition("evt", "target") or .Transition("evt", "", TransitionConfig{Guard: "armed"}).
func (s *StateConfig) Transition(event, target string, transOpts ...TransitionConfig) *StateConfig {
	trans := TransitionConfig{Target: target}
	if len(transOpts) > 0 {
		trans = transOpts[0]
		if trans.Target == "" {
			trans.Target = target
		}
	}
	return s.AddTransition(event, trans)
}

// Child returns the direct child with the given ID, or nil.
func (s *StateConfig) Child(id string) *StateConfig {
	for _, child := range s.Children {
		if child.ID == id {
			return child
		}
	}
	return nil
}

// Events returns the events of On in sorted order.
func (s *StateConfig) Events() []string {
	events := make([]string, 0, len(s.On))
	for event := range s.On {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// Depth returns the number of levels of this subtree, 1 for a leaf.
func (s *StateConfig) Depth() int {
	deepest := 0
	for _, child := range s.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func (s *StateConfig) flattenInto(m map[string]*StateConfig) error {
	if _, dup := m[s.ID]; dup {
		return fmt.Errorf("duplicate state ID %q", s.ID)
	}
	m[s.ID] = s
	for _, child := range s.Children {
		if err := child.flattenInto(m); err != nil {
			return err
		}
	}
	return nil
}

// Validate performs recursive validation of the StateConfig tree.
func (s *StateConfig) Validate() error {
	if err := validateID(s.ID); err != nil {
		return fmt.Errorf("state ID: %w", err)
	}

	if len(s.Children) == 0 {
		if s.Initial != "" {
			return fmt.Errorf("leaf state %s cannot have Initial", s.ID)
		}
	} else {
		if s.Initial == "" {
			return fmt.Errorf("composite state %s requires Initial child", s.ID)
		}
		if s.Child(s.Initial) == nil {
			return fmt.Errorf("initial child %q not found in children of %s", s.Initial, s.ID)
		}
	}

	for event, transitions := range s.On {
		if strings.TrimSpace(event) == "" {
			return fmt.Errorf("empty event name in On map for state %s", s.ID)
		}
		for i := range transitions {
			if err := transitions[i].Validate(); err != nil {
				return fmt.Errorf("state %s, event %q, transition %d: %w", s.ID, event, i, err)
			}
		}
	}

	for i, child := range s.Children {
		if child == nil {
			return fmt.Errorf("child %d of %s is nil", i, s.ID)
		}
		if err := child.Validate(); err != nil {
			return fmt.Errorf("child %d (%s) of %s failed validation: %w", i, child.ID, s.ID, err)
		}
	}

	return nil
}

// validateID accepts alphanumeric IDs with underscores and hyphens. The
// name "top" is reserved for the implicit root.
func validateID(id string) error {
	if id == "" {
		return errors.New("is required")
	}
	if id == "top" {
		return errors.New(`"top" is reserved`)
	}
	for _, r := range id {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return fmt.Errorf("invalid character '%c' in %q", r, id)
		}
	}
	return nil
}
