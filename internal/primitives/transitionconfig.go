package primitives

import (
	"errors"
	"fmt"
	"sort"
)

// TransitionConfig defines one reaction to an event. Transitions of the
// same event are tried by Priority (highest first, declaration order on
// ties); the first whose Guard holds wins. An empty Target consumes the
// event without leaving the state.
type TransitionConfig struct {
	Guard    string   `json:"guard,omitempty" yaml:"guard,omitempty"`
	Target   string   `json:"target,omitempty" yaml:"target,omitempty"`
	Actions  []string `json:"actions,omitempty" yaml:"actions,omitempty"`
	Priority int      `json:"priority,omitempty" yaml:"priority,omitempty"` // higher = evaluated first (default 0)
}

// IsInternal reports whether the transition keeps the current state.
func (t *TransitionConfig) IsInternal() bool { return t.Target == "" }

// Validate checks TransitionConfig fields and target syntax.
func (t *TransitionConfig) Validate() error {
	if t.Target != "" {
		if err := validateID(t.Target); err != nil {
			return fmt.Errorf("invalid target: %w", err)
		}
	}
	for i, action := range t.Actions {
		if action == "" {
			return fmt.Errorf("empty action reference at index %d", i)
		}
	}
	if t.Priority < 0 {
		return errors.New("priority must be non-negative")
	}
	return nil
}

// SortTransitions sorts the slice in place by Priority descending (highest first).
func SortTransitions(transitions []TransitionConfig) {
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].Priority > transitions[j].Priority
	})
}
