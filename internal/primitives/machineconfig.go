package primitives

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comalice/hsmx"
)

// MachineConfig defines a complete hierarchy.
type MachineConfig struct {
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	ID      string `json:"id" yaml:"id"`
	// Initial names the top-level state entered when a machine starts.
	Initial string         `json:"initial" yaml:"initial"`
	States  []*StateConfig `json:"states" yaml:"states"`
}

// Validate validates the entire machine configuration:
// - Non-empty ID and Initial
// - Initial is a top-level state
// - All individual states validate (recursive), nesting at most hsmx.MaxDepth
// - State IDs are unique across the tree
// - All transition targets exist
// - No orphaned states (all reachable from Initial)
func (m *MachineConfig) Validate() error {
	if m.ID == "" {
		return errors.New("machine ID is required")
	}
	if m.Initial == "" {
		return errors.New("initial state ID is required")
	}
	if len(m.States) == 0 {
		return errors.New("states are required and cannot be empty")
	}

	var initial *StateConfig
	for _, s := range m.States {
		if s != nil && s.ID == m.Initial {
			initial = s
		}
	}
	if initial == nil {
		return fmt.Errorf("initial state %q is not a top-level state", m.Initial)
	}

	for _, s := range m.States {
		if s == nil {
			return errors.New("nil top-level state")
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("state %q validation failed: %w", s.ID, err)
		}
		if d := s.Depth(); d > hsmx.MaxDepth {
			return fmt.Errorf("state %q nests %d levels, maximum is %d", s.ID, d, hsmx.MaxDepth)
		}
	}

	all, err := m.Flatten()
	if err != nil {
		return err
	}

	for _, sid := range m.StateIDs() {
		for _, event := range all[sid].Events() {
			for i, trans := range all[sid].On[event] {
				if trans.Target == "" {
					continue
				}
				if _, exists := all[trans.Target]; !exists {
					return fmt.Errorf("invalid transition target %q (state %q, event %q, transition %d)", trans.Target, sid, event, i)
				}
			}
		}
	}

	visited := make(map[string]bool, len(all))
	m.markReachable(initial, all, visited)
	for _, sid := range m.StateIDs() {
		if !visited[sid] {
			return fmt.Errorf("orphaned state %q (not reachable from initial %q)", sid, m.Initial)
		}
	}

	return nil
}

// markReachable recursively marks reachable states via Children hierarchy and transition targets.
func (m *MachineConfig) markReachable(state *StateConfig, states map[string]*StateConfig, visited map[string]bool) {
	if visited[state.ID] {
		return
	}
	visited[state.ID] = true

	for _, child := range state.Children {
		m.markReachable(child, states, visited)
	}
	for _, transitions := range state.On {
		for _, trans := range transitions {
			if target, ok := states[trans.Target]; ok {
				m.markReachable(target, states, visited)
			}
		}
	}
}

// Flatten returns every state of the machine keyed by ID. Duplicate IDs
// are an error.
func (m *MachineConfig) Flatten() (map[string]*StateConfig, error) {
	all := make(map[string]*StateConfig)
	for _, s := range m.States {
		if err := s.flattenInto(all); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// StateIDs returns every state ID in declaration order, parents before
// children.
func (m *MachineConfig) StateIDs() []string {
	var ids []string
	var walk func(s *StateConfig)
	walk = func(s *StateConfig) {
		ids = append(ids, s.ID)
		for _, child := range s.Children {
			walk(child)
		}
	}
	for _, s := range m.States {
		walk(s)
	}
	return ids
}

// FindState resolves a state by hierarchical path (e.g. "parent.child.grandchild").
func (m *MachineConfig) FindState(path string) (*StateConfig, error) {
	if path == "" {
		return nil, errors.New("path cannot be empty")
	}
	segments := strings.Split(path, ".")

	var current *StateConfig
	for _, s := range m.States {
		if s.ID == segments[0] {
			current = s
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("state %q not found", segments[0])
	}
	for i := 1; i < len(segments); i++ {
		child := current.Child(segments[i])
		if child == nil {
			prefix := strings.Join(segments[:i], ".")
			return nil, fmt.Errorf("child %q not found in %q", segments[i], prefix)
		}
		current = child
	}
	return current, nil
}
