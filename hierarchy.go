package hsmx

// noState marks the missing parent of Top.
const noState StateID = -1

// StateDef is the static definition of one state. Parent is Top for
// top-level states. Initial is Top for leaf states: Top can never be a
// child, so it doubles as "no initial child".
type StateDef struct {
	ID       StateID
	Name     string
	Parent   StateID
	Initial  StateID
	Entry    Action
	Exit     Action
	Handlers map[EventID]Handler
	// Default runs for events without an entry in Handlers.
	Default Handler
}

// Hierarchy is the immutable state table of a machine. Build one with
// MachineBuilder; a Hierarchy may back any number of machines.
type Hierarchy struct {
	states   []StateDef
	byName   map[string]StateID
	children [][]StateID
}

// NewHierarchy validates defs and returns the resulting table. defs[i].ID
// must equal i and defs[0] must describe Top.
func NewHierarchy(defs []StateDef) (*Hierarchy, error) {
	h := &Hierarchy{
		states:   make([]StateDef, len(defs)),
		byName:   make(map[string]StateID, len(defs)),
		children: make([][]StateID, len(defs)),
	}
	copy(h.states, defs)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	for _, s := range h.states {
		h.byName[s.Name] = s.ID
	}
	for _, s := range h.states[1:] {
		h.children[s.Parent] = append(h.children[s.Parent], s.ID)
	}
	return h, nil
}

// Validate checks the tree invariants: a single rooted tree under Top with
// no cycles, depth at most MaxDepth, unique names, and an initial child for
// every composite state that is one of its direct children. Validate only
// reads the table, so machines sharing h may call it concurrently.
func (h *Hierarchy) Validate() error {
	if len(h.states) < 2 {
		return newConfigError("", "hierarchy needs at least one state below top")
	}
	if h.states[Top].ID != Top || h.states[Top].Parent != noState {
		return newConfigError(h.states[Top].Name, "first definition must be the top state")
	}

	names := make(map[string]StateID, len(h.states))
	hasChildren := make([]bool, len(h.states))
	for i, s := range h.states {
		if s.ID != StateID(i) {
			return newConfigError(s.Name, "definition %d carries id %d", i, s.ID)
		}
		if s.Name == "" {
			return newConfigError("", "state %d has no name", i)
		}
		if prev, dup := names[s.Name]; dup {
			return newConfigError(s.Name, "name already used by state %d", prev)
		}
		names[s.Name] = s.ID
		if i == 0 {
			continue
		}
		if !h.valid(s.Parent) {
			return newConfigError(s.Name, "references undefined parent %d", s.Parent)
		}
		hasChildren[s.Parent] = true
	}

	for _, s := range h.states[1:] {
		if err := h.checkAncestry(s.ID); err != nil {
			return err
		}
	}

	for _, s := range h.states {
		if s.Initial == Top {
			if hasChildren[s.ID] {
				return newConfigError(s.Name, "composite state has no initial child")
			}
			continue
		}
		if !h.valid(s.Initial) {
			return newConfigError(s.Name, "references undefined initial child %d", s.Initial)
		}
		if h.states[s.Initial].Parent != s.ID {
			return newConfigError(s.Name, "initial child %q is not a direct child", h.states[s.Initial].Name)
		}
	}

	return nil
}

// checkAncestry walks from id to Top, failing on cycles and on depth
// overflow.
func (h *Hierarchy) checkAncestry(id StateID) error {
	visited := make(map[StateID]bool, MaxDepth)
	depth := 0
	for current := id; current != Top; current = h.states[current].Parent {
		if visited[current] {
			return newConfigError(h.states[id].Name, "cycle detected in parent chain at %q", h.states[current].Name)
		}
		visited[current] = true
		depth++
		if depth > MaxDepth {
			err := newConfigError(h.states[id].Name, "depth %d exceeds maximum %d", depth, MaxDepth)
			err.Err = ErrDepthExceeded
			return err
		}
	}
	return nil
}

func (h *Hierarchy) valid(id StateID) bool {
	return id >= 0 && int(id) < len(h.states)
}

// Len returns the number of states including Top.
func (h *Hierarchy) Len() int { return len(h.states) }

// Def returns the definition of id.
func (h *Hierarchy) Def(id StateID) (StateDef, bool) {
	if !h.valid(id) {
		return StateDef{}, false
	}
	return h.states[id], true
}

// Name returns the registered name of id, or "" for an unknown id.
func (h *Hierarchy) Name(id StateID) string {
	if !h.valid(id) {
		return ""
	}
	return h.states[id].Name
}

// Lookup resolves a state name.
func (h *Hierarchy) Lookup(name string) (StateID, bool) {
	id, ok := h.byName[name]
	return id, ok
}

// Parent returns the parent of id. Top has none.
func (h *Hierarchy) Parent(id StateID) (StateID, bool) {
	if !h.valid(id) || id == Top {
		return noState, false
	}
	return h.states[id].Parent, true
}

// Initial returns the initial child of a composite state.
func (h *Hierarchy) Initial(id StateID) (StateID, bool) {
	if !h.valid(id) || h.states[id].Initial == Top {
		return Top, false
	}
	return h.states[id].Initial, true
}

// Children returns the direct children of id in registration order.
func (h *Hierarchy) Children(id StateID) []StateID {
	if !h.valid(id) {
		return nil
	}
	return append([]StateID(nil), h.children[id]...)
}

// IsLeaf reports whether id has no children.
func (h *Hierarchy) IsLeaf(id StateID) bool {
	return h.valid(id) && len(h.children[id]) == 0
}

// Depth returns the number of states from Top (exclusive) to id (inclusive).
func (h *Hierarchy) Depth(id StateID) int {
	depth := 0
	for current := id; h.valid(current) && current != Top; current = h.states[current].Parent {
		depth++
	}
	return depth
}

// States returns every state id except Top, in id order.
func (h *Hierarchy) States() []StateID {
	ids := make([]StateID, 0, len(h.states)-1)
	for _, s := range h.states[1:] {
		ids = append(ids, s.ID)
	}
	return ids
}

// HasDescendant reports whether candidate lies strictly below root.
func (h *Hierarchy) HasDescendant(root, candidate StateID) bool {
	if !h.valid(root) || !h.valid(candidate) || root == candidate {
		return false
	}
	for current := candidate; current != Top; {
		current = h.states[current].Parent
		if current == root {
			return true
		}
	}
	return false
}

// handler returns the handler of id for evt, or nil when the state would
// pass it.
func (h *Hierarchy) handler(id StateID, evt EventID) Handler {
	s := &h.states[id]
	if fn, ok := s.Handlers[evt]; ok && fn != nil {
		return fn
	}
	return s.Default
}
