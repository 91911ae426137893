package hsmx

import "fmt"

// transition holds the computed exit and entry sequences of one state
// change. exit runs innermost first; enter runs outermost first and ends
// with the initial-substate chain below dest.
type transition struct {
	source StateID
	dest   StateID
	lca    StateID
	exit   StatePath
	enter  StatePath

	// scratch chains, reused between transitions
	sourceToTop StatePath
	destToTop   StatePath
}

// pathToTop fills p with id, its parent, ... up to and including Top.
func (h *Hierarchy) pathToTop(id StateID, p *StatePath) error {
	p.reset()
	for current := id; ; current = h.states[current].Parent {
		if err := p.push(current); err != nil {
			return &ConfigError{State: h.states[id].Name, Reason: "ancestor chain longer than path capacity", Err: err}
		}
		if current == Top {
			return nil
		}
	}
}

// buildTransition computes the exit and entry paths that move the active
// leaf source to dest. Nothing is executed; a returned error means no
// state may be touched.
func (h *Hierarchy) buildTransition(source, dest StateID, t *transition) error {
	if dest == Top {
		return ErrTransitionToTop
	}
	if !h.valid(dest) {
		return fmt.Errorf("%w: %d", ErrUnknownState, dest)
	}

	t.source, t.dest = source, dest
	t.exit.reset()
	t.enter.reset()

	if source == dest {
		t.lca = h.states[source].Parent
		_ = t.exit.push(source)
		_ = t.enter.push(dest)
		return h.appendInitialChain(dest, &t.enter)
	}

	if err := h.pathToTop(source, &t.sourceToTop); err != nil {
		return err
	}
	if err := h.pathToTop(dest, &t.destToTop); err != nil {
		return err
	}
	src, dst := &t.sourceToTop, &t.destToTop
	if src.Last() != Top || dst.Last() != Top {
		return newConfigError(h.states[dest].Name, "ancestor chains of %q and %q do not meet at top", h.states[source].Name, h.states[dest].Name)
	}

	// Walk inward from Top while both chains agree. When dest is an
	// ancestor of source the walk consumes all of dest's chain and dest
	// itself becomes the LCA: it stays active and only its initial chain
	// is re-entered.
	j, k := dst.Len()-1, src.Len()-1
	for j > 0 && k > 0 && dst.At(j-1) == src.At(k-1) {
		j--
		k--
	}
	t.lca = dst.At(j)

	for i := 0; i < k; i++ {
		_ = t.exit.push(src.At(i))
	}
	for i := j - 1; i >= 0; i-- {
		_ = t.enter.push(dst.At(i))
	}
	return h.appendInitialChain(dest, &t.enter)
}

// appendInitialChain follows initial children below id until a leaf.
func (h *Hierarchy) appendInitialChain(id StateID, p *StatePath) error {
	for child, ok := h.Initial(id); ok; child, ok = h.Initial(child) {
		if err := p.push(child); err != nil {
			return &ConfigError{State: h.states[id].Name, Reason: "initial chain longer than path capacity", Err: err}
		}
	}
	return nil
}
