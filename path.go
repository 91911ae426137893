package hsmx

// StatePath is a fixed-capacity sequence of state ids. It holds at most
// MaxDepth states plus Top, so building one never allocates.
type StatePath struct {
	states [MaxDepth + 1]StateID
	n      int
}

// Len returns the number of ids in the path.
func (p *StatePath) Len() int { return p.n }

// At returns the i-th id.
func (p *StatePath) At(i int) StateID { return p.states[i] }

// Last returns the final id, or Top for an empty path.
func (p *StatePath) Last() StateID {
	if p.n == 0 {
		return Top
	}
	return p.states[p.n-1]
}

// Slice copies the path into a new slice.
func (p *StatePath) Slice() []StateID {
	return append([]StateID(nil), p.states[:p.n]...)
}

func (p *StatePath) push(id StateID) error {
	if p.n == len(p.states) {
		return ErrDepthExceeded
	}
	p.states[p.n] = id
	p.n++
	return nil
}

func (p *StatePath) pop() StateID {
	p.n--
	return p.states[p.n]
}

func (p *StatePath) reset() { p.n = 0 }

func (p *StatePath) contains(id StateID) bool {
	for i := 0; i < p.n; i++ {
		if p.states[i] == id {
			return true
		}
	}
	return false
}
