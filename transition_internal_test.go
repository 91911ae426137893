package hsmx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree: top{A{A1{A11, A12}, A2}, B}
func testHierarchy(t *testing.T) *Hierarchy {
	t.Helper()
	h, err := NewHierarchy([]StateDef{
		{ID: 0, Name: "top", Parent: noState, Initial: 1},
		{ID: 1, Name: "A", Parent: Top, Initial: 2},
		{ID: 2, Name: "A1", Parent: 1, Initial: 3},
		{ID: 3, Name: "A11", Parent: 2},
		{ID: 4, Name: "A12", Parent: 2},
		{ID: 5, Name: "A2", Parent: 1},
		{ID: 6, Name: "B", Parent: Top},
	})
	require.NoError(t, err)
	return h
}

func TestBuildTransition(t *testing.T) {
	h := testHierarchy(t)
	tests := []struct {
		name         string
		source, dest StateID
		lca          StateID
		exit, enter  []StateID
	}{
		{"initial", Top, 1, Top, nil, []StateID{1, 2, 3}},
		{"siblings", 3, 4, 2, []StateID{3}, []StateID{4}},
		{"cousins", 3, 5, 1, []StateID{3, 2}, []StateID{5}},
		{"across top", 4, 6, Top, []StateID{4, 2, 1}, []StateID{6}},
		{"into composite", 6, 2, Top, []StateID{6}, []StateID{1, 2, 3}},
		{"leaf self", 3, 3, 2, []StateID{3}, []StateID{3}},
		{"to parent", 4, 2, 2, []StateID{4}, []StateID{3}},
		{"to grandparent", 4, 1, 1, []StateID{4, 2}, []StateID{2, 3}},
		{"to descendant", 5, 4, 1, []StateID{5}, []StateID{2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr transition
			require.NoError(t, h.buildTransition(tt.source, tt.dest, &tr))
			assert.Equal(t, tt.lca, tr.lca, "lca")
			assert.Equal(t, tt.exit, tr.exit.Slice(), "exit")
			assert.Equal(t, tt.enter, tr.enter.Slice(), "enter")
		})
	}
}

func TestBuildTransitionRejects(t *testing.T) {
	h := testHierarchy(t)
	var tr transition

	assert.ErrorIs(t, h.buildTransition(3, Top, &tr), ErrTransitionToTop)
	assert.ErrorIs(t, h.buildTransition(3, 42, &tr), ErrUnknownState)
	assert.ErrorIs(t, h.buildTransition(3, -2, &tr), ErrUnknownState)
}

func TestStatePathCapacity(t *testing.T) {
	var p StatePath
	assert.Equal(t, Top, p.Last())
	for i := 0; i <= MaxDepth; i++ {
		require.NoError(t, p.push(StateID(i)))
	}
	assert.ErrorIs(t, p.push(99), ErrDepthExceeded)
	assert.Equal(t, MaxDepth+1, p.Len())
	assert.True(t, p.contains(3))
	assert.Equal(t, StateID(MaxDepth), p.pop())
	assert.False(t, p.contains(MaxDepth))
	p.reset()
	assert.Zero(t, p.Len())
}

func TestTransitionDoesNotAllocate(t *testing.T) {
	h := testHierarchy(t)
	var tr transition
	allocs := testing.AllocsPerRun(100, func() {
		_ = h.buildTransition(4, 6, &tr)
		_ = h.buildTransition(6, 2, &tr)
	})
	assert.Zero(t, allocs)
}
