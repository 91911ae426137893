package hsmx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/comalice/hsmx"
)

func TestOutcomeZeroValueIsPass(t *testing.T) {
	var out hsmx.Outcome
	assert.True(t, out.IsPass())
	assert.Equal(t, hsmx.Pass, out)
	assert.Equal(t, hsmx.OutcomePass, out.Kind())
}

func TestHandledAndPassAreDistinct(t *testing.T) {
	assert.NotEqual(t, hsmx.Handled, hsmx.Pass)
	assert.False(t, hsmx.Handled.IsPass())
	assert.Equal(t, hsmx.OutcomeHandled, hsmx.Handled.Kind())
}

func TestTransitionTo(t *testing.T) {
	out := hsmx.TransitionTo(4)
	assert.Equal(t, hsmx.OutcomeTransition, out.Kind())
	assert.Equal(t, hsmx.StateID(4), out.Target())
	assert.False(t, out.IsPass())
	assert.Equal(t, "transition(4)", out.String())
	assert.Equal(t, "handled", hsmx.Handled.String())
	assert.Equal(t, "pass", hsmx.Pass.String())
}
