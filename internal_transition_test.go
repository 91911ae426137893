package hsmx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/testutil"
)

// An internal reaction runs its action without exiting or entering anything.
func TestInternalReactionRunsActionOnly(t *testing.T) {
	var calls int
	rec := testutil.NewRecorder()
	b := hsmx.NewMachineBuilder("Root")
	b.State("Root").Initial("Idle")
	b.State("Root.Idle").OnInternal("Poke", func(*hsmx.Context, hsmx.Event) { calls++ })
	m, err := hsmx.New(b.MustBuild(), hsmx.WithObserver(rec))
	require.NoError(t, err)
	rec.Reset()

	res, err := m.Dispatch(hsmx.NewEvent("Poke", nil))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.True(t, res.Handled)
	assert.False(t, res.Transitioned)
	assert.Equal(t, b.GetID("Idle"), m.Current())
	assert.Equal(t, []string{"handle(Idle,Poke)"}, rec.Lines())
}

// A leaf self-transition, unlike an internal reaction, exits and re-enters.
func TestInternalVersusSelfTransition(t *testing.T) {
	rec := testutil.NewRecorder()
	b := hsmx.NewMachineBuilder("Root")
	b.State("Root").Initial("Idle")
	b.State("Root.Idle").
		OnInternal("Stay", nil).
		Transition("Again", "Idle")
	m, err := hsmx.New(b.MustBuild(), hsmx.WithObserver(rec))
	require.NoError(t, err)
	rec.Reset()

	_, err = m.Dispatch(hsmx.NewEvent("Stay", nil))
	require.NoError(t, err)
	_, err = m.Dispatch(hsmx.NewEvent("Again", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"handle(Idle,Stay)",
		"handle(Idle,Again)", "exit(Idle)", "entry(Idle)",
	}, rec.Lines())
}

// The innermost state with a handler wins; its parent's internal reaction
// never runs.
func TestInternalInnermostHandlerWins(t *testing.T) {
	var log []string
	b := hsmx.NewMachineBuilder("Root")
	b.State("Root").
		Initial("Idle").
		OnInternal("Poke", func(*hsmx.Context, hsmx.Event) { log = append(log, "root") })
	b.State("Root.Idle").OnInternal("Poke", func(*hsmx.Context, hsmx.Event) { log = append(log, "idle") })
	m, err := hsmx.New(b.MustBuild())
	require.NoError(t, err)

	res, err := m.Dispatch(hsmx.NewEvent("Poke", nil))
	require.NoError(t, err)
	assert.Equal(t, b.GetID("Idle"), res.HandledBy)
	assert.Equal(t, []string{"idle"}, log)
}
