package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/testutil"
)

// The same scenario must end identically whether events are dispatched
// directly or queued through the runtime.
func TestScenarioUnderBothAdapters(t *testing.T) {
	adapters := map[string]func(*hsmx.Machine) testutil.RuntimeAdapter{
		"direct": func(m *hsmx.Machine) testutil.RuntimeAdapter { return testutil.NewDirectAdapter(m) },
		"queued": func(m *hsmx.Machine) testutil.RuntimeAdapter {
			return testutil.NewQueuedAdapter(m, time.Millisecond)
		},
	}

	for name, newAdapter := range adapters {
		t.Run(name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			b := hsmx.NewMachineBuilder("Root")
			b.State("Root").Initial("State1")
			b.State("Root.State1").Initial("State11")
			b.State("State1.State11").Transition("Event1", "State12")
			b.State("State1.State12").Transition("Event2", "State2")
			b.State("Root.State2")
			m, err := hsmx.New(b.MustBuild(), hsmx.WithObserver(rec))
			require.NoError(t, err)

			a := newAdapter(m)
			require.NoError(t, a.Start(context.Background()))

			require.NoError(t, a.SendEvent(hsmx.NewEvent("Event1", nil)))
			require.NoError(t, a.WaitForStability(time.Second))
			assert.Equal(t, b.GetID("State12"), a.GetCurrentState())

			require.NoError(t, a.SendEvent(hsmx.NewEvent("Event2", nil)))
			require.NoError(t, a.WaitForStability(time.Second))
			assert.Equal(t, b.GetID("State2"), a.GetCurrentState())
			assert.True(t, a.IsInState(b.GetID("Root")))
			assert.False(t, a.IsInState(b.GetID("State1")))

			require.NoError(t, a.Stop())
			assert.Equal(t, []string{
				"entry(Root)", "entry(State1)", "entry(State11)",
				"handle(State11,Event1)", "exit(State11)", "entry(State12)",
				"handle(State12,Event2)", "exit(State12)", "exit(State1)", "entry(State2)",
				"exit(State2)", "exit(Root)",
			}, rec.Lines())
			for state, n := range rec.Balance() {
				assert.Zero(t, n, state)
			}
		})
	}
}
