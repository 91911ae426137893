package production

import (
	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/internal/extensibility"
	"github.com/comalice/hsmx/internal/primitives"
)

// sampleConfig is Root{State1{State11, State12}, State2}. State11 counts
// Tick events while count < 3 and leaves for State12 afterwards.
func sampleConfig() primitives.MachineConfig {
	root := primitives.NewStateConfig("Root").AddEntry("reset")
	s1 := root.State("State1")
	s1.State("State11").
		Transition("Tick", "", primitives.TransitionConfig{Guard: "count < 3", Actions: []string{"count"}, Priority: 1}).
		Transition("Tick", "State12").
		Transition("Event1", "State12")
	s1.State("State12").Transition("Event2", "State2", primitives.TransitionConfig{Guard: "armed"})
	root.State("State2").AddExit("record").Transition("Back", "State1")
	return primitives.MachineConfig{ID: "sample", Initial: "Root", States: []*primitives.StateConfig{root}}
}

type journal struct {
	lines []string
}

func (j *journal) bindings(armed *bool) Bindings {
	return Bindings{
		Actions: map[string]extensibility.EventAction{
			"reset": func(ctx *hsmx.Context, _ hsmx.Event) { ctx.Store.Set("count", 0) },
			"count": func(ctx *hsmx.Context, _ hsmx.Event) {
				ctx.Store.Set("count", ctx.Store.Int("count", 0)+1)
			},
			"record": func(ctx *hsmx.Context, evt hsmx.Event) {
				j.lines = append(j.lines, ctx.StateName()+":"+string(evt.ID))
			},
		},
		Guards: map[string]extensibility.Predicate{
			"armed": func(*hsmx.Context, hsmx.Event) bool { return *armed },
		},
	}
}
