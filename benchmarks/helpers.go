// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/internal/extensibility"
	"github.com/comalice/hsmx/internal/primitives"
	"github.com/comalice/hsmx/internal/production"
)

// Tick is the event every generated definition reacts to.
const Tick hsmx.EventID = "tick"

// GenFlatConfig creates Root with n leaves cycling via "tick" events.
func GenFlatConfig(n int) primitives.MachineConfig {
	if n < 1 {
		n = 1
	}
	root := primitives.NewStateConfig("Root")
	for i := 0; i < n; i++ {
		root.State(fmt.Sprintf("s%d", i)).Transition(string(Tick), fmt.Sprintf("s%d", (i+1)%n))
	}
	return primitives.MachineConfig{
		ID:      fmt.Sprintf("flat_%d", n),
		Initial: "Root",
		States:  []*primitives.StateConfig{root},
	}
}

// GenDeepConfig creates two branches below Root whose leaves sit depth
// levels below Top. "tick" flips between the leaves, so every transition
// exits and enters depth-1 states. depth is clamped to [2, hsmx.MaxDepth].
func GenDeepConfig(depth int) primitives.MachineConfig {
	depth = max(2, min(depth, hsmx.MaxDepth))
	root := primitives.NewStateConfig("Root")
	for _, side := range []string{"l", "r"} {
		other := "r"
		if side == "r" {
			other = "l"
		}
		branch := root
		for level := 2; level < depth; level++ {
			branch = branch.State(fmt.Sprintf("%s%d", side, level))
		}
		branch.State(side+"leaf").Transition(string(Tick), other+"leaf")
	}
	return primitives.MachineConfig{
		ID:      fmt.Sprintf("deep_%d", depth),
		Initial: "Root",
		States:  []*primitives.StateConfig{root},
	}
}

// GenWideTransitions creates one main state with numTransitions guarded
// "tick" transitions. Only the lowest priority one passes its guard, so a
// dispatch evaluates every guard.
func GenWideTransitions(numTransitions int) primitives.MachineConfig {
	if numTransitions < 1 {
		numTransitions = 1
	}
	root := primitives.NewStateConfig("Root")
	main := root.State("main")
	for i := 0; i < numTransitions; i++ {
		target := fmt.Sprintf("target%d", i)
		guard := "never"
		if i == numTransitions-1 {
			guard = "always"
		}
		main.AddTransition(string(Tick), primitives.TransitionConfig{
			Target:   target,
			Guard:    guard,
			Priority: numTransitions - i,
		})
		root.State(target).Transition(string(Tick), "main")
	}
	primitives.SortTransitions(main.On[string(Tick)])
	return primitives.MachineConfig{
		ID:      fmt.Sprintf("wide_%d", numTransitions),
		Initial: "Root",
		States:  []*primitives.StateConfig{root},
	}
}

// Bindings returns the guards referenced by generated definitions.
func Bindings() production.Bindings {
	return production.Bindings{
		Guards: map[string]extensibility.Predicate{
			"always": func(*hsmx.Context, hsmx.Event) bool { return true },
			"never":  func(*hsmx.Context, hsmx.Event) bool { return false },
		},
	}
}

// MustCompile compiles config with Bindings and panics on error.
func MustCompile(config primitives.MachineConfig) *hsmx.Hierarchy {
	h, _, err := production.Compile(&config, Bindings())
	if err != nil {
		panic(err)
	}
	return h
}

// MustMachine starts a machine on h.
func MustMachine(h *hsmx.Hierarchy, opts ...hsmx.Option) *hsmx.Machine {
	m, err := hsmx.New(h, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// GenDefinitionYAML generates YAML bytes for a definition of given size.
func GenDefinitionYAML(numStates int, hierarchical bool) []byte {
	config := GenFlatConfig(numStates)
	if hierarchical {
		config = GenDeepConfig(numStates)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		panic(err)
	}
	return data
}
