// Package benchmarks provides performance benchmarks for the engine's dispatch and transition paths.
package benchmarks

import (
	"fmt"
	"testing"

	"github.com/comalice/hsmx"
)

func benchmarkDispatch(b *testing.B, m *hsmx.Machine, e hsmx.Event) {
	b.Helper()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Dispatch(e); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSimpleTransition(b *testing.B) {
	mb := hsmx.NewMachineBuilder("idle")
	mb.State("idle").Transition(Tick, "idle")
	m := MustMachine(mb.MustBuild())
	benchmarkDispatch(b, m, hsmx.NewEvent(Tick, nil))
}

func BenchmarkHierarchicalTransition(b *testing.B) {
	mb := hsmx.NewMachineBuilder("parent")
	mb.State("parent").Initial("leaf1")
	mb.State("parent.leaf1").Transition(Tick, "leaf2")
	mb.State("parent.leaf2").Transition(Tick, "leaf1")
	m := MustMachine(mb.MustBuild())
	benchmarkDispatch(b, m, hsmx.NewEvent(Tick, nil))
}

func BenchmarkDeepTransition(b *testing.B) {
	for _, depth := range []int{2, 4, hsmx.MaxDepth} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			m := MustMachine(MustCompile(GenDeepConfig(depth)))
			benchmarkDispatch(b, m, hsmx.NewEvent(Tick, nil))
		})
	}
}

func BenchmarkBubbling(b *testing.B) {
	mb := hsmx.NewMachineBuilder("s1")
	mb.State("s1").OnInternal(Tick, nil)
	prev := "s1"
	for level := 2; level <= hsmx.MaxDepth; level++ {
		name := fmt.Sprintf("s%d", level)
		mb.State(prev).Initial(name)
		mb.State(prev + "." + name)
		prev = name
	}
	m := MustMachine(mb.MustBuild())
	benchmarkDispatch(b, m, hsmx.NewEvent(Tick, nil))
}

func BenchmarkUnhandled(b *testing.B) {
	m := MustMachine(MustCompile(GenDeepConfig(hsmx.MaxDepth)))
	benchmarkDispatch(b, m, hsmx.NewEvent("nobody", nil))
}

func BenchmarkGuardedTransition(b *testing.B) {
	for _, n := range []int{1, 8, 32} {
		b.Run(fmt.Sprintf("transitions=%d", n), func(b *testing.B) {
			m := MustMachine(MustCompile(GenWideTransitions(n)))
			benchmarkDispatch(b, m, hsmx.NewEvent(Tick, nil))
		})
	}
}

func BenchmarkObservedTransition(b *testing.B) {
	var n int
	obs := hsmx.ObserverFunc(func(*hsmx.Machine, hsmx.Trace) { n++ })
	m := MustMachine(MustCompile(GenFlatConfig(10)), hsmx.WithObserver(obs))
	benchmarkDispatch(b, m, hsmx.NewEvent(Tick, nil))
}
