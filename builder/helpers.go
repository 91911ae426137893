// Package builder declares hierarchies as nested trees of nodes. The first
// child of every composite node is its initial child.
package builder

import (
	"github.com/comalice/hsmx"
)

// ID shortcut
type ID = hsmx.StateID

// Convenience types for transition guards and actions
type (
	Action func(ctx *hsmx.Context, evt hsmx.Event)
	Guard  func(ctx *hsmx.Context, evt hsmx.Event) bool
)

// Node is one state of a tree passed to Build.
type Node struct {
	name     string
	children []*Node
	opts     []Option
}

// Option pattern for configuring states
type Option func(b *hsmx.MachineBuilder, s *hsmx.StateBuilder)

// New creates a basic leaf state
func New(name string, opts ...Option) *Node {
	return &Node{name: name, opts: opts}
}

// Composite creates a composite state with children in order (first = initial)
func Composite(name string, children ...*Node) *Node {
	return &Node{name: name, children: children}
}

// With adds options to a node, typically a Composite.
func (n *Node) With(opts ...Option) *Node {
	n.opts = append(n.opts, opts...)
	return n
}

// Name returns the node's state name.
func (n *Node) Name() string { return n.name }

// Build declares every node of the given top-level trees. The first tree
// is entered when a machine starts.
func Build(roots ...*Node) (*hsmx.Hierarchy, *hsmx.MachineBuilder, error) {
	initial := ""
	if len(roots) > 0 {
		initial = roots[0].name
	}
	b := hsmx.NewMachineBuilder(initial)
	for _, root := range roots {
		declare(b, root, "")
	}
	h, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return h, b, nil
}

func declare(b *hsmx.MachineBuilder, n *Node, parent string) {
	s := b.State(n.name)
	if parent != "" {
		s.Parent(parent)
	}
	if len(n.children) > 0 {
		s.Initial(n.children[0].name)
	}
	for _, opt := range n.opts {
		opt(b, s)
	}
	for _, ch := range n.children {
		declare(b, ch, n.name)
	}
}

// OnEntry adds an action to a state that executes when the state is entered.
func OnEntry(act hsmx.Action) Option {
	return func(_ *hsmx.MachineBuilder, s *hsmx.StateBuilder) { s.Entry(act) }
}

// OnExit adds an action to a state that executes when the state is exited.
func OnExit(act hsmx.Action) Option {
	return func(_ *hsmx.MachineBuilder, s *hsmx.StateBuilder) { s.Exit(act) }
}

// Handle registers a raw handler.
func Handle(event hsmx.EventID, h hsmx.Handler) Option {
	return func(_ *hsmx.MachineBuilder, s *hsmx.StateBuilder) { s.On(event, h) }
}

// transition is the declarative form compiled into a Handler.
type transition struct {
	guard  Guard
	action Action
}

// On adds an outbound transition to a target state. A false guard passes
// the event to the parent state.
func On(event hsmx.EventID, target string, opts ...TransOption) Option {
	return func(b *hsmx.MachineBuilder, s *hsmx.StateBuilder) {
		var t transition
		for _, opt := range opts {
			opt(&t)
		}
		dest := b.GetID(target)
		s.On(event, func(ctx *hsmx.Context, evt hsmx.Event) hsmx.Outcome {
			if t.guard != nil && !t.guard(ctx, evt) {
				return hsmx.Pass
			}
			if t.action != nil {
				t.action(ctx, evt)
			}
			return hsmx.TransitionTo(dest)
		})
	}
}

// Internal consumes an event without leaving the state.
func Internal(event hsmx.EventID, act Action, opts ...TransOption) Option {
	return func(_ *hsmx.MachineBuilder, s *hsmx.StateBuilder) {
		var t transition
		for _, opt := range opts {
			opt(&t)
		}
		s.On(event, func(ctx *hsmx.Context, evt hsmx.Event) hsmx.Outcome {
			if t.guard != nil && !t.guard(ctx, evt) {
				return hsmx.Pass
			}
			if act != nil {
				act(ctx, evt)
			}
			return hsmx.Handled
		})
	}
}

type TransOption func(*transition)

func WithGuard(g Guard) TransOption {
	return func(t *transition) { t.guard = g }
}

func WithAction(act Action) TransOption {
	return func(t *transition) { t.action = act }
}
