package production

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/internal/extensibility"
	"github.com/comalice/hsmx/internal/primitives"
)

// ErrUnboundReference is returned when a definition names an action that
// no binding provides.
var ErrUnboundReference = errors.New("unbound reference")

// Bindings supplies the code referenced by name from a MachineConfig.
type Bindings struct {
	// Actions run as entry/exit actions or as transition actions.
	Actions map[string]extensibility.EventAction
	// Guards are named predicates. Guard strings that are not registered
	// here are parsed as store expressions ("count < 3").
	Guards map[string]extensibility.Predicate
	// Handlers replace the declarative reactions of a state for an event,
	// keyed by state ID.
	Handlers map[string]map[hsmx.EventID]hsmx.Handler
	// Logger, when set, traces every compiled handler and entry/exit
	// action at debug level.
	Logger *zap.SugaredLogger
}

// Compile validates cfg and turns it into a hierarchy. The returned
// builder resolves state names to ids.
func Compile(cfg *primitives.MachineConfig, b Bindings) (*hsmx.Hierarchy, *hsmx.MachineBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("machine %q: %w", cfg.ID, err)
	}
	mb := hsmx.NewMachineBuilder(cfg.Initial)
	c := &compiler{mb: mb, bindings: b}
	for _, s := range cfg.States {
		if err := c.state(s, ""); err != nil {
			return nil, nil, fmt.Errorf("machine %q: %w", cfg.ID, err)
		}
	}
	h, err := mb.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("machine %q: %w", cfg.ID, err)
	}
	return h, mb, nil
}

type compiler struct {
	mb       *hsmx.MachineBuilder
	bindings Bindings
}

func (c *compiler) state(s *primitives.StateConfig, parent string) error {
	sb := c.mb.State(s.ID)
	if parent != "" {
		sb.Parent(parent)
	}
	if s.Initial != "" {
		sb.Initial(s.Initial)
	}

	entry, err := c.actions(s.Entry)
	if err != nil {
		return fmt.Errorf("state %q entry: %w", s.ID, err)
	}
	if entry != nil {
		sb.Entry(c.traceAction(s.ID+".entry", func(ctx *hsmx.Context) { entry(ctx, eventOf(ctx)) }))
	}
	exit, err := c.actions(s.Exit)
	if err != nil {
		return fmt.Errorf("state %q exit: %w", s.ID, err)
	}
	if exit != nil {
		sb.Exit(c.traceAction(s.ID+".exit", func(ctx *hsmx.Context) { exit(ctx, eventOf(ctx)) }))
	}

	for _, event := range s.Events() {
		h, err := c.reactions(s.On[event])
		if err != nil {
			return fmt.Errorf("state %q event %q: %w", s.ID, event, err)
		}
		sb.On(hsmx.EventID(event), c.trace(s.ID+"."+event, h))
	}
	for event, h := range c.bindings.Handlers[s.ID] {
		sb.On(event, c.trace(s.ID+"."+string(event), h))
	}

	for _, child := range s.Children {
		if err := c.state(child, s.ID); err != nil {
			return err
		}
	}
	return nil
}

type reaction struct {
	guard    extensibility.Predicate
	action   extensibility.EventAction
	target   hsmx.StateID
	internal bool
}

// reactions compiles the transitions of one event into a handler that
// tries them by priority and passes the event when no guard holds.
func (c *compiler) reactions(transitions []primitives.TransitionConfig) (hsmx.Handler, error) {
	sorted := append([]primitives.TransitionConfig(nil), transitions...)
	primitives.SortTransitions(sorted)

	compiled := make([]reaction, 0, len(sorted))
	for _, tc := range sorted {
		r := reaction{internal: tc.IsInternal()}
		if !r.internal {
			r.target = c.mb.GetID(tc.Target)
		}
		guard, err := c.guard(tc.Guard)
		if err != nil {
			return nil, err
		}
		r.guard = guard
		action, err := c.actions(tc.Actions)
		if err != nil {
			return nil, err
		}
		r.action = action
		compiled = append(compiled, r)
	}

	return func(ctx *hsmx.Context, evt hsmx.Event) hsmx.Outcome {
		for _, r := range compiled {
			if r.guard != nil && !r.guard(ctx, evt) {
				continue
			}
			if r.action != nil {
				r.action(ctx, evt)
			}
			if r.internal {
				return hsmx.Handled
			}
			return hsmx.TransitionTo(r.target)
		}
		return hsmx.Pass
	}, nil
}

func (c *compiler) guard(ref string) (extensibility.Predicate, error) {
	if ref == "" {
		return nil, nil
	}
	if pred, ok := c.bindings.Guards[ref]; ok {
		return pred, nil
	}
	pred, err := extensibility.ParseExpression(ref)
	if err != nil {
		return nil, fmt.Errorf("guard %q is neither bound nor an expression: %w", ref, err)
	}
	return pred, nil
}

// actions resolves names into one action running them in order.
func (c *compiler) actions(refs []string) (extensibility.EventAction, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	fns := make([]extensibility.EventAction, 0, len(refs))
	for _, ref := range refs {
		fn, ok := c.bindings.Actions[ref]
		if !ok {
			return nil, fmt.Errorf("action %q: %w", ref, ErrUnboundReference)
		}
		fns = append(fns, fn)
	}
	return func(ctx *hsmx.Context, evt hsmx.Event) {
		for _, fn := range fns {
			fn(ctx, evt)
		}
	}, nil
}

func (c *compiler) trace(name string, h hsmx.Handler) hsmx.Handler {
	if c.bindings.Logger == nil {
		return h
	}
	return extensibility.Logging(c.bindings.Logger, name, h)
}

func (c *compiler) traceAction(name string, a hsmx.Action) hsmx.Action {
	if c.bindings.Logger == nil {
		return a
	}
	return extensibility.LoggingAction(c.bindings.Logger, name, a)
}

func eventOf(ctx *hsmx.Context) hsmx.Event {
	if ctx.Event == nil {
		return hsmx.Event{}
	}
	return *ctx.Event
}
