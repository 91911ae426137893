package extensibility

import (
	"time"

	"go.uber.org/zap"

	"github.com/comalice/hsmx"
)

// EventAction runs as part of a transition.
type EventAction func(ctx *hsmx.Context, evt hsmx.Event)

// Logging wraps a handler with debug logs around its execution.
func Logging(log *zap.SugaredLogger, name string, h hsmx.Handler) hsmx.Handler {
	return func(ctx *hsmx.Context, evt hsmx.Event) hsmx.Outcome {
		log.Debugw("executing handler", "handler", name, "state", ctx.StateName(), "event", evt.ID)
		start := time.Now()
		out := h(ctx, evt)
		log.Debugw("handler completed", "handler", name, "outcome", out.String(), "duration", time.Since(start))
		return out
	}
}

// LoggingAction wraps an entry or exit action with debug logs.
func LoggingAction(log *zap.SugaredLogger, name string, a hsmx.Action) hsmx.Action {
	return func(ctx *hsmx.Context) {
		log.Debugw("executing action", "action", name, "state", ctx.StateName())
		start := time.Now()
		a(ctx)
		log.Debugw("action completed", "action", name, "duration", time.Since(start))
	}
}
