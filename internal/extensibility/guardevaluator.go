package extensibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comalice/hsmx"
)

// Predicate decides whether a guarded handler may run.
type Predicate func(ctx *hsmx.Context, evt hsmx.Event) bool

// Guard wraps h so that it only runs when pred holds. Otherwise the event
// passes to the parent state.
func Guard(pred Predicate, h hsmx.Handler) hsmx.Handler {
	return func(ctx *hsmx.Context, evt hsmx.Event) hsmx.Outcome {
		if pred != nil && !pred(ctx, evt) {
			return hsmx.Pass
		}
		return h(ctx, evt)
	}
}

var operators = map[string]bool{"==": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true}

// ParseExpression compiles "key op value" into a Predicate. Supported
// operators are == != > >= < <=; value is true, false, nil, a number or
// a bare string.
func ParseExpression(expr string) (Predicate, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return nil, fmt.Errorf("expression %q: want \"key op value\"", expr)
	}
	key, op, literal := parts[0], parts[1], parts[2]
	if !operators[op] {
		return nil, fmt.Errorf("expression %q: unknown operator %q", expr, op)
	}
	number, numErr := strconv.ParseFloat(literal, 64)
	isNumber := numErr == nil
	if !isNumber && op != "==" && op != "!=" {
		return nil, fmt.Errorf("expression %q: operator %s needs a number", expr, op)
	}

	return func(ctx *hsmx.Context, evt hsmx.Event) bool {
		var v any
		var ok bool
		if key == "payload" {
			v, ok = evt.Payload, true
		} else if ctx != nil && ctx.Store != nil {
			v, ok = ctx.Store.Lookup(key)
		}
		if !ok {
			return false
		}

		if isNumber {
			f, isNum := toFloat(v)
			if !isNum {
				return op == "!="
			}
			switch op {
			case "==":
				return f == number
			case "!=":
				return f != number
			case ">":
				return f > number
			case ">=":
				return f >= number
			case "<":
				return f < number
			default:
				return f <= number
			}
		}

		eq := equalLiteral(v, literal)
		if op == "!=" {
			return !eq
		}
		return eq
	}, nil
}

func equalLiteral(v any, literal string) bool {
	switch literal {
	case "true":
		return v == true
	case "false":
		return v == false
	case "nil":
		return v == nil
	}
	s, ok := v.(string)
	return ok && s == literal
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
