package production

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/comalice/hsmx"
)

const namespace = "hsmx"

// MetricsObserver is an hsmx.Observer exporting prometheus metrics per
// machine name.
type MetricsObserver struct {
	dispatch    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	entries     *prometheus.CounterVec
	exits       *prometheus.CounterVec
	active      *prometheus.GaugeVec
}

// NewMetricsObserver registers the metrics with reg. Use
// prometheus.DefaultRegisterer for the process-wide registry.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	factory := promauto.With(reg)
	return &MetricsObserver{
		dispatch: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Total number of dispatched events by outcome (handled, transition, unhandled)",
			},
			[]string{"machine", "outcome"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of completed transitions",
			},
			[]string{"machine"},
		),
		entries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_entries_total",
				Help:      "Total number of state entries",
			},
			[]string{"machine", "state"},
		),
		exits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_exits_total",
				Help:      "Total number of state exits",
			},
			[]string{"machine", "state"},
		),
		active: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_states",
				Help:      "Number of states on the active path",
			},
			[]string{"machine"},
		),
	}
}

// Observe implements hsmx.Observer.
func (o *MetricsObserver) Observe(m *hsmx.Machine, t hsmx.Trace) {
	name := m.Name()
	switch t.Kind {
	case hsmx.TraceEntry:
		o.entries.WithLabelValues(name, m.Hierarchy().Name(t.State)).Inc()
		o.active.WithLabelValues(name).Inc()
	case hsmx.TraceExit:
		o.exits.WithLabelValues(name, m.Hierarchy().Name(t.State)).Inc()
		o.active.WithLabelValues(name).Dec()
	case hsmx.TraceHandle:
		if t.Outcome.Kind() == hsmx.OutcomeHandled {
			o.dispatch.WithLabelValues(name, "handled").Inc()
		}
	case hsmx.TraceTransition:
		o.dispatch.WithLabelValues(name, "transition").Inc()
		o.transitions.WithLabelValues(name).Inc()
	case hsmx.TraceUnhandled:
		o.dispatch.WithLabelValues(name, "unhandled").Inc()
	}
}
