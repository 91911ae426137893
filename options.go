package hsmx

import "go.uber.org/zap"

// Option applies configuration to a Machine via the functional options pattern.
type Option func(*Machine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

// WithObserver adds observers notified of every entry, exit, handler call
// and transition.
func WithObserver(obs ...Observer) Option {
	return func(m *Machine) {
		for _, o := range obs {
			if o != nil {
				m.observers = append(m.observers, o)
			}
		}
	}
}

// WithStore shares an existing extended-state store with the machine.
func WithStore(s *Store) Option {
	return func(m *Machine) {
		if s != nil {
			m.store = s
		}
	}
}

// WithAssertions makes protocol violations (re-entrant dispatch, transition
// to Top, unknown targets) panic instead of returning an error.
func WithAssertions(enabled bool) Option {
	return func(m *Machine) {
		m.assertions = enabled
	}
}

// WithName labels the machine in logs and observers.
func WithName(name string) Option {
	return func(m *Machine) {
		m.name = name
	}
}
