package production

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/comalice/hsmx"
)

// PublishedTransition describes one completed transition of a machine.
type PublishedTransition struct {
	MachineID uuid.UUID
	Machine   string
	Event     hsmx.EventID
	From      string
	To        string
	LCA       string
	Timestamp time.Time
}

// ChannelPublisher is an hsmx.Observer that forwards completed transitions
// to a Go channel. Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	id      uuid.UUID
	ch      chan<- PublishedTransition
	dropped atomic.Uint64
}

// NewChannelPublisher creates a ChannelPublisher with the given output
// channel and a fresh machine instance ID.
func NewChannelPublisher(ch chan<- PublishedTransition) *ChannelPublisher {
	return &ChannelPublisher{id: uuid.New(), ch: ch}
}

// ID returns the instance ID stamped on every published transition.
func (p *ChannelPublisher) ID() uuid.UUID { return p.id }

// Dropped returns how many transitions were dropped on a full channel.
func (p *ChannelPublisher) Dropped() uint64 { return p.dropped.Load() }

// Observe implements hsmx.Observer.
func (p *ChannelPublisher) Observe(m *hsmx.Machine, t hsmx.Trace) {
	if t.Kind != hsmx.TraceTransition {
		return
	}
	h := m.Hierarchy()
	msg := PublishedTransition{
		MachineID: p.id,
		Machine:   m.Name(),
		Event:     t.Event,
		From:      h.Name(t.Source),
		To:        h.Name(t.Target),
		LCA:       h.Name(t.LCA),
		Timestamp: time.Now(),
	}
	select {
	case p.ch <- msg:
	default:
		p.dropped.Add(1)
	}
}

// Close closes the output channel. The publisher must not observe
// afterwards.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
