package extensibility

import (
	"context"
	"sync"
	"time"

	"github.com/comalice/hsmx"
)

// EventSource produces events for a machine. The channel is closed when
// the source is exhausted.
type EventSource interface {
	Events() <-chan hsmx.Event
}

// Sender accepts events for later dispatch, such as a realtime.Runtime.
type Sender interface {
	Send(evt hsmx.Event) error
}

// ChannelEventSource is an EventSource implementation backed by a Go channel.
type ChannelEventSource struct {
	ch chan hsmx.Event
}

// NewChannelEventSource creates a new ChannelEventSource with the given channel.
// The channel should be buffered if backpressure handling is needed.
func NewChannelEventSource(ch chan hsmx.Event) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}

// Events returns the receive-only channel for events.
func (s *ChannelEventSource) Events() <-chan hsmx.Event {
	return s.ch
}

// TimerEventSource generates periodic events using time.Ticker.
// Useful for timeout/heartbeat statecharts.
type TimerEventSource struct {
	ch       chan hsmx.Event
	id       hsmx.EventID
	payload  any
	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTimerEventSource creates a TimerEventSource that emits events every d duration.
func NewTimerEventSource(id hsmx.EventID, payload any, d time.Duration) *TimerEventSource {
	t := &TimerEventSource{
		ch:      make(chan hsmx.Event, hsmx.EventPoolSize),
		id:      id,
		payload: payload,
		ticker:  time.NewTicker(d),
		stop:    make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerEventSource) run() {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- hsmx.NewEvent(t.id, t.payload):
			default:
				// drop if full
			}
		case <-t.stop:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Events returns the event channel.
func (t *TimerEventSource) Events() <-chan hsmx.Event {
	return t.ch
}

// Stop stops the ticker and closes the channel. It is safe to call twice.
func (t *TimerEventSource) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Pump forwards events from src to sink until ctx is done or src closes.
// Events the sink rejects are dropped and counted.
func Pump(ctx context.Context, src EventSource, sink Sender) (dropped int, err error) {
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return dropped, ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return dropped, nil
			}
			if sink.Send(evt) != nil {
				dropped++
			}
		}
	}
}

// Deadline sends evt to sink once d has elapsed. The returned function
// cancels the deadline and reports whether it was still pending.
func Deadline(sink Sender, evt hsmx.Event, d time.Duration) (cancel func() bool) {
	timer := time.AfterFunc(d, func() { _ = sink.Send(evt) })
	return timer.Stop
}
