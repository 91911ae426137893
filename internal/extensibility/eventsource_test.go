package extensibility

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/hsmx"
)

type sink struct {
	mu     sync.Mutex
	events []hsmx.Event
	limit  int
}

func (s *sink) Send(evt hsmx.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.events) >= s.limit {
		return errors.New("full")
	}
	s.events = append(s.events, evt)
	return nil
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestChannelEventSourcePump(t *testing.T) {
	ch := make(chan hsmx.Event, 4)
	src := NewChannelEventSource(ch)
	ch <- hsmx.NewEvent("a", nil)
	ch <- hsmx.NewEvent("b", nil)
	ch <- hsmx.NewEvent("c", nil)
	close(ch)

	dst := &sink{limit: 2}
	dropped, err := Pump(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []hsmx.Event{hsmx.NewEvent("a", nil), hsmx.NewEvent("b", nil)}, dst.events)
}

func TestPumpStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Pump(ctx, NewChannelEventSource(make(chan hsmx.Event)), &sink{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimerEventSource(t *testing.T) {
	src := NewTimerEventSource("tick", "payload", 5*time.Millisecond)
	dst := &sink{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Pump(ctx, src, dst)
	}()

	assert.Eventually(t, func() bool { return dst.len() >= 3 }, time.Second, time.Millisecond)
	src.Stop()
	src.Stop()
	<-done

	dst.mu.Lock()
	defer dst.mu.Unlock()
	assert.Equal(t, hsmx.EventID("tick"), dst.events[0].ID)
	assert.Equal(t, "payload", dst.events[0].Payload)
}

func TestDeadline(t *testing.T) {
	dst := &sink{}
	Deadline(dst, hsmx.NewEvent("timeout", nil), 5*time.Millisecond)
	assert.Eventually(t, func() bool { return dst.len() == 1 }, time.Second, time.Millisecond)

	cancelled := &sink{}
	cancel := Deadline(cancelled, hsmx.NewEvent("timeout", nil), time.Hour)
	assert.True(t, cancel())
	assert.Zero(t, cancelled.len())
}
