package testutil

import (
	"context"
	"errors"
	"time"

	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/realtime"
)

// RuntimeAdapter provides a common interface for driving a machine
// directly or through the queued runtime.
// This allows running the same test suite on both.
type RuntimeAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	SendEvent(event hsmx.Event) error
	IsInState(stateID hsmx.StateID) bool
	GetCurrentState() hsmx.StateID
	WaitForStability(timeout time.Duration) error
}

// ErrNotStable is returned when queued events are still pending after the
// timeout.
var ErrNotStable = errors.New("runtime did not settle before timeout")

// DirectAdapter dispatches synchronously on the caller's goroutine.
type DirectAdapter struct {
	m *hsmx.Machine
}

// NewDirectAdapter creates a new adapter that calls Dispatch directly.
func NewDirectAdapter(m *hsmx.Machine) *DirectAdapter {
	return &DirectAdapter{m: m}
}

func (a *DirectAdapter) Start(ctx context.Context) error { return nil }

func (a *DirectAdapter) Stop() error { return a.m.Shutdown() }

func (a *DirectAdapter) SendEvent(event hsmx.Event) error {
	_, err := a.m.Dispatch(event)
	return err
}

func (a *DirectAdapter) IsInState(stateID hsmx.StateID) bool { return a.m.IsInState(stateID) }

func (a *DirectAdapter) GetCurrentState() hsmx.StateID { return a.m.Current() }

// WaitForStability returns immediately: every dispatch already completed.
func (a *DirectAdapter) WaitForStability(timeout time.Duration) error { return nil }

// QueuedAdapter wraps the tick-based runtime.
type QueuedAdapter struct {
	rt *realtime.Runtime
}

// NewQueuedAdapter creates a new adapter for the tick-based runtime.
func NewQueuedAdapter(m *hsmx.Machine, tickRate time.Duration) *QueuedAdapter {
	return &QueuedAdapter{
		rt: realtime.NewRuntime(m, realtime.Config{
			TickRate:  tickRate,
			QueueSize: 64,
		}),
	}
}

// Runtime exposes the wrapped runtime.
func (a *QueuedAdapter) Runtime() *realtime.Runtime { return a.rt }

func (a *QueuedAdapter) Start(ctx context.Context) error { return a.rt.Start(ctx) }

func (a *QueuedAdapter) Stop() error { return a.rt.Stop() }

func (a *QueuedAdapter) SendEvent(event hsmx.Event) error { return a.rt.Send(event) }

func (a *QueuedAdapter) IsInState(stateID hsmx.StateID) bool { return a.rt.IsInState(stateID) }

func (a *QueuedAdapter) GetCurrentState() hsmx.StateID { return a.rt.Current() }

// WaitForStability polls until no queued event is pending.
func (a *QueuedAdapter) WaitForStability(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for a.rt.Pending() > 0 {
		if time.Now().After(deadline) {
			return ErrNotStable
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}
