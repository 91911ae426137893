package realtime

import (
	"fmt"

	"github.com/comalice/hsmx"
)

// safeTick runs one tick, containing panics raised by callbacks. Events of
// the batch that were not yet dispatched go back to the queue. When the
// panic left the machine corrupted, the queue is dropped instead and the
// returned error wraps hsmx.ErrCorrupted.
func (rt *Runtime) safeTick() (err error) {
	// Phase 1: Collect events atomically
	events := rt.collectEvents()

	// Phase 2: Sort for deterministic order
	sortEvents(events)

	next := 0
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		rt.failures.Add(1)
		rest := events[min(next+1, len(events)):]
		rt.log.Errorw("panic during tick", "tick", rt.ticks.Load(), "panic", r)
		if rt.m.IsCorrupted() {
			rt.drop(rest)
			err = fmt.Errorf("tick %d: %w", rt.ticks.Load(), hsmx.ErrCorrupted)
			return
		}
		rt.requeue(rest)
	}()

	// Phase 3: Dispatch queued events one at a time
	for ; next < len(events); next++ {
		rt.dispatch(events[next].Event)
		rt.batchMu.Lock()
		rt.inflight--
		rt.batchMu.Unlock()
	}

	// Phase 4: Tick event
	if rt.cfg.TickEvent != "" {
		rt.dispatch(hsmx.Event{ID: rt.cfg.TickEvent, Payload: rt.ticks.Load()})
	}
	rt.ticks.Add(1)
	return nil
}

// collectEvents atomically retrieves and clears the event batch
func (rt *Runtime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, rt.cfg.QueueSize)
	rt.inflight = len(events)

	return events
}

// requeue puts events that a panic kept from running back in front of
// the queue. They keep their sequence numbers, so the next tick runs them
// before anything sent later at the same priority.
func (rt *Runtime) requeue(events []EventWithMeta) {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	rt.inflight = 0
	if len(events) == 0 {
		return
	}
	rt.eventBatch = append(append(make([]EventWithMeta, 0, len(events)+len(rt.eventBatch)), events...), rt.eventBatch...)
	rt.log.Warnw("requeued events after panic", "count", len(events))
}

// drop discards the rest of the batch and everything queued since. The
// machine can no longer take them.
func (rt *Runtime) drop(rest []EventWithMeta) {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	dropped := make([]hsmx.EventID, 0, len(rest)+len(rt.eventBatch))
	for _, meta := range rest {
		dropped = append(dropped, meta.Event.ID)
	}
	for _, meta := range rt.eventBatch {
		dropped = append(dropped, meta.Event.ID)
	}
	rt.inflight = 0
	rt.eventBatch = rt.eventBatch[:0]
	if len(dropped) > 0 {
		rt.log.Errorw("dropping events for corrupted machine", "count", len(dropped), "events", dropped)
	}
}

func (rt *Runtime) dispatch(evt hsmx.Event) {
	rt.dispatchMu.Lock()
	defer rt.dispatchMu.Unlock()

	rt.dispatched.Add(1)
	if _, err := rt.m.Dispatch(evt); err != nil {
		rt.failures.Add(1)
		rt.log.Warnw("dispatch failed", "event", evt.ID, "error", err)
	}
}
