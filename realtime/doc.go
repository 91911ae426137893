// Package realtime drives an hsmx.Machine from a thread-safe event queue.
//
// The machine itself is single-threaded. Runtime is the one consumer that
// owns it: any goroutine may Send events, and the tick loop dispatches them
// one at a time, each to completion, at fixed tick boundaries.
//
// # Example Usage
//
//	m, _ := hsmx.New(h)
//	rt := realtime.NewRuntime(m, realtime.Config{
//		TickRate:  100 * time.Millisecond,
//		TickEvent: "Tick",
//	})
//	rt.Start(ctx)
//	defer rt.Stop()
//	rt.Send(hsmx.NewEvent("Button", nil))
//
// # Event Ordering Guarantees
//
// Events queued before a tick are dispatched during that tick, ordered by:
//  1. Priority (higher priority processed first)
//  2. Sequence number (FIFO for same priority)
//
// Given the same sequence of Send calls the machine always executes the
// same way, regardless of timing. Events sent by handlers during a tick
// are dispatched on the next tick. After the queued events, the configured
// TickEvent (if any) is dispatched once per tick, which lets timeouts be
// modelled as countdowns driven by injected tick events.
//
// # Deferred Events
//
// A handler may hold back up to hsmx.MaxDeferredEvents events with Defer
// and requeue them in their original order with Recall, typically from
// the entry action of the state that can handle them.
package realtime
