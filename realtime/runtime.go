package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/hsmx"
)

var (
	// ErrQueueFull is returned by Send when QueueSize events are pending.
	ErrQueueFull = errors.New("event queue full")
	// ErrDeferFull is returned by Defer when hsmx.MaxDeferredEvents events
	// are already held back.
	ErrDeferFull = errors.New("deferred event queue full")
	// ErrAlreadyRunning is returned by a second call to Run or Start.
	ErrAlreadyRunning = errors.New("runtime already running")
	// ErrNotStarted is returned by Stop when Start was never called.
	ErrNotStarted = errors.New("runtime not started")
)

// Config configures the runtime.
type Config struct {
	// TickRate is the fixed interval between ticks (default 10ms).
	TickRate time.Duration
	// QueueSize bounds the pending events (default hsmx.EventPoolSize).
	QueueSize int
	// TickEvent, when set, is dispatched once per tick after the queued
	// events.
	TickEvent hsmx.EventID
	// Logger receives dispatch failures. Defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// Runtime is the single consumer of a machine's event queue.
type Runtime struct {
	m   *hsmx.Machine
	cfg Config
	log *zap.SugaredLogger

	// Event batching
	batchMu     sync.Mutex
	eventBatch  []EventWithMeta
	deferred    []hsmx.Event
	sequenceNum uint64
	inflight    int

	// dispatchMu serialises machine access between the tick loop and
	// readers such as Current.
	dispatchMu sync.Mutex

	ticks      atomic.Uint64
	dispatched atomic.Uint64
	failures   atomic.Uint64

	running atomic.Bool
	cancel  context.CancelFunc
	stopped chan struct{}
	stopErr error
}

// NewRuntime creates a runtime for m. m must not be dispatched to
// directly once the runtime runs.
func NewRuntime(m *hsmx.Machine, cfg Config) *Runtime {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 10 * time.Millisecond
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = hsmx.EventPoolSize
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runtime{
		m:          m,
		cfg:        cfg,
		log:        log,
		eventBatch: make([]EventWithMeta, 0, cfg.QueueSize),
		deferred:   make([]hsmx.Event, 0, hsmx.MaxDeferredEvents),
		stopped:    make(chan struct{}),
	}
}

// Send queues evt for the next tick. Safe for concurrent use.
func (rt *Runtime) Send(evt hsmx.Event) error {
	return rt.SendWithPriority(evt, 0)
}

// SendWithPriority queues evt ahead of every pending event with a lower
// priority.
func (rt *Runtime) SendWithPriority(evt hsmx.Event, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.enqueueLocked(evt, priority)
}

func (rt *Runtime) enqueueLocked(evt hsmx.Event, priority int) error {
	if len(rt.eventBatch) >= rt.cfg.QueueSize {
		return ErrQueueFull
	}
	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       evt,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// Defer holds evt back until Recall. Events are copied by value.
func (rt *Runtime) Defer(evt hsmx.Event) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	if len(rt.deferred) >= hsmx.MaxDeferredEvents {
		return ErrDeferFull
	}
	rt.deferred = append(rt.deferred, evt)
	return nil
}

// Recall requeues deferred events in the order they were deferred and
// returns how many were moved. Events that do not fit stay deferred.
func (rt *Runtime) Recall() (int, error) {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	n := 0
	for _, evt := range rt.deferred {
		if err := rt.enqueueLocked(evt, 0); err != nil {
			rt.deferred = append(rt.deferred[:0], rt.deferred[n:]...)
			return n, err
		}
		n++
	}
	rt.deferred = rt.deferred[:0]
	return n, nil
}

// Deferred returns the number of held-back events.
func (rt *Runtime) Deferred() int {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return len(rt.deferred)
}

// Pending returns the number of queued events not yet dispatched.
func (rt *Runtime) Pending() int {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return len(rt.eventBatch) + rt.inflight
}

// Run executes ticks until ctx is cancelled, then shuts the machine down.
// It returns the shutdown error, if any. Run stops early with an error
// wrapping hsmx.ErrCorrupted when a callback panic corrupts the machine.
func (rt *Runtime) Run(ctx context.Context) error {
	if !rt.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	return rt.run(ctx)
}

// Start runs the tick loop on its own goroutine until Stop or until ctx is
// cancelled.
func (rt *Runtime) Start(ctx context.Context) error {
	if !rt.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	rt.cancel = cancel
	go func() { _ = rt.run(runCtx) }()
	return nil
}

// Stop ends a loop begun with Start and waits for the machine shutdown.
func (rt *Runtime) Stop() error {
	if rt.cancel == nil {
		return ErrNotStarted
	}
	rt.cancel()
	<-rt.stopped
	return rt.stopErr
}

func (rt *Runtime) run(ctx context.Context) error {
	rt.stopErr = rt.tickLoop(ctx)
	close(rt.stopped)
	return rt.stopErr
}

// tickLoop is the main tick execution loop
func (rt *Runtime) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(rt.cfg.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return rt.shutdown()
		case <-ticker.C:
			if err := rt.safeTick(); err != nil {
				rt.log.Errorw("stopping runtime", "error", err)
				return err
			}
		}
	}
}

func (rt *Runtime) shutdown() error {
	rt.dispatchMu.Lock()
	defer rt.dispatchMu.Unlock()
	err := rt.m.Shutdown()
	if errors.Is(err, hsmx.ErrShutdown) {
		return nil
	}
	return err
}

// Done is closed once Run has returned.
func (rt *Runtime) Done() <-chan struct{} { return rt.stopped }

// Current returns the machine's active leaf.
func (rt *Runtime) Current() hsmx.StateID {
	rt.dispatchMu.Lock()
	defer rt.dispatchMu.Unlock()
	return rt.m.Current()
}

// IsInState reports whether id is on the machine's active path.
func (rt *Runtime) IsInState(id hsmx.StateID) bool {
	rt.dispatchMu.Lock()
	defer rt.dispatchMu.Unlock()
	return rt.m.IsInState(id)
}

// Machine returns the driven machine. Callers must not dispatch to it.
func (rt *Runtime) Machine() *hsmx.Machine { return rt.m }

// Ticks returns the number of completed ticks.
func (rt *Runtime) Ticks() uint64 { return rt.ticks.Load() }

// Dispatched returns the number of events handed to the machine.
func (rt *Runtime) Dispatched() uint64 { return rt.dispatched.Load() }

// Failures returns the number of dispatches that returned an error.
func (rt *Runtime) Failures() uint64 { return rt.failures.Load() }
