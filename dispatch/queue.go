// Package dispatch provides the serializing work queue that runs deferred
// lifecycle callbacks. Work posted to a queue runs strictly in submission
// order on one logical goroutine, so callbacks from one cycle never
// interleave with themselves or with a following cycle.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
)

// Queue schedules work to run later, strictly in submission order, on a
// single logical goroutine.
type Queue interface {
	// Post enqueues work. It never blocks the caller.
	Post(work func())
}

// Serial is the production Queue: an unbounded FIFO drained by a single
// worker goroutine. The zero value is not usable; create one with NewSerial
// and launch the worker with Start.
type Serial struct {
	mu      sync.Mutex
	backlog []func()
	wake    chan struct{}
	started atomic.Bool
}

// NewSerial creates a stopped serial queue. Work may be posted before Start;
// it is held until the worker runs.
func NewSerial() *Serial {
	return &Serial{wake: make(chan struct{}, 1)}
}

// Start launches the worker goroutine. Returns immediately. The worker exits
// when ctx is cancelled; work still queued at that point is dropped. Repeat
// calls are no-ops.
func (s *Serial) Start(ctx context.Context) {
	if s.started.CompareAndSwap(false, true) {
		go s.loop(ctx)
	}
}

// Post enqueues work to run after everything already queued. Nil work is
// ignored. Post never blocks, no matter how far behind the worker is.
func (s *Serial) Post(work func()) {
	if work == nil {
		return
	}
	s.mu.Lock()
	s.backlog = append(s.backlog, work)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until all work posted before the call has run. Intended for
// tests and shutdown paths; the worker must be running or Flush will block
// until the context passed to Start is cancelled.
func (s *Serial) Flush(ctx context.Context) error {
	done := make(chan struct{})
	s.Post(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Serial) loop(ctx context.Context) {
	for {
		s.mu.Lock()
		batch := s.backlog
		s.backlog = nil
		s.mu.Unlock()

		for _, work := range batch {
			select {
			case <-ctx.Done():
				return
			default:
			}
			work()
		}

		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
	}
}
