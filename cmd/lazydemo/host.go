package main

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nomis52/lazylifecycle/lifecycle"
)

// frameTicker simulates a render pipeline: it notifies registered listeners
// once per tick interval, standing in for a per-frame draw callback.
type frameTicker struct {
	interval time.Duration

	mu        sync.Mutex
	listeners []lifecycle.TickListener
}

func newFrameTicker(interval time.Duration) *frameTicker {
	return &frameTicker{interval: interval}
}

func (f *frameTicker) AddTickListener(l lifecycle.TickListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *frameTicker) RemoveTickListener(l lifecycle.TickListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, candidate := range f.listeners {
		if candidate == l {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			return
		}
	}
}

// Start launches the tick loop. It stops when ctx is cancelled.
func (f *frameTicker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.tick()
			}
		}
	}()
}

func (f *frameTicker) tick() {
	f.mu.Lock()
	listeners := append([]lifecycle.TickListener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range listeners {
		l.OnTick()
	}
}

// demoComponent is the simulated screen-owning component. Each cycle it is
// reset to created and walks to resumed after a short delay, as a freshly
// navigated-to screen would.
type demoComponent struct {
	logger *slog.Logger
	ticker *frameTicker
	state  atomic.Int32

	// onCycleComplete, when set, runs at the end of each dispatched cycle.
	onCycleComplete func()
}

func newDemoComponent(logger *slog.Logger, ticker *frameTicker) *demoComponent {
	c := &demoComponent{
		logger: logger.With("component", "demo"),
		ticker: ticker,
	}
	c.state.Store(int32(lifecycle.StateInitialized))
	return c
}

// beginCycle rewinds the component to created and schedules the walk to
// resumed, simulating the host's mandatory lifecycle running first.
func (c *demoComponent) beginCycle(resumeDelay time.Duration) {
	c.state.Store(int32(lifecycle.StateCreated))
	time.AfterFunc(resumeDelay/2, func() {
		c.state.Store(int32(lifecycle.StateStarted))
	})
	time.AfterFunc(resumeDelay, func() {
		c.state.Store(int32(lifecycle.StateResumed))
		c.logger.Debug("component resumed")
	})
}

func (c *demoComponent) LazyLifecycleEnabled() bool { return true }

func (c *demoComponent) LifecycleState() lifecycle.State {
	return lifecycle.State(c.state.Load())
}

func (c *demoComponent) TickSource() lifecycle.TickSource { return c.ticker }

func (c *demoComponent) LazyCreate() {
	c.logger.Info("lazy create: warming caches")
}

func (c *demoComponent) LazyStart() {
	c.logger.Info("lazy start: refreshing data")
}

func (c *demoComponent) LazyResume() {
	c.logger.Info("lazy resume: resuming animations")
	if c.onCycleComplete != nil {
		c.onCycleComplete()
	}
}

func (c *demoComponent) ViewAvailable() bool { return true }

func (c *demoComponent) LazyViewReady() {
	c.logger.Info("lazy view ready: binding view extras")
}
