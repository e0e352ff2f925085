package lifecycle

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/lazylifecycle/dispatch"
	"github.com/nomis52/lazylifecycle/gate"
	"github.com/nomis52/lazylifecycle/metrics"
	"github.com/nomis52/lazylifecycle/once"
)

const (
	// DefaultTickCount is the number of render ticks the condition waits for
	// before declaring the first meaningful render done.
	DefaultTickCount = 2

	// DefaultDeadline caps how long dispatch can be deferred when ticks never
	// arrive.
	DefaultDeadline = 3000 * time.Millisecond
)

// ErrUnsupportedOwner indicates the owner behind a handle does not implement
// the Participant capability set. This is a wiring defect caught at
// integration time, not retried.
var ErrUnsupportedOwner = errors.New("lifecycle: owner does not implement Participant")

// ErrMisconfigured indicates the orchestrator itself was built with invalid
// options.
var ErrMisconfigured = errors.New("lifecycle: misconfigured orchestrator")

// Orchestrator phases. At most one gate is armed per orchestrator at a time.
const (
	phaseResting int32 = iota
	phaseActive
)

// Orchestrator sequences the deferred callback dispatch for one component
// instance. It lives alongside that instance: the once guards for the create
// and view-ready families persist for the instance's full lifetime, while a
// fresh gate is armed on every Activate.
type Orchestrator struct {
	queue     dispatch.Queue
	tickCount int
	deadline  time.Duration
	logger    *slog.Logger
	metrics   *metrics.LifecycleMetrics

	phase       atomic.Int32
	createGuard once.Guard
	viewGuard   once.Guard
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger.With("component", "orchestrator")
	}
}

// WithTickCount overrides the number of ticks required before the condition
// path can fire.
func WithTickCount(n int) Option {
	return func(o *Orchestrator) {
		o.tickCount = n
	}
}

// WithDeadline overrides the gate deadline.
func WithDeadline(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.deadline = d
	}
}

// WithMetrics attaches instrumentation.
func WithMetrics(m *metrics.LifecycleMetrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// NewOrchestrator creates an orchestrator dispatching onto the given queue.
// The queue is required; it is the single serializing queue that guarantees
// the create, start, resume relative ordering.
func NewOrchestrator(queue dispatch.Queue, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		queue:     queue,
		tickCount: DefaultTickCount,
		deadline:  DefaultDeadline,
		logger:    slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.queue == nil {
		return nil, fmt.Errorf("%w: dispatch queue is required", ErrMisconfigured)
	}
	if o.tickCount < 1 {
		return nil, fmt.Errorf("%w: tick count must be >= 1, got %d", ErrMisconfigured, o.tickCount)
	}
	if o.deadline <= 0 {
		return nil, fmt.Errorf("%w: deadline must be positive, got %v", ErrMisconfigured, o.deadline)
	}
	return o, nil
}

// Activate arms a gate for the owner behind the handle and subscribes to its
// tick source. It is a no-op while a gate is already armed. Owners that do
// not resolve, decline participation, or expose no tick source leave the
// orchestrator resting without error; an owner of an unsupported type fails
// fast with ErrUnsupportedOwner.
func (o *Orchestrator) Activate(h Handle) error {
	owner, ok := h.Resolve()
	if !ok {
		o.logger.Debug("activation skipped, owner no longer registered")
		o.countIneligible()
		return nil
	}

	p, ok := owner.(Participant)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedOwner, owner)
	}

	if !p.LazyLifecycleEnabled() {
		o.logger.Debug("activation skipped, owner declined participation")
		o.countIneligible()
		return nil
	}
	source := p.TickSource()
	if source == nil {
		o.logger.Debug("activation skipped, owner has no tick source")
		o.countIneligible()
		return nil
	}

	if !o.phase.CompareAndSwap(phaseResting, phaseActive) {
		o.logger.Debug("activation ignored, gate already armed")
		return nil
	}

	cond := &activationCondition{handle: h, required: int32(o.tickCount)}
	c := &cycle{orch: o, handle: h, source: source, barrier: gate.NewBarrier(cond)}

	if err := o.arm(c); err != nil {
		o.phase.Store(phaseResting)
		return err
	}

	source.AddTickListener(c)
	o.logger.Info("lazy dispatch armed", "tick_count", o.tickCount, "deadline", o.deadline)
	if o.metrics != nil {
		o.metrics.Activations.Inc()
		o.metrics.ActiveCycles.Inc()
	}
	return nil
}

// Deactivate is an extension point for hosts wishing to cancel gated work
// early. The base orchestrator takes no action; an in-flight dispatch is
// allowed to complete.
func (o *Orchestrator) Deactivate(h Handle) {
	o.logger.Debug("deactivate called")
}

// Active reports whether a gate is currently armed.
func (o *Orchestrator) Active() bool {
	return o.phase.Load() == phaseActive
}

// arm wires charge and deadline into the cycle's barrier. Errors here mean
// the orchestrator misused the gate API and are surfaced as configuration
// errors.
func (o *Orchestrator) arm(c *cycle) error {
	if err := c.barrier.SetCharge(func() { o.onFired(c) }); err != nil {
		return fmt.Errorf("%w: %v", ErrMisconfigured, err)
	}
	if err := c.barrier.SetDeadline(o.deadline); err != nil {
		return fmt.Errorf("%w: %v", ErrMisconfigured, err)
	}
	if err := c.barrier.StartTimer(); err != nil {
		return fmt.Errorf("%w: %v", ErrMisconfigured, err)
	}
	return nil
}

// onFired is the gate charge. It runs on whichever goroutine won the race,
// so it only unsubscribes, schedules the dispatch steps and returns; the
// steps themselves run later on the serializing queue.
func (o *Orchestrator) onFired(c *cycle) {
	c.source.RemoveTickListener(c)

	cause := c.barrier.Cause()
	o.logger.Info("lazy gate fired", "cause", cause.String())
	if o.metrics != nil {
		o.metrics.Fires.With(prometheus.Labels{"cause": cause.String()}).Inc()
		o.metrics.ActiveCycles.Dec()
	}

	// Each step is posted individually so eligibility is re-checked right
	// before it runs, not once for the whole sequence.
	h := c.handle
	o.queue.Post(func() { o.dispatchCreate(h) })
	o.queue.Post(func() { o.dispatchViewReady(h) })
	o.queue.Post(func() { o.dispatchStart(h) })
	o.queue.Post(func() { o.dispatchResume(h) })

	o.phase.Store(phaseResting)
}

func (o *Orchestrator) dispatchCreate(h Handle) {
	p, ok := o.eligible(h)
	if !ok {
		// Skip and reset the guard so a later explicit Activate cycle can
		// retry the create family. No automatic re-arm happens here.
		o.createGuard.Reset()
		o.logger.Debug("create skipped, owner ineligible at dispatch time")
		return
	}
	o.createGuard.Do(p.LazyCreate)
}

func (o *Orchestrator) dispatchViewReady(h Handle) {
	p, ok := o.eligible(h)
	if !ok {
		return
	}
	vp, ok := p.(ViewParticipant)
	if !ok || !vp.ViewAvailable() {
		return
	}
	o.viewGuard.Do(vp.LazyViewReady)
}

func (o *Orchestrator) dispatchStart(h Handle) {
	if p, ok := o.eligible(h); ok {
		p.LazyStart()
	}
}

func (o *Orchestrator) dispatchResume(h Handle) {
	if p, ok := o.eligible(h); ok {
		p.LazyResume()
	}
}

// eligible re-resolves the handle and checks the owner can still receive
// deferred callbacks.
func (o *Orchestrator) eligible(h Handle) (Participant, bool) {
	owner, ok := h.Resolve()
	if !ok {
		return nil, false
	}
	p, ok := owner.(Participant)
	if !ok {
		return nil, false
	}
	if !p.LifecycleState().AtLeast(StateCreated) {
		return nil, false
	}
	return p, true
}

func (o *Orchestrator) countIneligible() {
	if o.metrics != nil {
		o.metrics.Ineligible.Inc()
	}
}

// cycle is one armed gate: the barrier, the tick subscription feeding it and
// the handle it was armed for. A fresh cycle is created per Activate and
// discarded once the gate fires.
type cycle struct {
	orch    *Orchestrator
	handle  Handle
	source  TickSource
	barrier *gate.Barrier
}

// OnTick delivers one render tick as a strike.
func (c *cycle) OnTick() {
	if err := c.barrier.Strike(); err != nil {
		c.orch.logger.Debug("strike rejected", "error", err)
	}
}

// activationCondition is the barrier condition: the owner still resolves, is
// at or beyond resumed, and enough ticks have been observed. Evaluate counts
// the strikes itself; that counter is its only side effect.
type activationCondition struct {
	handle   Handle
	required int32
	ticks    atomic.Int32
}

func (c *activationCondition) Evaluate() bool {
	ticks := c.ticks.Add(1)
	owner, ok := c.handle.Resolve()
	if !ok {
		return false
	}
	p, ok := owner.(Participant)
	if !ok {
		return false
	}
	return ticks >= c.required && p.LifecycleState().AtLeast(StateResumed)
}
