package gate

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Condition is evaluated on every Barrier strike. Implementations should be
// cheap and free of side effects apart from internal counters they may keep
// (for example, counting the strikes themselves).
type Condition interface {
	Evaluate() bool
}

// Charge is the one-shot action a gate runs when it fires. A gate owns its
// charge exclusively and invokes it at most once.
type Charge func()

// Barrier holds back a charge until its condition evaluates true on a Strike
// or its deadline elapses, whichever happens first. Both paths race through
// the same compare-and-set, so the charge runs exactly once no matter how the
// timer and strikes interleave. A Barrier is one-time use.
type Barrier struct {
	fired        atomic.Bool
	timerStarted atomic.Bool
	cause        atomic.Int32

	mu       sync.Mutex // guards charge, deadline and timer wiring
	cond     Condition
	charge   Charge
	deadline time.Duration
	timer    *time.Timer

	logger *slog.Logger
}

// BarrierOption configures a Barrier.
type BarrierOption func(*Barrier)

// WithBarrierLogger sets a custom logger for the barrier.
func WithBarrierLogger(logger *slog.Logger) BarrierOption {
	return func(b *Barrier) {
		b.logger = logger.With("component", "barrier")
	}
}

// NewBarrier creates an unarmed barrier around the given condition. The
// barrier does not own the condition; a nil condition makes Strike a silent
// no-op, mirroring a condition owner that has gone away.
func NewBarrier(cond Condition, opts ...BarrierOption) *Barrier {
	b := &Barrier{
		cond:   cond,
		logger: slog.Default().With("component", "barrier"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetCharge attaches the one-shot action. It returns ErrInvalidState if a
// charge was already set or the timer has already been started.
func (b *Barrier) SetCharge(charge Charge) error {
	if charge == nil {
		return fmt.Errorf("%w: nil charge", ErrInvalidArgument)
	}
	if b.timerStarted.Load() {
		return fmt.Errorf("%w: charge set after timer start", ErrInvalidState)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.charge != nil {
		return fmt.Errorf("%w: charge already set", ErrInvalidState)
	}
	b.charge = charge
	return nil
}

// SetDeadline sets the deadline measured from the StartTimer call. It returns
// ErrInvalidArgument for non-positive durations. Calling it again before
// StartTimer replaces the previous value; once the timer has started the call
// has no effect.
func (b *Barrier) SetDeadline(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: deadline must be positive, got %v", ErrInvalidArgument, d)
	}
	if b.timerStarted.Load() {
		b.logger.Debug("deadline change ignored, timer already started", "deadline", d)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deadline = d
	return nil
}

// StartTimer schedules the deadline callback. Only the first call schedules
// anything; further calls are no-ops. It returns ErrInvalidState if no charge
// or no deadline has been set.
func (b *Barrier) StartTimer() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.charge == nil {
		return fmt.Errorf("%w: no charge set, call SetCharge first", ErrInvalidState)
	}
	if b.deadline == 0 {
		return fmt.Errorf("%w: no deadline set, call SetDeadline first", ErrInvalidState)
	}

	if b.timerStarted.CompareAndSwap(false, true) {
		b.timer = time.AfterFunc(b.deadline, b.onDeadline)
		b.logger.Debug("deadline timer started", "deadline", b.deadline)
	}
	return nil
}

// Strike evaluates the condition. If it holds and the barrier has not fired,
// the strike atomically claims the fire and runs the charge with
// CauseCondition. Strikes after the barrier fired are silently ignored. It
// returns ErrInvalidState if no charge is attached (never set, or released
// via Clear).
func (b *Barrier) Strike() error {
	b.mu.Lock()
	charge := b.charge
	cond := b.cond
	b.mu.Unlock()

	if charge == nil {
		return fmt.Errorf("%w: no charge attached, barrier unset or cleared", ErrInvalidState)
	}
	if cond == nil || b.fired.Load() || !cond.Evaluate() {
		return nil
	}

	if !b.fired.CompareAndSwap(false, true) {
		// Race lost against the deadline timer. Expected, diagnostic only.
		b.logger.Debug("strike lost race, charge already executed", "cause", b.Cause().String())
		return nil
	}
	b.cause.CompareAndSwap(int32(CauseUnset), int32(CauseCondition))
	b.stopTimer()
	b.logger.Debug("barrier fired", "cause", CauseCondition.String())
	charge()
	return nil
}

// Finished reports whether the barrier has fired, by either cause.
func (b *Barrier) Finished() bool {
	return b.fired.Load()
}

// Cause reports which path fired the barrier, or CauseUnset if it has not.
func (b *Barrier) Cause() Cause {
	return Cause(b.cause.Load())
}

// Clear releases the charge reference. Strikes after Clear fail with
// ErrInvalidState rather than silently doing nothing against a stale gate.
func (b *Barrier) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.charge = nil
}

// onDeadline runs on the timer goroutine when the deadline elapses.
func (b *Barrier) onDeadline() {
	if !b.fired.CompareAndSwap(false, true) {
		// Race lost against a condition strike. Expected, diagnostic only.
		b.logger.Debug("deadline elapsed after fire, ignoring", "cause", b.Cause().String())
		return
	}
	b.cause.CompareAndSwap(int32(CauseUnset), int32(CauseDeadline))

	b.mu.Lock()
	charge := b.charge
	b.mu.Unlock()
	if charge == nil {
		// Cleared before the deadline landed. Nothing left to run.
		b.logger.Debug("deadline elapsed on cleared barrier")
		return
	}
	b.logger.Debug("barrier fired", "cause", CauseDeadline.String())
	charge()
}

// stopTimer cancels a pending deadline callback, best effort. The deadline
// path re-checks the fired flag, so a timer that already left the runtime
// queue is harmless.
func (b *Barrier) stopTimer() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}
