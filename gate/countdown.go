package gate

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultHistoryCapacity bounds the down-event diagnostic ring unless
// overridden with WithHistoryCapacity.
const DefaultHistoryCapacity = 64

// Countdown holds back a charge until a fixed number of independent triggers
// have each fired once, or a timeout elapses after Plant, whichever happens
// first. A pending Countdown can be cancelled with TryDiffuse. Like Barrier,
// a Countdown is one-time use and runs its charge at most once across all
// paths combined.
type Countdown struct {
	mu        sync.Mutex
	planted   bool
	fired     bool
	cause     Cause
	downCause string
	remaining int
	timeout   time.Duration
	charge    Charge
	timer     *time.Timer
	history   *downHistory

	logger *slog.Logger
}

// CountdownOption configures a Countdown.
type CountdownOption func(*Countdown)

// WithCountdownLogger sets a custom logger for the countdown.
func WithCountdownLogger(logger *slog.Logger) CountdownOption {
	return func(c *Countdown) {
		c.logger = logger.With("component", "countdown")
	}
}

// WithHistoryCapacity sets the capacity of the down-event diagnostic ring.
// A capacity of zero or less disables recording.
func WithHistoryCapacity(n int) CountdownOption {
	return func(c *Countdown) {
		if n < 0 {
			n = 0
		}
		c.history = newDownHistory(n)
	}
}

// NewCountdown creates a countdown that fires after triggers Down calls, or
// after timeout has elapsed from the Plant call. A timeout of zero disables
// the deadline path entirely. Returns ErrInvalidArgument if triggers or
// timeout is negative, or the charge is nil.
func NewCountdown(triggers int, timeout time.Duration, charge Charge, opts ...CountdownOption) (*Countdown, error) {
	if triggers < 0 {
		return nil, fmt.Errorf("%w: triggers must be >= 0, got %d", ErrInvalidArgument, triggers)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must be >= 0, got %v", ErrInvalidArgument, timeout)
	}
	if charge == nil {
		return nil, fmt.Errorf("%w: nil charge", ErrInvalidArgument)
	}

	c := &Countdown{
		remaining: triggers,
		timeout:   timeout,
		charge:    charge,
		history:   newDownHistory(DefaultHistoryCapacity),
		logger:    slog.Default().With("component", "countdown"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Plant arms the countdown. If the trigger count is zero the charge fires
// immediately, within this call, with CauseZeroTrigger. If a timeout was
// configured, the deadline clock starts now, not at construction. Plant is
// idempotent: repeat calls and calls after firing are no-ops.
func (c *Countdown) Plant() {
	c.mu.Lock()
	if c.planted || c.fired {
		c.mu.Unlock()
		return
	}
	c.planted = true

	if c.remaining == 0 {
		charge := c.claimLocked(CauseZeroTrigger, "")
		c.mu.Unlock()
		c.logger.Debug("countdown fired", "cause", CauseZeroTrigger.String())
		charge()
		return
	}

	if c.timeout > 0 {
		c.timer = time.AfterFunc(c.timeout, c.onDeadline)
		c.logger.Debug("countdown planted", "remaining", c.remaining, "timeout", c.timeout)
	} else {
		c.logger.Debug("countdown planted without timeout", "remaining", c.remaining)
	}
	c.mu.Unlock()
}

// Down consumes one trigger. The cause string is recorded for diagnostics on
// every call; the count only moves while the countdown is planted, unfired
// and above zero. The call that reaches zero fires the charge with
// CauseCondition, carrying the caller's cause string. Later calls are no-ops.
func (c *Countdown) Down(cause string) {
	c.mu.Lock()

	applied := c.planted && !c.fired && c.remaining > 0
	if applied {
		c.remaining--
	}
	c.record(DownEvent{Cause: cause, At: time.Now(), Remaining: c.remaining})

	if !applied {
		c.mu.Unlock()
		c.logger.Debug("down ignored", "cause", cause)
		return
	}
	if c.remaining > 0 {
		c.mu.Unlock()
		return
	}

	charge := c.claimLocked(CauseCondition, cause)
	c.mu.Unlock()
	c.logger.Debug("countdown fired", "cause", CauseCondition.String(), "down_cause", cause)
	charge()
}

// TryDiffuse cancels the countdown if it has not fired yet: the pending
// deadline callback is stopped and the charge is released, so no future Down
// or deadline can run it. It reports whether the diffuse won. Losing the race
// against an already-committed fire is benign and returns false.
func (c *Countdown) TryDiffuse() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fired {
		c.logger.Debug("diffuse lost race", "cause", c.cause.String())
		return false
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.fired = true
	c.cause = CauseDiffused
	c.charge = nil
	c.logger.Debug("countdown diffused")
	return true
}

// Fired reports whether the countdown reached a terminal state, including
// being diffused.
func (c *Countdown) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

// Cause reports which path terminated the countdown, or CauseUnset.
func (c *Countdown) Cause() Cause {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// DownCause returns the caller-supplied cause string of the Down call that
// fired the charge. Empty unless the condition path won.
func (c *Countdown) DownCause() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downCause
}

// Remaining returns the number of triggers still required to fire.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// History returns the recorded down-events, oldest first. The ring is
// bounded, so only the most recent DefaultHistoryCapacity events survive
// trigger spam.
func (c *Countdown) History() []DownEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.history == nil {
		return nil
	}
	return c.history.events()
}

// onDeadline runs on the timer goroutine once timeout has elapsed from Plant.
func (c *Countdown) onDeadline() {
	c.mu.Lock()
	if c.fired {
		// Race lost against a trigger or a diffuse. Expected, diagnostic only.
		c.mu.Unlock()
		c.logger.Debug("deadline elapsed after fire, ignoring")
		return
	}
	charge := c.claimLocked(CauseDeadline, "")
	c.mu.Unlock()
	c.logger.Debug("countdown fired", "cause", CauseDeadline.String())
	charge()
}

// claimLocked marks the countdown fired with the winning cause and takes
// ownership of the charge. The cause is committed in the same critical
// section as the fire transition. Callers must hold mu and must invoke the
// returned charge after releasing it.
func (c *Countdown) claimLocked(cause Cause, downCause string) Charge {
	c.fired = true
	c.cause = cause
	c.downCause = downCause
	charge := c.charge
	c.charge = nil
	if c.timer != nil {
		c.timer.Stop()
	}
	return charge
}

func (c *Countdown) record(e DownEvent) {
	if c.history != nil {
		c.history.add(e)
	}
}
