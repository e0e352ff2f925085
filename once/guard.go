// Package once provides a resettable execute-at-most-once latch.
//
// Unlike sync.Once, a Guard can be reset so a later call runs again. It is
// built for lifecycle callbacks that should run once per cycle but may need
// to be retried on a fresh cycle after a skipped dispatch.
package once

import "sync/atomic"

// Guard runs a block at most once between construction (or the most recent
// Reset) and the next Reset. Concurrent callers race through a single
// compare-and-swap; exactly one wins. The zero value is ready to use.
type Guard struct {
	executed atomic.Bool
}

// Do runs block if no prior Do call has won since construction or the last
// Reset. The block runs on the caller's goroutine. The Guard does not retain
// block after the call returns.
func (g *Guard) Do(block func()) {
	if g.executed.CompareAndSwap(false, true) {
		block()
	}
}

// Reset clears the executed flag, allowing a future Do to run again. Safe to
// call concurrently with Do; the outcome is whatever the atomic ordering
// resolves, never a crash or a double run within one armed period.
func (g *Guard) Reset() {
	g.executed.Store(false)
}

// Executed reports whether a block has run since construction or the last
// Reset. This is a point-in-time read, not a reservation.
func (g *Guard) Executed() bool {
	return g.executed.Load()
}
