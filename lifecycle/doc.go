// Package lifecycle defers non-essential initialization work of a
// screen-owning component until after its first meaningful render, without
// disturbing the ordering guarantees the host already provides for mandatory
// lifecycle callbacks.
//
// # Model
//
// The host registers each component in a [Registry] and hands the resulting
// [Handle] to an [Orchestrator]. On Activate the orchestrator arms a
// [gate.Barrier] whose condition is "the owner is at or beyond
// [StateResumed] and enough render ticks have been observed" (default 2),
// with a deadline fallback (default 3s), and subscribes to the owner's
// [TickSource]. Every tick strikes the barrier; whichever of the condition
// or the deadline wins runs the dispatch sequence exactly once.
//
// # Dispatch sequence
//
// On fire the orchestrator unsubscribes from ticks and posts four steps,
// individually, to the serializing [dispatch.Queue]:
//
//  1. LazyCreate, guarded by a once guard. If the owner is ineligible at
//     dispatch time, the step is skipped and the guard reset so a future
//     explicit Activate cycle may retry. Nothing re-arms automatically.
//  2. LazyViewReady, for [ViewParticipant] owners with an available view,
//     under its own once guard.
//  3. LazyStart, every cycle.
//  4. LazyResume, every cycle.
//
// Each step re-resolves the handle and re-checks eligibility immediately
// before running, so work never lands on a destroyed component.
//
// # Error policy
//
// An owner that does not implement [Participant] is a wiring defect:
// Activate fails fast with [ErrUnsupportedOwner] and is not retried. An
// owner that declines participation or has no tick source is expected:
// Activate silently leaves the orchestrator resting. Triggers and timers
// arriving after the gate fired are race losses, ignored and recorded only
// for diagnostics.
package lifecycle
