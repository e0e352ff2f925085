// Package gate provides one-shot execution gates for deferring work until an
// external condition is met or a deadline elapses, whichever happens first.
//
// Two gates are provided:
//
//   - Barrier fires when a supplied condition evaluates true on a Strike, or
//     when its deadline timer expires.
//   - Countdown fires when a fixed number of independent triggers have each
//     fired once (Down), or when a timeout elapses after Plant. A pending
//     Countdown can be cancelled with TryDiffuse.
//
// Both gates resolve the race between their trigger paths with a single
// compare-and-set on a fired flag: whichever path wins records its Cause and
// runs the charge exactly once; the loser observes the flag and does nothing.
// Gates are one-time use. Once fired they never fire again.
package gate
