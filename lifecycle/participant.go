package lifecycle

// TickListener receives one notification per render pass from a TickSource.
type TickListener interface {
	OnTick()
}

// TickSource is the observable target the orchestrator watches for render
// ticks. A host exposes one per watchable component; it may be absent, in
// which case activation degrades to resting.
type TickSource interface {
	AddTickListener(TickListener)
	RemoveTickListener(TickListener)
}

// StateProvider reports an owner's current lifecycle level. Eligibility
// checks read it immediately before each dispatched step.
type StateProvider interface {
	LifecycleState() State
}

// Participant is the capability set an owner must supply to take part in
// lazy lifecycle dispatch.
type Participant interface {
	StateProvider

	// LazyLifecycleEnabled is the participation flag. Owners returning false
	// are skipped silently.
	LazyLifecycleEnabled() bool

	// TickSource returns the observable target delivering render ticks, or
	// nil if none exists yet.
	TickSource() TickSource

	// LazyCreate runs deferred creation work. Guarded to run at most once per
	// owner instance unless a skipped dispatch resets the guard.
	LazyCreate()

	// LazyStart runs on every dispatch cycle, like a restart.
	LazyStart()

	// LazyResume runs on every dispatch cycle after LazyStart.
	LazyResume()
}

// ViewParticipant is the narrower callback family for owners that also have
// an attachable view.
type ViewParticipant interface {
	Participant

	// ViewAvailable reports whether a view is currently attached.
	ViewAvailable() bool

	// LazyViewReady runs deferred view work, at most once per owner instance.
	LazyViewReady()
}
