package lifecycle

// State is an ordered eligibility level reported by the host lifecycle
// provider. The orchestrator only ever reads it; transitions belong to the
// host.
type State int

const (
	// StateDestroyed means the owner is gone and no callback may touch it.
	StateDestroyed State = iota
	// StateInitialized means the owner exists but has not been created.
	StateInitialized
	// StateCreated means the owner has completed mandatory creation.
	StateCreated
	// StateStarted means the owner is visible but not yet interactive.
	StateStarted
	// StateResumed means the owner is active and interactive.
	StateResumed
)

// AtLeast reports whether s is at or beyond the given level.
func (s State) AtLeast(level State) bool {
	return s >= level
}

// String returns a human-readable representation of the State.
func (s State) String() string {
	switch s {
	case StateDestroyed:
		return "destroyed"
	case StateInitialized:
		return "initialized"
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateResumed:
		return "resumed"
	default:
		return "unknown"
	}
}
