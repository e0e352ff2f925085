package gate

// Cause identifies which path won the race to fire a gate.
type Cause int

const (
	// CauseUnset means the gate has not fired.
	CauseUnset Cause = iota

	// CauseCondition means the gate fired because its condition was satisfied
	// (a Barrier strike, or a Countdown reaching zero remaining triggers).
	CauseCondition

	// CauseDeadline means the gate fired because its deadline elapsed first.
	CauseDeadline

	// CauseZeroTrigger means a Countdown armed with zero triggers fired
	// immediately during Plant.
	CauseZeroTrigger

	// CauseDiffused means a Countdown was cancelled before firing; the charge
	// never ran and never will.
	CauseDiffused
)

// String returns a human-readable representation of the Cause.
func (c Cause) String() string {
	switch c {
	case CauseUnset:
		return "unset"
	case CauseCondition:
		return "condition"
	case CauseDeadline:
		return "deadline"
	case CauseZeroTrigger:
		return "zero_trigger"
	case CauseDiffused:
		return "diffused"
	default:
		return "unknown"
	}
}
