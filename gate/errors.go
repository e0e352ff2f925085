package gate

import "errors"

// ErrInvalidState indicates an operation was called in a state that cannot
// honour it, such as setting a charge twice or striking a cleared barrier.
// This is a wiring defect at the integration site, not a runtime condition.
var ErrInvalidState = errors.New("gate: invalid state")

// ErrInvalidArgument indicates a gate was configured with an out-of-range
// parameter, such as a non-positive deadline or a negative trigger count.
var ErrInvalidArgument = errors.New("gate: invalid argument")
