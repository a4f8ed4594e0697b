package model

import "errors"

// Error taxonomy of the engine. Wrap these with fmt.Errorf("...: %w") and
// test with errors.Is.
var (
	// ErrValidationRejection marks a signal turned away by the risk gate.
	ErrValidationRejection = errors.New("validation rejection")
	// ErrSizingRejection marks a signal whose size fell under the minimum notional.
	ErrSizingRejection = errors.New("sizing rejection")
	// ErrExecutionFailure marks a simulated fill that did not happen.
	ErrExecutionFailure = errors.New("execution failure")
	// ErrInternal marks an unexpected failure while processing one item.
	ErrInternal = errors.New("internal error")

	ErrPositionClosed  = errors.New("position already closed")
	ErrUnknownPosition = errors.New("unknown position")
)
