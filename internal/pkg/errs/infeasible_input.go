package errs

import (
	"errors"
	"fmt"
)

// ErrInfeasibleInput is the sentinel for optimization requests that can never
// produce a plan, such as an empty order list or an order heavier than a whole trip.
var ErrInfeasibleInput = errors.New("infeasible input")

// InfeasibleInputError names the offending input and why it cannot be planned.
type InfeasibleInputError struct {
	ParamName string
	Reason    string
	Cause     error
}

// NewInfeasibleInputError creates an error for paramName with a human readable reason.
func NewInfeasibleInputError(paramName string, reason string) *InfeasibleInputError {
	return &InfeasibleInputError{ParamName: paramName, Reason: reason}
}

// NewInfeasibleInputErrorWithCause is NewInfeasibleInputError with an underlying cause.
func NewInfeasibleInputErrorWithCause(paramName string, reason string, cause error) *InfeasibleInputError {
	return &InfeasibleInputError{ParamName: paramName, Reason: reason, Cause: cause}
}

func (e *InfeasibleInputError) Error() string {
	return withCause(fmt.Sprintf("%s: %s: %s", ErrInfeasibleInput, e.ParamName, sanitize(e.Reason)), e.Cause)
}

func (e *InfeasibleInputError) Unwrap() error {
	return ErrInfeasibleInput
}
