package greeks

import "errors"

var (
	// ErrInvalidParameters is matched by every InvalidParametersError.
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrNoConvergence     = errors.New("implied volatility did not converge")
)

// InvalidParametersError is permanent for its input; retrying the same call fails the same way.
type InvalidParametersError struct {
	Param  string
	Reason string
}

func (e *InvalidParametersError) Error() string {
	return "invalid parameters: " + e.Param + " " + e.Reason
}

func (e *InvalidParametersError) Is(target error) bool {
	return target == ErrInvalidParameters
}

func invalid(param, reason string) error {
	return &InvalidParametersError{Param: param, Reason: reason}
}
