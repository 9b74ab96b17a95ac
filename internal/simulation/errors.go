package simulation

import "fmt"

// SetupError reports a path that cannot be simulated from its inputs:
// an invalid historical series or an impossible year range.
type SetupError struct {
	Reason string
	Err    error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("simulation setup: %s: %v", e.Reason, e.Err)
	}
	return "simulation setup: " + e.Reason
}

func (e *SetupError) Unwrap() error { return e.Err }

// NumericPreconditionError reports a subsector whose history cannot support
// a growth fit.
type NumericPreconditionError struct {
	Subsector string
	Reason    string
}

func (e *NumericPreconditionError) Error() string {
	return fmt.Sprintf("growth fit for %q: %s", e.Subsector, e.Reason)
}

// NonFiniteError reports a simulated year whose emissions or generation
// became infinite or NaN.
type NonFiniteError struct {
	Year int
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("simulation stopped in %d: non-finite emissions or generation", e.Year)
}
