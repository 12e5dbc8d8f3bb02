package airdata

import "fmt"

// DomainError reports an input outside the modelled range, such as an
// altitude at or above HMax or a negative airspeed.
type DomainError struct {
	Op     string
	Name   string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s = %g out of range: %s", e.Op, e.Name, e.Value, e.Reason)
}

// NumericError reports an invalid intermediate value, for example a
// non-positive denominator in the Rayleigh-Pitot relation.
type NumericError struct {
	Op     string
	Name   string
	Value  float64
	Reason string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("%s: invalid %s = %g: %s", e.Op, e.Name, e.Value, e.Reason)
}

// ConvergenceError is returned when the solver runs out of iterations or
// bracket expansions before the residual falls below tolerance.
type ConvergenceError struct {
	Op         string
	Regime     FlowRegime
	Target     float64
	Residual   float64
	Iterations int
	Bracket    Bracket
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence for %s target %g after %d iterations in [%g, %g], residual %g",
		e.Op, e.Regime, e.Target, e.Iterations, e.Bracket.Low, e.Bracket.High, e.Residual)
}
