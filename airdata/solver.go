package airdata

import (
	"fmt"
	"math"
)

// Bracket is the search interval of the solver, in the units of the unknown.
type Bracket struct {
	Low  float64
	High float64
}

// Mach and calibrated-airspeed starting brackets for each regime.
var (
	subsonicMachBracket   = Bracket{Low: 0, High: 1}
	supersonicMachBracket = Bracket{Low: 1, High: 6}
	subsonicCASBracket    = Bracket{Low: 0, High: A0}
	supersonicCASBracket  = Bracket{Low: A0, High: 6 * A0}
)

// MachBracket returns the starting bracket of a Mach solve.
func MachBracket(regime FlowRegime) Bracket {
	if regime == Supersonic {
		return supersonicMachBracket
	}
	return subsonicMachBracket
}

// CASBracket returns the starting bracket of a calibrated-airspeed solve, m/s.
func CASBracket(regime FlowRegime) Bracket {
	if regime == Supersonic {
		return supersonicCASBracket
	}
	return subsonicCASBracket
}

// Solution is the root found by the solver.
type Solution struct {
	X          float64
	Iterations int
	Residual   float64 // f(X) - target
}

// Solver inverts a monotone increasing Equation by bisection.
// The zero value is not usable; use NewSolver.
type Solver struct {
	// Tolerance is relative to |target|, floored at minTargetScale.
	Tolerance     float64
	MaxIterations int
	MaxExpansions int
}

// smallest target magnitude the relative tolerance scales with, -
// (an impact-pressure ratio of 1e-12 is about 0.0004 m/s at sea level)
const minTargetScale = 1e-12

const (
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
	DefaultMaxExpansions = 32
)

// NewSolver returns a solver with the default tolerance and bounds.
func NewSolver() *Solver {
	return &Solver{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		MaxExpansions: DefaultMaxExpansions,
	}
}

// Validate checks the solver settings.
func (s *Solver) Validate() error {
	if !(s.Tolerance > 0) || math.IsInf(s.Tolerance, 0) {
		return fmt.Errorf("solver tolerance must be positive, got %g", s.Tolerance)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("solver max iterations must be positive, got %d", s.MaxIterations)
	}
	if s.MaxExpansions < 0 {
		return fmt.Errorf("solver max expansions must not be negative, got %d", s.MaxExpansions)
	}
	return nil
}

/*
Find x in the bracket such that eq(x, regime) matches the target ratio.

	Args:
	    target: impact-pressure ratio to match, -
	    regime: branch of eq to evaluate
	    eq: forward equation, strictly increasing in x on the branch
	    bracket: starting interval; High is widened geometrically while
	             the interval holds no sign change

	Returns:
	    Solution with the root, the bisection count and the last residual

	Notes:
	    terminates when |eq(x) - target| < Tolerance * max(|target|, 1e-12).
	    bracket.Low is only returned when it solves the equation exactly.
	    Plain bisection keeps the result bit-reproducible.
*/
func (s *Solver) Solve(target float64, regime FlowRegime, eq Equation, bracket Bracket) (Solution, error) {
	const op = "solve"

	if math.IsNaN(target) || math.IsInf(target, 0) {
		return Solution{}, &DomainError{Op: op, Name: "target", Value: target, Reason: "not a finite number"}
	}
	if !(bracket.Low < bracket.High) || math.IsInf(bracket.High, 0) || math.IsInf(bracket.Low, 0) {
		return Solution{}, &DomainError{Op: op, Name: "bracket low", Value: bracket.Low, Reason: fmt.Sprintf("invalid bracket [%g, %g]", bracket.Low, bracket.High)}
	}

	tol := s.Tolerance * math.Max(math.Abs(target), minTargetScale)
	f := func(x float64) (float64, error) {
		r, err := eq(x, regime)
		if err != nil {
			return 0, fmt.Errorf("%s %s at x = %g: %w", op, regime, x, err)
		}
		return r - target, nil
	}

	a, b := bracket.Low, bracket.High
	fa, err := f(a)
	if err != nil {
		return Solution{}, err
	}
	if fa == 0 {
		return Solution{X: a}, nil
	}
	fb, err := f(b)
	if err != nil {
		return Solution{}, err
	}

	for n := 0; sameSign(fa, fb); n++ {
		if n >= s.MaxExpansions {
			return Solution{}, &ConvergenceError{
				Op: op, Regime: regime, Target: target, Residual: fb,
				Bracket: Bracket{Low: a, High: b},
			}
		}
		b = a + 2*(b-a)
		if fb, err = f(b); err != nil {
			return Solution{}, err
		}
	}
	if math.Abs(fb) < tol {
		return Solution{X: b, Residual: fb}, nil
	}

	// Bisection method
	var c, fc float64
	for i := 1; i <= s.MaxIterations; i++ {
		c = a + (b-a)/2
		if fc, err = f(c); err != nil {
			return Solution{}, err
		}

		if math.Abs(fc) < tol {
			return Solution{X: c, Iterations: i, Residual: fc}, nil
		}

		if sameSign(fc, fa) {
			a, fa = c, fc
		} else {
			b = c
		}
	}

	return Solution{}, &ConvergenceError{
		Op: op, Regime: regime, Target: target, Residual: fc,
		Iterations: s.MaxIterations, Bracket: Bracket{Low: a, High: b},
	}
}

func sameSign(x, y float64) bool {
	return (x < 0) == (y < 0)
}
