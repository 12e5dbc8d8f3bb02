package airdata

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear(x float64, _ FlowRegime) (float64, error) { return 2 * x, nil }

func TestSolver_Linear(t *testing.T) {
	s := NewSolver()
	sol, err := s.Solve(1.5, Subsonic, linear, Bracket{Low: 0, High: 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.75, sol.X, 1e-6)
	assert.Less(t, math.Abs(sol.Residual), 1.5*s.Tolerance)
	assert.Greater(t, sol.Iterations, 0)
}

func TestSolver_TargetAtBracketEnd(t *testing.T) {
	s := NewSolver()

	sol, err := s.Solve(0, Subsonic, linear, Bracket{Low: 0, High: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sol.X)
	assert.Equal(t, 0, sol.Iterations)

	sol, err = s.Solve(2, Subsonic, linear, Bracket{Low: 0, High: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, sol.X)
}

func TestSolver_SmallTargetsAreRelative(t *testing.T) {
	s := NewSolver()

	sol, err := s.Solve(2e-9, Subsonic, linear, Bracket{Low: 0, High: 1})
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-9, sol.X, 1e-6)

	// below the floor the low end is still never taken for a non-zero target
	sol, err = s.Solve(1e-19, Subsonic, MachPressureRatio, MachBracket(Subsonic))
	require.NoError(t, err)
	assert.Greater(t, sol.X, 0.0)
	assert.Greater(t, sol.Iterations, 0)
}

func TestSolver_WidensBracket(t *testing.T) {
	s := NewSolver()
	sol, err := s.Solve(50, Subsonic, linear, Bracket{Low: 0, High: 1})
	require.NoError(t, err)
	assert.InDelta(t, 25, sol.X, 1e-5)
}

func TestSolver_ExpansionLimit(t *testing.T) {
	s := NewSolver()
	s.MaxExpansions = 2

	_, err := s.Solve(50, Supersonic, linear, Bracket{Low: 0, High: 1})
	require.Error(t, err)

	var ce *ConvergenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, Supersonic, ce.Regime)
	assert.Equal(t, 50.0, ce.Target)
	assert.Equal(t, 4.0, ce.Bracket.High)
	assert.InDelta(t, -42, ce.Residual, 1e-12)
}

func TestSolver_IterationLimit(t *testing.T) {
	s := NewSolver()
	s.MaxIterations = 3

	_, err := s.Solve(1.234567, Subsonic, linear, Bracket{Low: 0, High: 1})
	require.Error(t, err)

	var ce *ConvergenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.Iterations)
	assert.NotZero(t, ce.Residual)
}

func TestSolver_Deterministic(t *testing.T) {
	s := NewSolver()
	first, err := s.Solve(1.254639, Supersonic, MachPressureRatio, MachBracket(Supersonic))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := s.Solve(1.254639, Supersonic, MachPressureRatio, MachBracket(Supersonic))
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(first.X), math.Float64bits(again.X))
	}
}

func TestSolver_PropagatesEquationError(t *testing.T) {
	s := NewSolver()
	_, err := s.Solve(1.0, Supersonic, MachPressureRatio, Bracket{Low: 0.1, High: 2})
	require.Error(t, err)

	var ne *NumericError
	assert.ErrorAs(t, err, &ne)
}

func TestSolver_InvalidInputs(t *testing.T) {
	s := NewSolver()
	var de *DomainError

	_, err := s.Solve(1, Subsonic, linear, Bracket{Low: 1, High: 1})
	assert.ErrorAs(t, err, &de)

	_, err = s.Solve(math.NaN(), Subsonic, linear, Bracket{Low: 0, High: 1})
	assert.ErrorAs(t, err, &de)
}

func TestSolver_Validate(t *testing.T) {
	assert.NoError(t, NewSolver().Validate())
	assert.Error(t, (&Solver{Tolerance: 0, MaxIterations: 10}).Validate())
	assert.Error(t, (&Solver{Tolerance: 1e-6, MaxIterations: 0}).Validate())
	assert.Error(t, (&Solver{Tolerance: 1e-6, MaxIterations: 10, MaxExpansions: -1}).Validate())
}

func TestSolver_ThresholdTargetLandsNearMachOne(t *testing.T) {
	s := NewSolver()
	regime := SelectRegime(RegimeThreshold)
	require.Equal(t, Subsonic, regime)

	sol, err := s.Solve(RegimeThreshold, regime, MachPressureRatio, MachBracket(regime))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sol.X, 1e-4)

	sup, err := MachPressureRatio(sol.X, Supersonic)
	require.NoError(t, err)
	assert.InDelta(t, RegimeThreshold, sup, 1e-5)
}

func TestSolver_ErrorsAreDistinct(t *testing.T) {
	var err error = &ConvergenceError{Op: "solve"}
	var de *DomainError
	assert.False(t, errors.As(err, &de))
	assert.Contains(t, err.Error(), "no convergence")
}
