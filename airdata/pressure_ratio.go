package airdata

import "math"

// Equation is a forward pressure-ratio relation with one branch per regime.
type Equation func(x float64, regime FlowRegime) (float64, error)

/*
Impact-pressure ratio for a speed ratio, evaluated on the given branch.

	Args:
	    op: operation name for error reporting
	    name: name of the argument for error reporting
	    x: speed ratio (Mach number, or Vc/a0), -
	    regime: branch to evaluate

	Returns:
	    impact pressure over the reference static pressure, -

	Notes:
	    subsonic:   (1 + 0.2 x^2)^3.5 - 1                 Eq. (15), (19)
	    supersonic: 166.92158 x^7 / (7 x^2 - 1)^2.5 - 1   Eq. (18), (20)
*/
func impactRatio(op, name string, x float64, regime FlowRegime) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, &DomainError{Op: op, Name: name, Value: x, Reason: "not a finite number"}
	}
	if x < 0 {
		return 0, &DomainError{Op: op, Name: name, Value: x, Reason: "negative speed"}
	}

	x2 := x * x
	switch regime {
	case Subsonic:
		base := 1.0 + 0.2*x2
		if base < 0 {
			return 0, &NumericError{Op: op, Name: "isentropic base", Value: base, Reason: "negative base to fractional power"}
		}
		return math.Pow(base, 3.5) - 1.0, nil
	case Supersonic:
		denom := 7.0*x2 - 1.0
		if denom <= 0 {
			return 0, &NumericError{Op: op, Name: "Rayleigh-Pitot denominator", Value: denom, Reason: "7x^2 - 1 must be positive"}
		}
		return rayleighPitot*math.Pow(x, 7)/math.Pow(denom, 2.5) - 1.0, nil
	default:
		return 0, &DomainError{Op: op, Name: "regime", Value: math.NaN(), Reason: "unknown flow regime " + string(regime)}
	}
}

// MachPressureRatio evaluates Δp/p for a Mach number on one branch.
func MachPressureRatio(mach float64, regime FlowRegime) (float64, error) {
	return impactRatio("mach pressure ratio", "mach", mach, regime)
}

// CASPressureRatio evaluates Δp/p0 for a calibrated airspeed in m/s on one branch.
func CASPressureRatio(vc float64, regime FlowRegime) (float64, error) {
	return impactRatio("cas pressure ratio", "calibrated airspeed", vc/A0, regime)
}

/*
Evaluate a forward equation with the regime rule: probe with the subsonic
branch and switch to the supersonic branch when the probe exceeds
RegimeThreshold.

	Returns:
	    (1) impact-pressure ratio, -
	    (2) regime of the branch that produced it
*/
func selectAndEvaluate(eq Equation, x float64) (float64, FlowRegime, error) {
	probe, err := eq(x, Subsonic)
	if err != nil {
		return 0, "", err
	}
	regime := SelectRegime(probe)
	if regime == Subsonic {
		return probe, Subsonic, nil
	}
	ratio, err := eq(x, Supersonic)
	if err != nil {
		return 0, "", err
	}
	return ratio, Supersonic, nil
}

// PressureRatioFromMach returns Δp/p and its regime for a Mach number.
func PressureRatioFromMach(mach float64) (float64, FlowRegime, error) {
	return selectAndEvaluate(MachPressureRatio, mach)
}

// PressureRatioFromCAS returns Δp/p0 and its regime for a calibrated airspeed in m/s.
func PressureRatioFromCAS(vc float64) (float64, FlowRegime, error) {
	return selectAndEvaluate(CASPressureRatio, vc)
}
