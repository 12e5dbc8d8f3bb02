package airdata

import (
	"fmt"
	"log/slog"
	"math"
)

// ConversionResult is the outcome of one Mach/CAS conversion.
type ConversionResult struct {
	Mach               float64 // Mach number, -
	CalibratedAirspeed float64 // m/s
	TrueAirspeed       float64 // m/s
	TotalTemperature   float64 // K

	// Regime is the branch used by the solve; SeaLevelRegime and LocalRegime
	// are the decisions taken at p0 and at the local static pressure.
	Regime         FlowRegime
	SeaLevelRegime FlowRegime
	LocalRegime    FlowRegime

	ImpactPressure        float64 // Δp, Pa
	PressureRatio         float64 // Δp/p, -
	SeaLevelPressureRatio float64 // Δp/p0, -

	Ambient     AmbientConditions
	Temperature float64 // static temperature used for true airspeed, K

	Iterations int
	Residual   float64
}

// Converter converts between calibrated airspeed and Mach number.
// It holds no mutable state and is safe for concurrent use.
type Converter struct {
	solver *Solver
	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithSolver replaces the default solver settings.
func WithSolver(s *Solver) Option {
	return func(c *Converter) {
		if s != nil {
			c.solver = s
		}
	}
}

// WithLogger sets the logger used for debug tracing of regime decisions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConverter builds a Converter; without options it uses NewSolver and
// slog.Default.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{solver: NewSolver()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Converter) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

var defaultConverter = NewConverter()

// MachFromCalibratedAirspeed converts with the default Converter.
func MachFromCalibratedAirspeed(vc, altitude, temperature float64) (ConversionResult, error) {
	return defaultConverter.MachFromCalibratedAirspeed(vc, altitude, temperature)
}

// CalibratedAirspeedFromMach converts with the default Converter.
func CalibratedAirspeedFromMach(mach, altitude, temperature float64) (ConversionResult, error) {
	return defaultConverter.CalibratedAirspeedFromMach(mach, altitude, temperature)
}

/*
Mach number for a calibrated airspeed.

	Args:
	    vc: calibrated airspeed, m/s
	    altitude: geopotential altitude, m
	    temperature: static temperature, K

	Returns:
	    ConversionResult

	Notes:
	    (1) Δp/p0 from Eq. (19)/(20) and the sea-level regime
	    (2) Δp = (Δp/p0) p0, then Δp/p at the local static pressure
	    (3) local regime from Δp/p, then Eq. (15)/(18) inverted for M
*/
func (c *Converter) MachFromCalibratedAirspeed(vc, altitude, temperature float64) (ConversionResult, error) {
	const op = "mach from calibrated airspeed"

	amb, err := c.prepare(op, "calibrated airspeed", vc, altitude, temperature)
	if err != nil {
		return ConversionResult{}, err
	}

	seaLevelRatio, seaLevelRegime, err := PressureRatioFromCAS(vc)
	if err != nil {
		return ConversionResult{}, fmt.Errorf("%s: %w", op, err)
	}
	dp := seaLevelRatio * P0
	localRatio := dp / amb.Pressure
	localRegime := SelectRegime(localRatio)

	c.log().Debug("regime selected",
		"op", op,
		"altitude_m", altitude,
		"impact_pressure_pa", dp,
		"sea_level_ratio", seaLevelRatio,
		"sea_level_regime", seaLevelRegime,
		"local_ratio", localRatio,
		"local_regime", localRegime)

	sol, err := c.solver.Solve(localRatio, localRegime, MachPressureRatio, MachBracket(localRegime))
	if err != nil {
		return ConversionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return c.result(amb, temperature, sol.X, vc, dp, localRegime, seaLevelRegime, localRegime, sol), nil
}

/*
Calibrated airspeed for a Mach number.

	Args:
	    mach: Mach number, -
	    altitude: geopotential altitude, m
	    temperature: static temperature, K

	Returns:
	    ConversionResult

	Notes:
	    (1) Δp/p from Eq. (15)/(18) and the local regime
	    (2) Δp = (Δp/p) p, then Δp/p0
	    (3) sea-level regime from Δp/p0, then Eq. (19)/(20) inverted for Vc
*/
func (c *Converter) CalibratedAirspeedFromMach(mach, altitude, temperature float64) (ConversionResult, error) {
	const op = "calibrated airspeed from mach"

	amb, err := c.prepare(op, "mach", mach, altitude, temperature)
	if err != nil {
		return ConversionResult{}, err
	}

	localRatio, localRegime, err := PressureRatioFromMach(mach)
	if err != nil {
		return ConversionResult{}, fmt.Errorf("%s: %w", op, err)
	}
	dp := localRatio * amb.Pressure
	seaLevelRatio := dp / P0
	seaLevelRegime := SelectRegime(seaLevelRatio)

	c.log().Debug("regime selected",
		"op", op,
		"altitude_m", altitude,
		"impact_pressure_pa", dp,
		"local_ratio", localRatio,
		"local_regime", localRegime,
		"sea_level_ratio", seaLevelRatio,
		"sea_level_regime", seaLevelRegime)

	sol, err := c.solver.Solve(seaLevelRatio, seaLevelRegime, CASPressureRatio, CASBracket(seaLevelRegime))
	if err != nil {
		return ConversionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return c.result(amb, temperature, mach, sol.X, dp, seaLevelRegime, seaLevelRegime, localRegime, sol), nil
}

func (c *Converter) prepare(op, name string, speed, altitude, temperature float64) (AmbientConditions, error) {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return AmbientConditions{}, &DomainError{Op: op, Name: name, Value: speed, Reason: "must be a finite non-negative number"}
	}
	if err := checkAltitude(op, altitude); err != nil {
		return AmbientConditions{}, err
	}
	if err := checkTemperature(op, temperature); err != nil {
		return AmbientConditions{}, err
	}
	return StandardAtmosphere(altitude)
}

func (c *Converter) result(
	amb AmbientConditions,
	temperature, mach, vc, dp float64,
	regime, seaLevelRegime, localRegime FlowRegime,
	sol Solution,
) ConversionResult {
	a := speedOfSound(temperature)

	c.log().Debug("conversion solved",
		"mach", mach,
		"calibrated_airspeed_mps", vc,
		"regime", regime,
		"iterations", sol.Iterations,
		"residual", sol.Residual)

	return ConversionResult{
		Mach:                  mach,
		CalibratedAirspeed:    vc,
		TrueAirspeed:          mach * a,
		TotalTemperature:      StagnationTemperature(temperature, mach),
		Regime:                regime,
		SeaLevelRegime:        seaLevelRegime,
		LocalRegime:           localRegime,
		ImpactPressure:        dp,
		PressureRatio:         dp / amb.Pressure,
		SeaLevelPressureRatio: dp / P0,
		Ambient:               amb,
		Temperature:           temperature,
		Iterations:            sol.Iterations,
		Residual:              sol.Residual,
	}
}
