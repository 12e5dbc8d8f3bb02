package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"mach_cas_calc/airdata"
	"mach_cas_calc/units"
)

// one altitude of a table sweep
type tableRow struct {
	AltitudeFt        float64 `csv:"altitude_ft"`
	FlightLevel       float64 `csv:"flight_level"`
	TemperatureC      float64 `csv:"temperature_c"`
	ISADeviationC     float64 `csv:"isa_deviation_c"`
	Mach              float64 `csv:"mach"`
	CASKt             float64 `csv:"cas_kt"`
	TASKt             float64 `csv:"tas_kt"`
	TotalTemperatureC float64 `csv:"total_temperature_c"`
	Regime            string  `csv:"regime"`
	Iterations        int     `csv:"iterations"`
}

// sweep holds either a fixed Mach number or a fixed CAS, swept over
// altitude in an ISA+deviation atmosphere.
type sweep struct {
	Mach float64 // -, used when CAS is zero
	CAS  float64 // m/s

	FromFt, ToFt, StepFt float64
	ISADeviation         float64 // K
}

/*
Altitude grid of a sweep.

	Returns:
	    altitudes from FromFt to ToFt inclusive, ft
*/
func (s sweep) altitudes() ([]float64, error) {
	if s.StepFt <= 0 || math.IsNaN(s.StepFt) {
		return nil, fmt.Errorf("step must be positive, got %g", s.StepFt)
	}
	if s.ToFt < s.FromFt {
		return nil, fmt.Errorf("to (%g ft) is below from (%g ft)", s.ToFt, s.FromFt)
	}

	n := int(math.Floor((s.ToFt-s.FromFt)/s.StepFt+1e-9)) + 1
	if n == 1 {
		return []float64{s.FromFt}, nil
	}
	to := s.FromFt + float64(n-1)*s.StepFt
	return floats.Span(make([]float64, n), s.FromFt, to), nil
}

func (s sweep) validate() error {
	if (s.Mach > 0) == (s.CAS > 0) {
		return errors.New("exactly one of mach and cas must be given")
	}
	return nil
}

/*
Run a sweep with up to workers concurrent conversions.

	Returns:
	    one row per altitude in altitude order
*/
func runSweep(ctx context.Context, conv *airdata.Converter, s sweep, workers int) ([]*tableRow, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	alts, err := s.altitudes()
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows := make([]*tableRow, len(alts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ft := range alts {
		i, ft := i, ft
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := s.row(conv, ft)
			if err != nil {
				return fmt.Errorf("%g ft: %w", ft, err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s sweep) row(conv *airdata.Converter, ft float64) (*tableRow, error) {
	h := units.FeetToMetres(ft)
	temp, err := airdata.TemperatureFromISADeviation(h, s.ISADeviation)
	if err != nil {
		return nil, err
	}

	var res airdata.ConversionResult
	if s.CAS > 0 {
		res, err = conv.MachFromCalibratedAirspeed(s.CAS, h, temp)
	} else {
		res, err = conv.CalibratedAirspeedFromMach(s.Mach, h, temp)
	}
	if err != nil {
		return nil, err
	}

	return &tableRow{
		AltitudeFt:        ft,
		FlightLevel:       units.FlightLevel(h),
		TemperatureC:      units.KelvinToCelsius(temp),
		ISADeviationC:     s.ISADeviation,
		Mach:              res.Mach,
		CASKt:             units.MetresPerSecondToKnots(res.CalibratedAirspeed),
		TASKt:             units.MetresPerSecondToKnots(res.TrueAirspeed),
		TotalTemperatureC: units.KelvinToCelsius(res.TotalTemperature),
		Regime:            res.Regime.String(),
		Iterations:        res.Iterations,
	}, nil
}

func writeTable(w io.Writer, rows []*tableRow) error {
	return gocsv.Marshal(rows, w)
}
