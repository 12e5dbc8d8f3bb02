// Package envelope checks a flight condition against the aircraft's
// calibrated airspeed, Mach and total temperature limits.
package envelope

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/interp"

	"mach_cas_calc/airdata"
	"mach_cas_calc/units"
)

// one row of the CAS limit table
type casLimitRow struct {
	AltitudeFt float64 `csv:"altitude_ft"`
	WeightT    float64 `csv:"weight_t"`
	CASLimitKt float64 `csv:"cas_limit_kt"`
}

// CASLimits is a calibrated airspeed limit tabulated over altitude and
// weight.
type CASLimits struct {
	altitudes []float64   // m
	weights   []float64   // kg
	limits    [][]float64 // m/s, [altitude][weight]

	// one interpolant across weight per altitude row
	rows []interp.PiecewiseLinear
}

/*
Read a CAS limit table.

	Args:
	    r: CSV in one of two layouts:
	        long, with the header altitude_ft,weight_t,cas_limit_kt and one
	        row per cell;
	        wide, with the header alt,<weight t>,... and one row per
	        altitude in ft holding the limits in kt.

	Returns:
	    the table in SI units

	Notes:
	    the table must cover every altitude/weight combination exactly once,
	    with at least two altitudes and two weights.
*/
func LoadCASLimits(r io.Reader) (*CASLimits, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cas limits: %w", err)
	}
	records, err := gocsv.DefaultCSVReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read cas limits: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read cas limits: no header")
	}

	var rows []*casLimitRow
	switch header := records[0]; {
	case slices.Contains(header, "cas_limit_kt"):
		if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
			return nil, fmt.Errorf("read cas limits: %w", err)
		}
	case strings.EqualFold(strings.TrimSpace(header[0]), "alt"):
		if rows, err = wideRows(header, records[1:]); err != nil {
			return nil, fmt.Errorf("read cas limits: %w", err)
		}
	default:
		return nil, fmt.Errorf("read cas limits: unrecognised header %q", header)
	}
	if len(rows) == 0 {
		return nil, errors.New("read cas limits: no rows")
	}
	return gridFromRows(rows)
}

// wideRows flattens a table with one column per weight into cells.
func wideRows(header []string, records [][]string) ([]*casLimitRow, error) {
	weights := make([]float64, len(header)-1)
	for j, h := range header[1:] {
		w, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err != nil {
			return nil, fmt.Errorf("weight column %q: %w", h, err)
		}
		weights[j] = w
	}

	var rows []*casLimitRow
	for n, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields for %d columns", n+2, len(rec), len(header))
		}
		alt, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: altitude: %w", n+2, err)
		}
		for j, w := range weights {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %g t: %w", n+2, w, err)
			}
			rows = append(rows, &casLimitRow{AltitudeFt: alt, WeightT: w, CASLimitKt: v})
		}
	}
	return rows, nil
}

// gridFromRows places cells in ft, t and kt on an SI altitude/weight grid.
func gridFromRows(rows []*casLimitRow) (*CASLimits, error) {
	var alts, wgts []float64
	for _, row := range rows {
		alts = append(alts, row.AltitudeFt)
		wgts = append(wgts, row.WeightT)
	}
	slices.Sort(alts)
	alts = slices.Compact(alts)
	slices.Sort(wgts)
	wgts = slices.Compact(wgts)

	limits := make([][]float64, len(alts))
	for i := range limits {
		limits[i] = make([]float64, len(wgts))
		for j := range limits[i] {
			limits[i][j] = math.NaN()
		}
	}
	for _, row := range rows {
		i, _ := slices.BinarySearch(alts, row.AltitudeFt)
		j, _ := slices.BinarySearch(wgts, row.WeightT)
		if !math.IsNaN(limits[i][j]) {
			return nil, fmt.Errorf("read cas limits: duplicate entry at %g ft, %g t", row.AltitudeFt, row.WeightT)
		}
		limits[i][j] = units.KnotsToMetresPerSecond(row.CASLimitKt)
	}
	for i := range limits {
		for j := range limits[i] {
			if math.IsNaN(limits[i][j]) {
				return nil, fmt.Errorf("read cas limits: missing entry at %g ft, %g t", alts[i], wgts[j])
			}
		}
	}

	for i := range alts {
		alts[i] = units.FeetToMetres(alts[i])
	}
	for j := range wgts {
		wgts[j] = units.TonnesToKilograms(wgts[j])
	}
	return NewCASLimits(alts, wgts, limits)
}

// LoadCASLimitsFile reads a CAS limit table from a CSV file.
func LoadCASLimitsFile(path string) (*CASLimits, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCASLimits(f)
}

// NewCASLimits builds a table from strictly increasing altitudes, m, and
// weights, kg, and limits, m/s, indexed [altitude][weight].
func NewCASLimits(altitudes, weights []float64, limits [][]float64) (*CASLimits, error) {
	if len(altitudes) < 2 || len(weights) < 2 {
		return nil, fmt.Errorf("cas limits: need at least two altitudes and two weights, have %d and %d", len(altitudes), len(weights))
	}
	if len(limits) != len(altitudes) {
		return nil, fmt.Errorf("cas limits: %d rows for %d altitudes", len(limits), len(altitudes))
	}

	if !increasing(altitudes) {
		return nil, errors.New("cas limits: altitudes are not strictly increasing")
	}
	if !increasing(weights) {
		return nil, errors.New("cas limits: weights are not strictly increasing")
	}

	c := &CASLimits{
		altitudes: altitudes,
		weights:   weights,
		limits:    limits,
		rows:      make([]interp.PiecewiseLinear, len(altitudes)),
	}
	for i, row := range limits {
		if len(row) != len(weights) {
			return nil, fmt.Errorf("cas limits: row %d has %d values for %d weights", i, len(row), len(weights))
		}
		for _, v := range row {
			if math.IsNaN(v) || v <= 0 {
				return nil, fmt.Errorf("cas limits: row %d has invalid limit %g", i, v)
			}
		}
		if err := c.rows[i].Fit(weights, row); err != nil {
			return nil, fmt.Errorf("cas limits: %w", err)
		}
	}
	return c, nil
}

/*
CAS limit at an altitude and weight.

	Args:
	    altitude: geopotential altitude, m
	    weight: aircraft weight, kg

	Returns:
	    calibrated airspeed limit, m/s

	Notes:
	    bilinear interpolation; no extrapolation outside the table.
*/
func (c *CASLimits) Limit(altitude, weight float64) (float64, error) {
	const op = "cas limit"
	if !inRange(altitude, c.altitudes) {
		return 0, &airdata.DomainError{Op: op, Name: "altitude", Value: altitude, Reason: "outside the CAS limit table"}
	}
	if !inRange(weight, c.weights) {
		return 0, &airdata.DomainError{Op: op, Name: "weight", Value: weight, Reason: "outside the CAS limit table"}
	}

	col := make([]float64, len(c.rows))
	for i := range c.rows {
		col[i] = c.rows[i].Predict(weight)
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(c.altitudes, col); err != nil {
		return 0, err
	}
	return pl.Predict(altitude), nil
}

// Bounds returns the altitude, m, and weight, kg, ranges covered.
func (c *CASLimits) Bounds() (minAlt, maxAlt, minWeight, maxWeight float64) {
	return c.altitudes[0], c.altitudes[len(c.altitudes)-1], c.weights[0], c.weights[len(c.weights)-1]
}

// interp.PiecewiseLinear panics on repeated or unordered abscissae
func increasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}

func inRange(x float64, xs []float64) bool {
	return x >= xs[0] && x <= xs[len(xs)-1]
}
