package envelope

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mach_cas_calc/airdata"
	"mach_cas_calc/units"
)

// rows deliberately out of order
const casLimitsCSV = `altitude_ft,weight_t,cas_limit_kt
20000,100,450
0,100,400
0,185,380
20000,185,430
40000,100,530
40000,185,500
`

// the same table with one column per weight in tonnes
const wideCASLimitsCSV = `alt,100,185
0,400,380
40000,530,500
20000,450,430
`

func loadTestLimits(t *testing.T) *CASLimits {
	t.Helper()
	c, err := LoadCASLimits(strings.NewReader(casLimitsCSV))
	require.NoError(t, err)
	return c
}

func TestLoadCASLimits_Bounds(t *testing.T) {
	c := loadTestLimits(t)

	minAlt, maxAlt, minW, maxW := c.Bounds()
	assert.Equal(t, 0.0, minAlt)
	assert.InDelta(t, 12192, maxAlt, 1e-9)
	assert.Equal(t, 100000.0, minW)
	assert.Equal(t, 185000.0, maxW)
}

func TestCASLimits_GridPoints(t *testing.T) {
	c := loadTestLimits(t)

	tests := []struct {
		altFt, weightT, wantKt float64
	}{
		{0, 100, 400},
		{0, 185, 380},
		{20000, 100, 450},
		{40000, 185, 500},
	}
	for _, tt := range tests {
		got, err := c.Limit(units.FeetToMetres(tt.altFt), units.TonnesToKilograms(tt.weightT))
		require.NoError(t, err)
		assert.InDelta(t, tt.wantKt, units.MetresPerSecondToKnots(got), 1e-9, "%g ft %g t", tt.altFt, tt.weightT)
	}
}

func TestCASLimits_Bilinear(t *testing.T) {
	c := loadTestLimits(t)

	got, err := c.Limit(units.FeetToMetres(10000), units.TonnesToKilograms(142.5))
	require.NoError(t, err)
	assert.InDelta(t, 415, units.MetresPerSecondToKnots(got), 1e-9)

	got, err = c.Limit(units.FeetToMetres(30000), units.TonnesToKilograms(185))
	require.NoError(t, err)
	assert.InDelta(t, 465, units.MetresPerSecondToKnots(got), 1e-9)
}

func TestCASLimits_OutsideTable(t *testing.T) {
	c := loadTestLimits(t)

	tests := []struct {
		name             string
		altitude, weight float64
		field            string
	}{
		{"above table", units.FeetToMetres(45000), 150000, "altitude"},
		{"below table", -1, 150000, "altitude"},
		{"too light", 1000, 90000, "weight"},
		{"too heavy", 1000, 200000, "weight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Limit(tt.altitude, tt.weight)
			var de *airdata.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Name)
		})
	}
}

func TestLoadCASLimits_Invalid(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", "altitude_ft,weight_t,cas_limit_kt\n"},
		{"missing cell", "altitude_ft,weight_t,cas_limit_kt\n0,100,400\n0,185,380\n20000,100,450\n"},
		{"duplicate cell", "altitude_ft,weight_t,cas_limit_kt\n0,100,400\n0,100,401\n0,185,380\n20000,100,450\n20000,185,430\n"},
		{"single altitude", "altitude_ft,weight_t,cas_limit_kt\n0,100,400\n0,185,380\n"},
		{"not a number", "altitude_ft,weight_t,cas_limit_kt\nzero,100,400\n"},
		{"non-positive limit", "altitude_ft,weight_t,cas_limit_kt\n0,100,0\n0,185,380\n20000,100,450\n20000,185,430\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCASLimits(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestLoadCASLimits_WideLayout(t *testing.T) {
	long := loadTestLimits(t)
	wide, err := LoadCASLimits(strings.NewReader(wideCASLimitsCSV))
	require.NoError(t, err)

	assert.Equal(t, long.altitudes, wide.altitudes)
	assert.Equal(t, long.weights, wide.weights)
	assert.Equal(t, long.limits, wide.limits)

	got, err := wide.Limit(units.FeetToMetres(10000), units.TonnesToKilograms(142.5))
	require.NoError(t, err)
	assert.InDelta(t, 415, units.MetresPerSecondToKnots(got), 1e-9)
}

func TestLoadCASLimits_InvalidWide(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"no rows", "alt,100,185\n"},
		{"weight not a number", "alt,light,heavy\n0,400,380\n20000,450,430\n"},
		{"limit not a number", "alt,100,185\n0,400,fast\n20000,450,430\n"},
		{"altitude not a number", "alt,100,185\nground,400,380\n20000,450,430\n"},
		{"duplicate altitude", "alt,100,185\n0,400,380\n0,400,380\n20000,450,430\n"},
		{"single weight", "alt,100\n0,400\n20000,450\n"},
		{"unknown header", "height,100,185\n0,400,380\n20000,450,430\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCASLimits(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestNewCASLimits_RejectsUnorderedAxes(t *testing.T) {
	_, err := NewCASLimits([]float64{0, 0}, []float64{1, 2}, [][]float64{{1, 1}, {1, 1}})
	assert.Error(t, err)
	_, err = NewCASLimits([]float64{0, 1}, []float64{2, 1}, [][]float64{{1, 1}, {1, 1}})
	assert.Error(t, err)
	_, err = NewCASLimits([]float64{0, 1}, []float64{1, 2}, [][]float64{{1, 1}})
	assert.Error(t, err)
}

func TestLoadCASLimitsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cas_limits.csv")
	require.NoError(t, os.WriteFile(path, []byte(casLimitsCSV), 0o600))

	c, err := LoadCASLimitsFile(path)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = LoadCASLimitsFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
