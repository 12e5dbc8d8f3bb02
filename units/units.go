// Package units converts between the aviation units used at the edges of
// the program and the SI units used by airdata.
package units

import "math"

const (
	// metre per foot, m/ft
	MetrePerFoot = 0.3048

	// metre per second per knot, (m/s)/kt
	MetrePerSecondPerKnot = 1852.0 / 3600.0

	// absolute temperature of 0 degree Celsius, K
	ZeroCelsius = 273.15

	// pascal per hectopascal, Pa/hPa
	PascalPerHectopascal = 100.0

	// kilogram per tonne, kg/t
	KilogramPerTonne = 1000.0
)

// FeetToMetres converts a length in ft to m.
func FeetToMetres(ft float64) float64 { return ft * MetrePerFoot }

// MetresToFeet converts a length in m to ft.
func MetresToFeet(m float64) float64 { return m / MetrePerFoot }

// KnotsToMetresPerSecond converts a speed in kt to m/s.
func KnotsToMetresPerSecond(kt float64) float64 { return kt * MetrePerSecondPerKnot }

// MetresPerSecondToKnots converts a speed in m/s to kt.
func MetresPerSecondToKnots(ms float64) float64 { return ms / MetrePerSecondPerKnot }

func CelsiusToKelvin(c float64) float64 { return c + ZeroCelsius }

func KelvinToCelsius(k float64) float64 { return k - ZeroCelsius }

func HectopascalsToPascals(hpa float64) float64 { return hpa * PascalPerHectopascal }

func PascalsToHectopascals(pa float64) float64 { return pa / PascalPerHectopascal }

func TonnesToKilograms(t float64) float64 { return t * KilogramPerTonne }

func KilogramsToTonnes(kg float64) float64 { return kg / KilogramPerTonne }

// Radians converts an angle in degree to rad.
func Radians(deg float64) float64 { return deg * math.Pi / 180.0 }

// FlightLevel returns the flight level for a pressure altitude in m.
func FlightLevel(m float64) float64 { return MetresToFeet(m) / 100.0 }
