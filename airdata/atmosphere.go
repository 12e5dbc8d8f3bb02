package airdata

import "math"

// AmbientConditions is the static state of the standard atmosphere at one
// geopotential altitude.
type AmbientConditions struct {
	Altitude     float64 // geopotential altitude, m
	Temperature  float64 // static temperature, K
	Pressure     float64 // static pressure, Pa
	Density      float64 // density, kg/m3
	SpeedOfSound float64 // speed of sound, m/s
}

// TemperatureRatio returns theta = T/T0.
func (c AmbientConditions) TemperatureRatio() float64 { return c.Temperature / T0 }

// PressureRatio returns delta = p/p0.
func (c AmbientConditions) PressureRatio() float64 { return c.Pressure / P0 }

// DensityRatio returns sigma = rho/rho0.
func (c AmbientConditions) DensityRatio() float64 { return c.Density / Rho0 }

// SoundSpeedRatio returns a/a0.
func (c AmbientConditions) SoundSpeedRatio() float64 { return c.SpeedOfSound / A0 }

/*
Compute the two-layer standard atmosphere at a geopotential altitude.

	Args:
	    altitude: geopotential altitude, m, [0, HMax)

	Returns:
	    AmbientConditions in absolute units

	Notes:
	    below H1 the temperature falls linearly and pressure follows theta^5.2558774;
	    from H1 up to HMax the layer is isothermal and pressure decays exponentially.
*/
func StandardAtmosphere(altitude float64) (AmbientConditions, error) {
	if err := checkAltitude("standard atmosphere", altitude); err != nil {
		return AmbientConditions{}, err
	}

	if altitude >= H1 {
		e := math.Exp(-(altitude - H1) / scaleHeight)
		return AmbientConditions{
			Altitude:     altitude,
			Temperature:  TStar,
			Pressure:     deltaStar * e * P0,
			Density:      sigmaStar * e * Rho0,
			SpeedOfSound: AStar,
		}, nil
	}

	theta := 1.0 - (lapseRate/T0)*altitude
	return AmbientConditions{
		Altitude:     altitude,
		Temperature:  theta * T0,
		Pressure:     math.Pow(theta, pressureExponent) * P0,
		Density:      math.Pow(theta, densityExponent) * Rho0,
		SpeedOfSound: math.Sqrt(theta) * A0,
	}, nil
}

func checkAltitude(op string, altitude float64) error {
	switch {
	case math.IsNaN(altitude) || math.IsInf(altitude, 0):
		return &DomainError{Op: op, Name: "altitude", Value: altitude, Reason: "not a finite number"}
	case altitude < 0:
		return &DomainError{Op: op, Name: "altitude", Value: altitude, Reason: "below sea level"}
	case altitude >= HMax:
		return &DomainError{Op: op, Name: "altitude", Value: altitude, Reason: "at or above the lower stratosphere boundary"}
	}
	return nil
}
