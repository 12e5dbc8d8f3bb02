package airdata

import "math"

// (gamma - 1) / 2, -
const recoveryFactor = (Gamma - 1.0) / 2.0

/*
Standard static temperature at a geopotential altitude.

	Args:
	    altitude: geopotential altitude, m

	Returns:
	    static temperature, K
*/
func ISATemperature(altitude float64) (float64, error) {
	c, err := StandardAtmosphere(altitude)
	if err != nil {
		return 0, err
	}
	return c.Temperature, nil
}

// TemperatureFromISADeviation returns the static temperature, K, that is
// deviation K warmer than standard at altitude.
func TemperatureFromISADeviation(altitude, deviation float64) (float64, error) {
	t, err := ISATemperature(altitude)
	if err != nil {
		return 0, err
	}
	return t + deviation, nil
}

// ISADeviation returns how much warmer than standard, K, a static
// temperature is at altitude.
func ISADeviation(altitude, temperature float64) (float64, error) {
	t, err := ISATemperature(altitude)
	if err != nil {
		return 0, err
	}
	return temperature - t, nil
}

/*
Speed of sound in air at a static temperature.

	Args:
	    temperature: static temperature, K

	Returns:
	    speed of sound, m/s
*/
func SpeedOfSound(temperature float64) (float64, error) {
	if math.IsNaN(temperature) || temperature <= 0 {
		return 0, &DomainError{Op: "speed of sound", Name: "temperature", Value: temperature, Reason: "must be above absolute zero"}
	}
	return speedOfSound(temperature), nil
}

// a0 * sqrt(T/T0) for an already validated temperature, m/s
func speedOfSound(temperature float64) float64 {
	return A0 * math.Sqrt(temperature/T0)
}

// TrueAirspeedFromMach returns the true airspeed, m/s, for a Mach number
// at a static temperature, K.
func TrueAirspeedFromMach(mach, temperature float64) (float64, error) {
	a, err := SpeedOfSound(temperature)
	if err != nil {
		return 0, err
	}
	return mach * a, nil
}

/*
Stagnation (total) temperature.

	Args:
	    staticTemperature: static temperature, K
	    mach: Mach number, -

	Returns:
	    total temperature, K
*/
func StagnationTemperature(staticTemperature, mach float64) float64 {
	return staticTemperature * (1.0 + recoveryFactor*mach*mach)
}

/*
Mach number from total and static temperature.

	Args:
	    totalTemperature: total temperature, K
	    staticTemperature: static temperature, K

	Returns:
	    Mach number, -

	Notes:
	    inverse of StagnationTemperature
*/
func MachFromTemperatures(totalTemperature, staticTemperature float64) (float64, error) {
	const op = "mach from temperatures"
	if !(staticTemperature > 0) {
		return 0, &DomainError{Op: op, Name: "static temperature", Value: staticTemperature, Reason: "must be above absolute zero"}
	}
	tr := totalTemperature / staticTemperature
	if tr < 1 {
		return 0, &DomainError{Op: op, Name: "total temperature", Value: totalTemperature, Reason: "below static temperature"}
	}
	return math.Sqrt((tr - 1.0) / recoveryFactor), nil
}

func checkTemperature(op string, temperature float64) error {
	if math.IsNaN(temperature) || temperature < MinTemperature || temperature > MaxTemperature {
		return &DomainError{Op: op, Name: "temperature", Value: temperature, Reason: "outside the supported static temperature range"}
	}
	return nil
}
