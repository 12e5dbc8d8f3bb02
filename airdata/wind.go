package airdata

import "math"

const toRad = math.Pi / 180

/*
Ground speed from the wind triangle.

	Args:
	    windSpeed: wind speed, m/s
	    windFrom: direction the wind blows from, degree
	    trueAirspeed: true airspeed, m/s
	    heading: aircraft heading, degree

	Returns:
	    ground speed, m/s

	Notes:
	    law of cosines on the air and wind vectors; a wind from the heading
	    is a pure headwind.
*/
func GroundSpeed(windSpeed, windFrom, trueAirspeed, heading float64) float64 {
	psi := (windFrom - heading) * toRad
	gs2 := trueAirspeed*trueAirspeed + windSpeed*windSpeed - 2*trueAirspeed*windSpeed*math.Cos(psi)
	return math.Sqrt(math.Max(gs2, 0))
}
