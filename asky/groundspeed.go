package asky

import (
	"fmt"

	"mach_cas_calc/airdata"
)

// LayerSpeed is the speed of an aircraft flying a fixed Mach number through
// one weather layer.
type LayerSpeed struct {
	Layer
	TrueAirspeed float64 // m/s
	GroundSpeed  float64 // m/s
}

/*
Ground speed at a fixed Mach number through each layer.

	Args:
	    layers: weather layers, e.g. from Client.GetAtmosphere
	    mach: Mach number, -
	    heading: true heading, degree

	Returns:
	    one LayerSpeed per layer, in the same order
*/
func GroundSpeeds(layers []Layer, mach, heading float64) ([]LayerSpeed, error) {
	out := make([]LayerSpeed, 0, len(layers))
	for _, l := range layers {
		tas, err := airdata.TrueAirspeedFromMach(mach, l.Temperature)
		if err != nil {
			return nil, fmt.Errorf("layer at %.0f m: %w", l.Altitude, err)
		}
		out = append(out, LayerSpeed{
			Layer:        l,
			TrueAirspeed: tas,
			GroundSpeed:  airdata.GroundSpeed(l.WindSpeed, l.WindDirection, tas, heading),
		})
	}
	return out, nil
}
