package airdata

// FlowRegime names the branch of the pressure-ratio equations in use.
type FlowRegime string

const (
	Subsonic   FlowRegime = "subsonic"
	Supersonic FlowRegime = "supersonic"
)

/*
Select the flow regime from an impact-pressure ratio.

	Args:
	    ratio: impact pressure over static pressure, -

	Returns:
	    Supersonic when ratio exceeds RegimeThreshold, otherwise Subsonic.
	    A ratio exactly at the threshold is Subsonic.
*/
func SelectRegime(ratio float64) FlowRegime {
	if ratio > RegimeThreshold {
		return Supersonic
	}
	return Subsonic
}

func (r FlowRegime) String() string {
	return string(r)
}

// Valid reports whether r is one of the two known regimes.
func (r FlowRegime) Valid() bool {
	switch r {
	case Subsonic, Supersonic:
		return true
	default:
		return false
	}
}
