package envelope

import (
	"fmt"

	"mach_cas_calc/airdata"
	"mach_cas_calc/units"
)

const (
	// maximum operating Mach number, -
	DefaultMaxMach = 2.04

	// maximum total temperature, K (127 degC)
	DefaultMaxTotalTemperature = 400.15
)

// Limit names one envelope boundary.
type Limit string

const (
	LimitCAS              Limit = "cas"
	LimitMach             Limit = "mach"
	LimitTotalTemperature Limit = "total_temperature"
)

func (l Limit) String() string { return string(l) }

// Envelope holds the speed and temperature limits of an aircraft. CAS may
// be nil, in which case no airspeed limit is checked.
type Envelope struct {
	MaxMach             float64 // -
	MaxTotalTemperature float64 // K
	CAS                 *CASLimits
}

// Default returns the Mach and total temperature limits with no CAS table.
func Default() Envelope {
	return Envelope{
		MaxMach:             DefaultMaxMach,
		MaxTotalTemperature: DefaultMaxTotalTemperature,
	}
}

// Validate checks that the limits are usable.
func (e Envelope) Validate() error {
	if !(e.MaxMach > 0) {
		return fmt.Errorf("envelope: max mach must be positive, got %g", e.MaxMach)
	}
	if e.MaxTotalTemperature < airdata.MinTemperature {
		return fmt.Errorf("envelope: max total temperature %g K below %g K", e.MaxTotalTemperature, airdata.MinTemperature)
	}
	return nil
}

/*
Highest Mach number that keeps the total temperature within limit.

	Args:
	    staticTemperature: static temperature, K

	Returns:
	    Mach number, -; zero when the static temperature is already at the
	    limit
*/
func (e Envelope) TemperatureLimitedMach(staticTemperature float64) (float64, error) {
	if staticTemperature > e.MaxTotalTemperature {
		return 0, &airdata.DomainError{
			Op: "temperature limited mach", Name: "static temperature", Value: staticTemperature,
			Reason: fmt.Sprintf("above the total temperature limit %g K", e.MaxTotalTemperature),
		}
	}
	return airdata.MachFromTemperatures(e.MaxTotalTemperature, staticTemperature)
}

// Assessment compares one flight condition with the envelope. Margins are
// limit minus value, so a negative margin is an exceedance.
type Assessment struct {
	Mach       float64
	MachLimit  float64
	MachMargin float64

	TotalTemperature       float64 // K
	TotalTemperatureLimit  float64 // K
	TotalTemperatureMargin float64 // K

	// highest Mach at this static temperature within the total temperature limit
	TemperatureLimitedMach float64

	HasCASLimit        bool
	CalibratedAirspeed float64 // m/s
	CASLimit           float64 // m/s
	CASMargin          float64 // m/s

	Exceeded []Limit
}

// Within reports whether no limit is exceeded.
func (a Assessment) Within() bool { return len(a.Exceeded) == 0 }

/*
Assess a conversion result against the envelope.

	Args:
	    res: result of a Mach/CAS conversion
	    weight: aircraft weight, kg; only used with a CAS table

	Returns:
	    the margins and the list of exceeded limits
*/
func (e Envelope) Assess(res airdata.ConversionResult, weight float64) (Assessment, error) {
	a := Assessment{
		Mach:                   res.Mach,
		MachLimit:              e.MaxMach,
		MachMargin:             e.MaxMach - res.Mach,
		TotalTemperature:       res.TotalTemperature,
		TotalTemperatureLimit:  e.MaxTotalTemperature,
		TotalTemperatureMargin: e.MaxTotalTemperature - res.TotalTemperature,
		CalibratedAirspeed:     res.CalibratedAirspeed,
	}

	tm, err := e.TemperatureLimitedMach(res.Temperature)
	if err != nil {
		return Assessment{}, err
	}
	a.TemperatureLimitedMach = tm

	if e.CAS != nil {
		limit, err := e.CAS.Limit(res.Ambient.Altitude, weight)
		if err != nil {
			return Assessment{}, fmt.Errorf("assess at %.0f ft, %.1f t: %w",
				units.MetresToFeet(res.Ambient.Altitude), units.KilogramsToTonnes(weight), err)
		}
		a.HasCASLimit = true
		a.CASLimit = limit
		a.CASMargin = limit - res.CalibratedAirspeed
		if a.CASMargin < 0 {
			a.Exceeded = append(a.Exceeded, LimitCAS)
		}
	}
	if a.MachMargin < 0 {
		a.Exceeded = append(a.Exceeded, LimitMach)
	}
	if a.TotalTemperatureMargin < 0 {
		a.Exceeded = append(a.Exceeded, LimitTotalTemperature)
	}
	return a, nil
}
