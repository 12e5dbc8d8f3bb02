package asky

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// minutes per degree, -
const sexagesimalBase = 60.0

/*
Convert a latitude or longitude written as degrees-minutes-seconds to
decimal degrees.

	Args:
	    s: position in the form "dd-mm-ss.sssH", H being one of N, E, S, W

	Returns:
	    decimal degrees, N and E positive, S and W negative

	Notes:
	    minutes and seconds may be omitted ("51N", "51-28N").
*/
func ParseDMS(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("parse dms %q: too short", s)
	}

	var sign float64
	switch hemi := strings.ToUpper(s[len(s)-1:]); hemi {
	case "N", "E":
		sign = 1
	case "S", "W":
		sign = -1
	default:
		return 0, fmt.Errorf("parse dms %q: unknown hemisphere %q", s, hemi)
	}

	parts := strings.Split(s[:len(s)-1], "-")
	if len(parts) > 3 {
		return 0, fmt.Errorf("parse dms %q: too many fields", s)
	}

	dd := 0.0
	for n, p := range parts {
		x, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("parse dms %q: %w", s, err)
		}
		if x < 0 || (n > 0 && x >= sexagesimalBase) {
			return 0, fmt.Errorf("parse dms %q: field %q out of range", s, p)
		}
		dd += x / math.Pow(sexagesimalBase, float64(n))
	}
	return sign * dd, nil
}

// ParsePosition reads a latitude and longitude, either in decimal degrees
// or, with dms set, in the ParseDMS form.
func ParsePosition(lat, lon string, dms bool) (orb.Point, error) {
	parse := func(s string) (float64, error) {
		if dms {
			return ParseDMS(s)
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}

	la, err := parse(lat)
	if err != nil {
		return orb.Point{}, fmt.Errorf("latitude: %w", err)
	}
	lo, err := parse(lon)
	if err != nil {
		return orb.Point{}, fmt.Errorf("longitude: %w", err)
	}

	p := orb.Point{lo, la}
	if err := checkPosition(p); err != nil {
		return orb.Point{}, err
	}
	return p, nil
}

func checkPosition(p orb.Point) error {
	if math.IsNaN(p.Lat()) || p.Lat() < -90 || p.Lat() > 90 {
		return fmt.Errorf("latitude %g out of range", p.Lat())
	}
	if math.IsNaN(p.Lon()) || p.Lon() < -180 || p.Lon() > 180 {
		return fmt.Errorf("longitude %g out of range", p.Lon())
	}
	return nil
}
