package wavelength

import (
	"fmt"
	"strings"
)

// Unit identifies the unit of wavelength values.
type Unit int

const (
	// Nanometer is 1e-9 m.
	Nanometer Unit = iota + 1
	// Micrometer is 1e-6 m.
	Micrometer
	// Meter is the SI base unit.
	Meter
)

// metersPer maps a unit to its size in meters.
var metersPer = map[Unit]float64{
	Nanometer:  1e-9,
	Micrometer: 1e-6,
	Meter:      1,
}

// String returns the short unit symbol ("nm", "um", "m").
func (u Unit) String() string {
	switch u {
	case Nanometer:
		return "nm"
	case Micrometer:
		return "um"
	case Meter:
		return "m"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	_, ok := metersPer[u]
	return ok
}

// ParseUnit parses a unit symbol. Accepted spellings are "nm", "um", "µm",
// "micron" and "m" (case-insensitive).
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nm", "nanometer", "nanometers":
		return Nanometer, nil
	case "um", "µm", "micron", "microns", "micrometer", "micrometers":
		return Micrometer, nil
	case "m", "meter", "meters":
		return Meter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// Convert converts value from one unit to another.
func Convert(value float64, from, to Unit) (float64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("%w: %v", ErrUnknownUnit, from)
	}
	if !to.Valid() {
		return 0, fmt.Errorf("%w: %v", ErrUnknownUnit, to)
	}
	if from == to {
		return value, nil
	}

	return value * (metersPer[from] / metersPer[to]), nil
}
