package wavelength

import (
	"errors"
	"fmt"
)

// Errors returned by axis construction and window resolution.
var (
	ErrEmptyAxis      = errors.New("wavelength: empty axis")
	ErrNonPositive    = errors.New("wavelength: values must be positive and finite")
	ErrNotIncreasing  = errors.New("wavelength: values must be strictly increasing")
	ErrUnknownUnit    = errors.New("wavelength: unknown unit")
	ErrRange          = errors.New("wavelength: invalid spectral window")
	ErrIndexOutOfAxis = errors.New("wavelength: index out of axis")
)

// RangeError reports a spectral window that cannot be resolved against an axis.
type RangeError struct {
	Low, High float64
	Unit      Unit
	// Samples is the number of axis samples inside the window.
	Samples int
	Reason  string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("wavelength: window [%g, %g] %v (%d samples): %s",
		e.Low, e.High, e.Unit, e.Samples, e.Reason)
}

// Is makes errors.Is(err, ErrRange) match any *RangeError.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}
