package absorption

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

var (
	// ErrFitDegenerate matches a *FitError of kind FitDegenerate.
	ErrFitDegenerate = errors.New("absorption: degenerate fit")
	// ErrFitDivergent matches a *FitError of kind FitDivergent.
	ErrFitDivergent = errors.New("absorption: divergent fit")
	// ErrLengthMismatch is returned when data and axis lengths differ.
	ErrLengthMismatch = errors.New("absorption: length mismatch")
	// ErrShoulders is returned when three-band depth shoulders coincide.
	ErrShoulders = errors.New("absorption: shoulder wavelengths coincide")
)

// FitKind classifies fit failures.
type FitKind int

const (
	// FitDegenerate means the window cannot determine the polynomial.
	FitDegenerate FitKind = iota + 1
	// FitDivergent means the least-squares system is singular or produced
	// non-finite values.
	FitDivergent
)

func (k FitKind) String() string {
	switch k {
	case FitDegenerate:
		return "degenerate"
	case FitDivergent:
		return "divergent"
	default:
		return fmt.Sprintf("FitKind(%d)", int(k))
	}
}

// FitError reports a failed absorption fit.
type FitError struct {
	Kind    FitKind
	Window  wavelength.Window
	Degree  int
	Samples int
	Reason  string
	Err     error
}

func (e *FitError) Error() string {
	msg := fmt.Sprintf("absorption: %v fit of degree %d over [%g, %g] (%d samples): %s",
		e.Kind, e.Degree, e.Window.LowWavelength, e.Window.HighWavelength, e.Samples, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FitError) Unwrap() error {
	return e.Err
}

// Is matches ErrFitDegenerate or ErrFitDivergent according to Kind.
func (e *FitError) Is(target error) bool {
	switch target {
	case ErrFitDegenerate:
		return e.Kind == FitDegenerate
	case ErrFitDivergent:
		return e.Kind == FitDivergent
	}
	return false
}
