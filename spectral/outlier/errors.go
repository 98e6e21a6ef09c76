package outlier

import (
	"errors"
	"fmt"
)

var (
	// ErrWindow matches every *WindowError.
	ErrWindow = errors.New("outlier: local window entirely anomalous")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("outlier: invalid configuration")
	// ErrLengthMismatch is returned when the spectrum and axis lengths differ.
	ErrLengthMismatch = errors.New("outlier: spectrum length does not match axis")
)

// WindowError reports a local window in which no sample can serve as a
// reference for replacement.
type WindowError struct {
	// Center is the sample whose window failed.
	Center int
	// Low and High bound the window (inclusive).
	Low, High int
	// Values are the window samples as observed.
	Values []float64
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("outlier: window [%d, %d] around sample %d has no valid samples: %v",
		e.Low, e.High, e.Center, e.Values)
}

// Is makes errors.Is(err, ErrWindow) match any *WindowError.
func (e *WindowError) Is(target error) bool {
	return target == ErrWindow
}
