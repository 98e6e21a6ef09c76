package smooth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWidth matches every *WidthError.
	ErrInvalidWidth = errors.New("smooth: invalid filter width")
	// ErrUnknownMethod is returned for a Method outside the defined set.
	ErrUnknownMethod = errors.New("smooth: unknown method")
	// ErrLengthMismatch is returned when dst and src lengths differ.
	ErrLengthMismatch = errors.New("smooth: buffer length mismatch")
)

// WidthError reports a filter width that cannot be applied to a spectrum.
type WidthError struct {
	Method Method
	Width  int
	// Order is the polynomial order (Savitzky-Golay only).
	Order int
	// Length is the spectrum length the width was checked against.
	Length int
	Reason string
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("smooth: %v width %d invalid for %d samples: %s", e.Method, e.Width, e.Length, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidWidth) match any *WidthError.
func (e *WidthError) Is(target error) bool {
	return target == ErrInvalidWidth
}
