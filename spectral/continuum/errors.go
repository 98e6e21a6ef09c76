package continuum

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerate matches every *DegenerateError.
	ErrDegenerate = errors.New("continuum: degenerate continuum")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("continuum: invalid configuration")
	// ErrLengthMismatch is returned when buffer and axis lengths differ.
	ErrLengthMismatch = errors.New("continuum: length mismatch")
	// ErrWindowOutOfAxis is returned for a window outside the axis.
	ErrWindowOutOfAxis = errors.New("continuum: window outside axis")
)

// DegenerateError reports a continuum that cannot normalize the window.
type DegenerateError struct {
	Low, High Anchor
	// Index is the offending sample, or -1 when the anchors coincide.
	Index int
	// Value is the continuum at Index.
	Value  float64
	Reason string
}

func (e *DegenerateError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("continuum: %s (anchors %v and %v)", e.Reason, e.Low, e.High)
	}
	return fmt.Sprintf("continuum: %s at sample %d: %g (anchors %v and %v)",
		e.Reason, e.Index, e.Value, e.Low, e.High)
}

// Is makes errors.Is(err, ErrDegenerate) match any *DegenerateError.
func (e *DegenerateError) Is(target error) bool {
	return target == ErrDegenerate
}
