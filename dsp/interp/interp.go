package interp

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrLengthMismatch is returned when coordinate and value slices differ in length.
	ErrLengthMismatch = errors.New("interp: length mismatch")
	// ErrNoKnots is returned when no unmasked sample is available to interpolate from.
	ErrNoKnots = errors.New("interp: no valid knots")
	// ErrVerticalLine is returned when a line's two points share an x coordinate.
	ErrVerticalLine = errors.New("interp: points share an x coordinate")
)

// Lerp interpolates between a and b at frac in [0,1].
func Lerp(frac, a, b float64) float64 {
	return a + frac*(b-a)
}

// Line is the straight line through (X0, Y0) and (X1, Y1).
type Line struct {
	X0, Y0 float64
	X1, Y1 float64
}

// NewLine returns the line through two points with distinct x coordinates.
func NewLine(x0, y0, x1, y1 float64) (Line, error) {
	if x0 == x1 {
		return Line{}, fmt.Errorf("%w: x = %g", ErrVerticalLine, x0)
	}

	return Line{X0: x0, Y0: y0, X1: x1, Y1: y1}, nil
}

// Slope returns dy/dx.
func (l Line) Slope() float64 {
	return (l.Y1 - l.Y0) / (l.X1 - l.X0)
}

// At evaluates the line at x. Points outside [X0, X1] are extrapolated.
func (l Line) At(x float64) float64 {
	return Lerp((x-l.X0)/(l.X1-l.X0), l.Y0, l.Y1)
}

// EvalTo writes l(x[i]) into dst. dst must be at least len(x) long.
func (l Line) EvalTo(dst, x []float64) {
	for i, v := range x {
		dst[i] = l.At(v)
	}
}

// FillGaps overwrites every y[i] with bad[i] set. Interior gaps are filled
// by linear interpolation in x between the nearest good samples on each side;
// leading and trailing gaps take the nearest good value. x must be increasing.
func FillGaps(x, y []float64, bad []bool) error {
	if len(x) != len(y) || len(bad) != len(y) {
		return fmt.Errorf("%w: x=%d y=%d mask=%d", ErrLengthMismatch, len(x), len(y), len(bad))
	}

	prev := -1
	for i := 0; i <= len(y); i++ {
		if i < len(y) && bad[i] {
			continue
		}

		// Samples prev+1 .. i-1 form a gap bounded by good samples (or the ends).
		if i-prev > 1 {
			switch {
			case prev < 0 && i == len(y):
				return ErrNoKnots
			case prev < 0:
				for j := 0; j < i; j++ {
					y[j] = y[i]
				}
			case i == len(y):
				for j := prev + 1; j < i; j++ {
					y[j] = y[prev]
				}
			default:
				l := Line{X0: x[prev], Y0: y[prev], X1: x[i], Y1: y[i]}
				for j := prev + 1; j < i; j++ {
					y[j] = l.At(x[j])
				}
			}
		}

		prev = i
	}

	return nil
}

// Polyline is a piecewise-linear curve through knots with increasing X.
type Polyline struct {
	X, Y []float64
}

// NewPolyline copies the knots. At least two knots with strictly increasing
// x are required.
func NewPolyline(x, y []float64) (*Polyline, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: x=%d y=%d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: need 2 knots, have %d", ErrNoKnots, len(x))
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("%w: knot %d", ErrVerticalLine, i)
		}
	}

	p := &Polyline{X: make([]float64, len(x)), Y: make([]float64, len(y))}
	copy(p.X, x)
	copy(p.Y, y)

	return p, nil
}

// At evaluates the curve at v, extrapolating the end segments outside the
// knot range.
func (p *Polyline) At(v float64) float64 {
	i := sort.SearchFloat64s(p.X, v)
	switch {
	case i <= 0:
		i = 1
	case i >= len(p.X):
		i = len(p.X) - 1
	}

	return Line{X0: p.X[i-1], Y0: p.Y[i-1], X1: p.X[i], Y1: p.Y[i]}.At(v)
}
