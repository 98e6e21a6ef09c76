package wavelength

import (
	"fmt"
	"math"
	"sort"
)

// MinWindowSamples is the smallest window ResolveWindow accepts.
const MinWindowSamples = 3

// Axis is an immutable, strictly increasing wavelength vector with a unit.
// It is safe for concurrent use.
type Axis struct {
	values []float64
	unit   Unit
}

// Window is an inclusive index range [Low, High] on an axis together with the
// wavelengths at both ends (in the axis unit).
type Window struct {
	Low, High                     int
	LowWavelength, HighWavelength float64
}

// Len returns the number of samples in the window.
func (w Window) Len() int {
	return w.High - w.Low + 1
}

// Contains reports whether other lies entirely inside w.
func (w Window) Contains(other Window) bool {
	return other.Low >= w.Low && other.High <= w.High
}

// New builds an axis from values, which are copied.
func New(values []float64, unit Unit) (*Axis, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownUnit, unit)
	}
	if len(values) == 0 {
		return nil, ErrEmptyAxis
	}

	for i, v := range values {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: values[%d] = %g", ErrNonPositive, i, v)
		}
		if i > 0 && v <= values[i-1] {
			return nil, fmt.Errorf("%w: values[%d] = %g <= values[%d] = %g",
				ErrNotIncreasing, i, v, i-1, values[i-1])
		}
	}

	out := make([]float64, len(values))
	copy(out, values)

	return &Axis{values: out, unit: unit}, nil
}

// Len returns the number of bands.
func (a *Axis) Len() int {
	return len(a.values)
}

// Unit returns the axis unit.
func (a *Axis) Unit() Unit {
	return a.unit
}

// At returns the wavelength at index i. It panics if i is out of range.
func (a *Axis) At(i int) float64 {
	return a.values[i]
}

// Values returns a copy of the wavelength values.
func (a *Axis) Values() []float64 {
	out := make([]float64, len(a.values))
	copy(out, a.values)
	return out
}

// Slice returns the wavelengths of w. The result aliases the axis storage
// and must not be modified.
func (a *Axis) Slice(w Window) []float64 {
	return a.values[w.Low : w.High+1]
}

// In returns a copy of the axis expressed in unit.
func (a *Axis) In(unit Unit) (*Axis, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownUnit, unit)
	}
	if unit == a.unit {
		return a, nil
	}

	factor, _ := Convert(1, a.unit, unit)
	out := make([]float64, len(a.values))
	for i, v := range a.values {
		out[i] = v * factor
	}

	return &Axis{values: out, unit: unit}, nil
}

// Full returns the window covering the whole axis.
func (a *Axis) Full() Window {
	return Window{
		Low:            0,
		High:           len(a.values) - 1,
		LowWavelength:  a.values[0],
		HighWavelength: a.values[len(a.values)-1],
	}
}

// Span returns the inclusive index range whose wavelengths fall within
// [low, high], with low and high given in unit. It fails with *RangeError when
// low >= high or no sample falls inside the window.
func (a *Axis) Span(low, high float64, unit Unit) (Window, error) {
	if !unit.Valid() {
		return Window{}, fmt.Errorf("%w: %v", ErrUnknownUnit, unit)
	}
	if math.IsNaN(low) || math.IsNaN(high) || low >= high {
		return Window{}, &RangeError{Low: low, High: high, Unit: unit, Reason: "low must be below high"}
	}

	lo, _ := Convert(low, unit, a.unit)
	hi, _ := Convert(high, unit, a.unit)

	// Relative slack absorbs unit-conversion rounding at the window edges.
	slack := 1e-9 * math.Max(math.Abs(lo), math.Abs(hi))
	first := sort.SearchFloat64s(a.values, lo-slack)
	last := sort.Search(len(a.values), func(i int) bool { return a.values[i] > hi+slack }) - 1

	if first > last {
		return Window{}, &RangeError{Low: low, High: high, Unit: unit, Reason: "no samples inside window"}
	}

	return Window{
		Low:            first,
		High:           last,
		LowWavelength:  a.values[first],
		HighWavelength: a.values[last],
	}, nil
}

// ResolveWindow is Span with the additional requirement that the window holds
// at least MinWindowSamples samples.
func (a *Axis) ResolveWindow(low, high float64, unit Unit) (Window, error) {
	w, err := a.Span(low, high, unit)
	if err != nil {
		return Window{}, err
	}

	if w.Len() < MinWindowSamples {
		return Window{}, &RangeError{
			Low: low, High: high, Unit: unit, Samples: w.Len(),
			Reason: fmt.Sprintf("need at least %d samples", MinWindowSamples),
		}
	}

	return w, nil
}

// NearestIndex returns the index of the wavelength closest to target, given
// in unit. Ties resolve to the lower index.
func (a *Axis) NearestIndex(target float64, unit Unit) (int, error) {
	if !unit.Valid() {
		return 0, fmt.Errorf("%w: %v", ErrUnknownUnit, unit)
	}
	if math.IsNaN(target) {
		return 0, &RangeError{Low: target, High: target, Unit: unit, Reason: "target is NaN"}
	}

	t, _ := Convert(target, unit, a.unit)
	i := sort.SearchFloat64s(a.values, t)

	switch {
	case i == 0:
		return 0, nil
	case i == len(a.values):
		return len(a.values) - 1, nil
	}

	if t-a.values[i-1] <= a.values[i]-t {
		return i - 1, nil
	}

	return i, nil
}

// Spacing returns the distance between sample i and i+1.
func (a *Axis) Spacing(i int) (float64, error) {
	if i < 0 || i+1 >= len(a.values) {
		return 0, fmt.Errorf("%w: spacing at %d", ErrIndexOutOfAxis, i)
	}

	return a.values[i+1] - a.values[i], nil
}
