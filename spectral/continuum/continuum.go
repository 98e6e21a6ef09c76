package continuum

import (
	"fmt"

	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-spectral/dsp/interp"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
	"github.com/cwbudde/algo-vecmath"
)

// Method selects the continuum model.
type Method int

const (
	// DoubleLineMethod draws a straight line between two boundary anchors.
	DoubleLineMethod Method = iota
	// ConvexHullMethod uses the upper convex hull of the window.
	ConvexHullMethod
)

func (m Method) String() string {
	switch m {
	case DoubleLineMethod:
		return "double_line"
	case ConvexHullMethod:
		return "convex_hull"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// DefaultSearchRadius is the anchor search radius used by DefaultConfig.
const DefaultSearchRadius = 2

// Config selects a continuum method.
type Config struct {
	Method Method
	// SearchRadius is how many samples inward from each window boundary the
	// double-line method looks for a local maximum. Zero pins the anchors to
	// the boundaries.
	SearchRadius int
}

// DefaultConfig returns a double-line continuum with DefaultSearchRadius.
func DefaultConfig() Config {
	return Config{Method: DoubleLineMethod, SearchRadius: DefaultSearchRadius}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Method != DoubleLineMethod && c.Method != ConvexHullMethod {
		return fmt.Errorf("%w: unknown method %v", ErrInvalidConfig, c.Method)
	}
	if c.SearchRadius < 0 {
		return fmt.Errorf("%w: search radius must be >= 0: %d", ErrInvalidConfig, c.SearchRadius)
	}
	return nil
}

// Anchor is a continuum tie point.
type Anchor struct {
	Index      int
	Wavelength float64
	Value      float64
}

// Result is a continuum-removed spectrum.
type Result struct {
	// Values has the full spectrum length; only Window is normalized.
	Values []float64
	// Continuum holds the continuum over Window.
	Continuum []float64
	Low, High Anchor
	Window    wavelength.Window
}

// Remove divides spectrum by its continuum over window. The input is not
// modified.
func Remove(axis *wavelength.Axis, spectrum []float64, window wavelength.Window, cfg Config) (Result, error) {
	res := Result{
		Values:    make([]float64, len(spectrum)),
		Continuum: make([]float64, max(window.Len(), 0)),
		Window:    window,
	}

	low, high, err := RemoveTo(res.Values, res.Continuum, axis, spectrum, window, cfg)
	if err != nil {
		return Result{}, err
	}
	res.Low, res.High = low, high

	return res, nil
}

// RemoveTo is Remove writing into dst (full spectrum length, may alias
// spectrum) and continuum (window length, or nil to use scratch space).
func RemoveTo(dst, continuum []float64, axis *wavelength.Axis, spectrum []float64,
	window wavelength.Window, cfg Config,
) (Anchor, Anchor, error) {
	if err := cfg.Validate(); err != nil {
		return Anchor{}, Anchor{}, err
	}
	if axis.Len() != len(spectrum) || len(dst) != len(spectrum) {
		return Anchor{}, Anchor{}, fmt.Errorf("%w: axis=%d spectrum=%d dst=%d",
			ErrLengthMismatch, axis.Len(), len(spectrum), len(dst))
	}
	if window.Low < 0 || window.High >= axis.Len() || window.Low > window.High {
		return Anchor{}, Anchor{}, fmt.Errorf("%w: [%d, %d] on %d samples",
			ErrWindowOutOfAxis, window.Low, window.High, axis.Len())
	}
	if continuum == nil {
		continuum = make([]float64, window.Len())
	}
	if len(continuum) != window.Len() {
		return Anchor{}, Anchor{}, fmt.Errorf("%w: continuum=%d window=%d",
			ErrLengthMismatch, len(continuum), window.Len())
	}

	wvl := axis.Slice(window)
	obs := spectrum[window.Low : window.High+1]

	var low, high Anchor
	var err error
	switch cfg.Method {
	case DoubleLineMethod:
		low, high, err = doubleLine(continuum, axis, spectrum, window, cfg.SearchRadius)
	case ConvexHullMethod:
		low, high, err = convexHull(continuum, wvl, obs, window.Low)
	}
	if err != nil {
		return low, high, err
	}

	for i, c := range continuum {
		if !(c > 0) || !core.IsFinite(c) {
			return low, high, &DegenerateError{
				Low: low, High: high, Index: window.Low + i, Value: c,
				Reason: "continuum not positive",
			}
		}
	}

	copy(dst, spectrum)

	// observed / continuum as a product with the reciprocal.
	recip := make([]float64, len(continuum))
	for i, c := range continuum {
		recip[i] = 1 / c
	}
	vecmath.MulBlock(dst[window.Low:window.High+1], obs, recip)

	// Anchors lie on the continuum and normalize to exactly 1.
	dst[low.Index] = 1
	dst[high.Index] = 1

	return low, high, nil
}

func doubleLine(continuum []float64, axis *wavelength.Axis, spectrum []float64,
	window wavelength.Window, radius int,
) (Anchor, Anchor, error) {
	lowIdx := findAnchor(spectrum, window.Low, min(window.Low+radius, window.High))
	highIdx := findAnchor(spectrum, window.High, max(window.High-radius, window.Low))

	low := Anchor{Index: lowIdx, Wavelength: axis.At(lowIdx), Value: spectrum[lowIdx]}
	high := Anchor{Index: highIdx, Wavelength: axis.At(highIdx), Value: spectrum[highIdx]}

	line, err := interp.NewLine(low.Wavelength, low.Value, high.Wavelength, high.Value)
	if err != nil {
		return low, high, &DegenerateError{Low: low, High: high, Index: -1, Reason: "anchors share a wavelength"}
	}
	line.EvalTo(continuum, axis.Slice(window))

	return low, high, nil
}

// findAnchor scans from boundary toward limit (inclusive) and returns the
// highest local maximum, preferring the one nearest the boundary on ties.
// Neighbours outside the spectrum do not disqualify a sample. Without any
// local maximum the boundary itself is returned.
func findAnchor(spectrum []float64, boundary, limit int) int {
	step := 1
	if limit < boundary {
		step = -1
	}

	best := -1
	for i := boundary; ; i += step {
		if isLocalMax(spectrum, i) && (best < 0 || spectrum[i] > spectrum[best]) {
			best = i
		}
		if i == limit {
			break
		}
	}

	if best < 0 {
		return boundary
	}
	return best
}

func isLocalMax(x []float64, i int) bool {
	v := x[i]
	if !core.IsFinite(v) {
		return false
	}
	if i > 0 && !(v >= x[i-1]) {
		return false
	}
	if i < len(x)-1 && !(v >= x[i+1]) {
		return false
	}
	return true
}
