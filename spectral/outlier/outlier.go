package outlier

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-spectral/dsp/interp"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

const (
	// DefaultThreshold is the default deviation limit in robust standard deviations.
	DefaultThreshold = 3.5
	// MinAutoWidth is the smallest automatically chosen window width.
	MinAutoWidth = 5

	madScale = 1.4826
	// Deviations below this fraction of the local level are never flagged,
	// so flat windows do not flag rounding noise.
	relFloor = 1e-12
	// maxPasses bounds the repeated detection in RemoveTo.
	maxPasses = 16
)

// Config controls outlier detection.
type Config struct {
	// WindowWidth is the odd number of samples per local window (>= 3).
	// Zero selects 10% of the spectrum length, at least MinAutoWidth.
	WindowWidth int
	// Threshold is the deviation limit as a multiple of the robust spread.
	Threshold float64
}

// DefaultConfig returns an automatic window width and DefaultThreshold.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold}
}

// Validate checks the configuration independently of any spectrum.
func (c Config) Validate() error {
	if c.WindowWidth < 0 || (c.WindowWidth != 0 && (c.WindowWidth < 3 || c.WindowWidth%2 == 0)) {
		return fmt.Errorf("%w: window width must be 0 or odd >= 3: %d", ErrInvalidConfig, c.WindowWidth)
	}
	if !(c.Threshold > 0) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("%w: threshold must be positive and finite: %g", ErrInvalidConfig, c.Threshold)
	}

	return nil
}

// Width returns the window width used for a spectrum of n samples. Widths
// larger than the spectrum shrink to the largest odd count that fits.
func (c Config) Width(n int) int {
	w := c.WindowWidth
	if w == 0 {
		w = max(core.RoundToOdd(0.1*float64(n)), MinAutoWidth)
	}

	return min(w, core.LargestOddAtMost(n))
}

// Result is the cleaned spectrum and the replacement mask.
type Result struct {
	Values []float64
	// Mask is true where a sample was replaced.
	Mask     []bool
	Replaced int
}

// Remove flags and replaces outliers in spectrum. The input is not modified.
func Remove(axis *wavelength.Axis, spectrum []float64, cfg Config) (Result, error) {
	if axis.Len() != len(spectrum) {
		return Result{}, fmt.Errorf("%w: axis=%d spectrum=%d", ErrLengthMismatch, axis.Len(), len(spectrum))
	}

	res := Result{
		Values: make([]float64, len(spectrum)),
		Mask:   make([]bool, len(spectrum)),
	}
	if err := RemoveTo(res.Values, res.Mask, axis, spectrum, cfg); err != nil {
		return Result{}, err
	}
	res.Replaced = countTrue(res.Mask)

	return res, nil
}

// RemoveTo is Remove writing into caller-provided buffers, which must match
// the spectrum length. dst may alias spectrum. On error the contents of dst
// and mask are unspecified.
func RemoveTo(dst []float64, mask []bool, axis *wavelength.Axis, spectrum []float64, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	n := len(spectrum)
	if axis.Len() != n || len(dst) != n || len(mask) != n {
		return fmt.Errorf("%w: axis=%d spectrum=%d dst=%d mask=%d",
			ErrLengthMismatch, axis.Len(), n, len(dst), len(mask))
	}
	if n == 0 {
		return nil
	}

	w := cfg.Width(n)
	half := w / 2
	scratch := make([]float64, 0, w)
	flags := make([]bool, n)
	wvl := axis.Slice(axis.Full())

	copy(dst, spectrum)
	clear(mask)

	// Replacing a spike can expose a neighbour its spread hid. Detection
	// repeats on the filled values until a pass flags nothing.
	for range maxPasses {
		found, err := detect(flags, dst, half, cfg.Threshold, &scratch)
		if err != nil || found == 0 {
			return err
		}

		// A window made of flagged samples only has nothing to interpolate from.
		for i := range n {
			lo, hi := windowBounds(i, half, n)
			if allTrue(flags[lo : hi+1]) {
				return newWindowError(i, lo, hi, dst)
			}
		}

		for i, f := range flags {
			mask[i] = mask[i] || f
		}
		if err := interp.FillGaps(wvl, dst, flags); err != nil {
			return err
		}
	}

	return nil
}

// detect flags the samples of x that deviate from their local median by more
// than threshold robust spreads. Non-finite samples are always flagged.
func detect(flags []bool, x []float64, half int, threshold float64, scratch *[]float64) (int, error) {
	n := len(x)
	found := 0
	for i := range x {
		lo, hi := windowBounds(i, half, n)
		med, spread, ok := robustStats(x[lo:hi+1], scratch)
		if !ok {
			return 0, newWindowError(i, lo, hi, x)
		}

		v := x[i]
		if !core.IsFinite(v) {
			flags[i] = true
			found++
			continue
		}

		dev := math.Abs(v - med)
		floor := relFloor * math.Max(1, math.Abs(med))
		flags[i] = dev > threshold*spread && dev > floor
		if flags[i] {
			found++
		}
	}

	return found, nil
}

// windowBounds returns the inclusive bounds of the w = 2*half+1 window around
// i, shifted inward at the edges.
func windowBounds(i, half, n int) (int, int) {
	lo := core.ClampInt(i-half, 0, n-1-2*half)
	return lo, lo + 2*half
}

// robustStats returns the median and scaled MAD of the finite values in x.
func robustStats(x []float64, scratch *[]float64) (float64, float64, bool) {
	s := (*scratch)[:0]
	for _, v := range x {
		if core.IsFinite(v) {
			s = append(s, v)
		}
	}
	*scratch = s
	if len(s) == 0 {
		return 0, 0, false
	}

	med := median(s)
	for i, v := range s {
		s[i] = math.Abs(v - med)
	}

	return med, madScale * median(s), true
}

// median sorts x in place and returns its median.
func median(x []float64) float64 {
	sort.Float64s(x)
	m := len(x) / 2
	if len(x)%2 == 1 {
		return x[m]
	}

	return 0.5 * (x[m-1] + x[m])
}

func newWindowError(center, lo, hi int, spectrum []float64) *WindowError {
	vals := make([]float64, hi-lo+1)
	copy(vals, spectrum[lo:hi+1])

	return &WindowError{Center: center, Low: lo, High: hi, Values: vals}
}

func allTrue(mask []bool) bool {
	for _, m := range mask {
		if !m {
			return false
		}
	}

	return true
}

func countTrue(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}

	return n
}
