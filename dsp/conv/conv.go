package conv

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput       = errors.New("conv: empty input")
	ErrEmptyKernel      = errors.New("conv: empty kernel")
	ErrLengthMismatch   = errors.New("conv: buffer length mismatch")
	ErrInvalidBlockSize = errors.New("conv: invalid block size")
	ErrKernelTooLong    = errors.New("conv: kernel too long for reflect padding")
)

// directThreshold is the kernel length from which Convolve switches to FFT.
const directThreshold = 64

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
//
// This is an O(N*M) algorithm suitable for short kernels.
// For longer kernels, use FFTKernel.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)

	DirectTo(result, a, b)
	return result, nil
}

// DirectTo performs direct convolution, writing to a pre-allocated destination.
// dst must have length len(a) + len(b) - 1.
func DirectTo(dst, a, b []float64) {
	for i := range dst {
		dst[i] = 0
	}

	for i := range a {
		ai := a[i]
		row := dst[i : i+len(b)]
		for j, bj := range b {
			row[j] += ai * bj
		}
	}
}

// Convolve performs linear convolution with automatic algorithm selection.
// For short kernels (< 64 samples), uses direct convolution.
// For longer kernels, uses FFT-based overlap-add.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	// Ensure a is the longer signal for efficient processing
	if len(b) > len(a) {
		a, b = b, a
	}

	if len(b) < directThreshold {
		return Direct(a, b)
	}

	return FFTConvolve(a, b)
}

// ConvolveValid returns only the portion of the convolution where a and b
// fully overlap, of length max(len(a), len(b)) - min(len(a), len(b)) + 1.
func ConvolveValid(a, b []float64) ([]float64, error) {
	full, err := Convolve(a, b)
	if err != nil {
		return nil, err
	}

	return trimValid(full, len(a), len(b)), nil
}

// ConvolveReflect convolves signal with an odd-length kernel after mirroring
// the signal at both edges: x[-k] = x[k] and x[n-1+k] = x[n-1-k]. The result
// has the same length as signal and sample i is centered on signal[i].
//
// The kernel half-width must not exceed len(signal)-1.
func ConvolveReflect(signal, kernel []float64) ([]float64, error) {
	padded, err := ReflectPad(signal, len(kernel)/2)
	if err != nil {
		return nil, err
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	return ConvolveValid(padded, kernel)
}

// ReflectPad returns signal extended by half samples on each side, mirrored
// about the edge samples.
func ReflectPad(signal []float64, half int) ([]float64, error) {
	n := len(signal)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if half < 0 || half > n-1 {
		return nil, fmt.Errorf("%w: half-width %d, signal length %d", ErrKernelTooLong, half, n)
	}

	out := make([]float64, n+2*half)
	copy(out[half:], signal)
	for k := 1; k <= half; k++ {
		out[half-k] = signal[k]
		out[half+n-1+k] = signal[n-1-k]
	}

	return out, nil
}

// trimValid extracts the fully overlapping portion of a full convolution.
func trimValid(full []float64, lenA, lenB int) []float64 {
	if lenA >= lenB {
		return full[lenB-1 : lenA]
	}
	return full[lenA-1 : lenB]
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// Reflector applies a fixed odd-length kernel the way ConvolveReflect does.
// Kernels of directThreshold taps or more are transformed once up front.
// A Reflector is safe for concurrent use.
type Reflector struct {
	kernel []float64
	fft    *FFTKernel
}

// NewReflector copies kernel.
func NewReflector(kernel []float64) (*Reflector, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	r := &Reflector{kernel: core.Clone(kernel)}
	if len(kernel) >= directThreshold {
		fk, err := NewFFTKernel(kernel, 0)
		if err != nil {
			return nil, err
		}
		r.fft = fk
	}
	return r, nil
}

// Apply returns the reflect-padded convolution of signal, len(signal)
// samples long.
func (r *Reflector) Apply(signal []float64) ([]float64, error) {
	if r.fft == nil {
		return ConvolveReflect(signal, r.kernel)
	}

	padded, err := ReflectPad(signal, len(r.kernel)/2)
	if err != nil {
		return nil, err
	}

	full, err := r.fft.Full(padded)
	if err != nil {
		return nil, err
	}
	return trimValid(full, len(padded), r.fft.Taps()), nil
}
