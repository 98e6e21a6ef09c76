package conv

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// minSegment is the smallest input segment transformed at once.
const minSegment = 256

// FFTKernel convolves spectra with a fixed kernel by overlap-add: the input
// is cut into segments, each segment is convolved through the frequency
// domain and the overlapping tails are summed. It pays off for wide kernels,
// where direct convolution costs kernel width times spectrum length.
//
// An FFTKernel is safe for concurrent use; every goroutine draws its own plan
// and scratch from an internal pool.
type FFTKernel struct {
	spectrum []complex128
	taps     int
	segment  int
	size     int
	work     sync.Pool
}

type fftWork struct {
	plan *algofft.Plan[complex128]
	buf  []complex128
}

// NewFFTKernel transforms kernel once. segment is the input segment length;
// zero picks the next power of two at or above the kernel length, at least
// 256.
func NewFFTKernel(kernel []float64, segment int) (*FFTKernel, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if segment < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, segment)
	}
	if segment == 0 {
		segment = max(nextPowerOf2(len(kernel)), minSegment)
	}

	k := &FFTKernel{
		taps:    len(kernel),
		segment: segment,
		size:    nextPowerOf2(segment + len(kernel) - 1),
	}
	k.work.New = func() any {
		return &fftWork{buf: make([]complex128, k.size)}
	}

	w, err := k.get()
	if err != nil {
		return nil, err
	}
	defer k.work.Put(w)

	for i, v := range kernel {
		w.buf[i] = complex(v, 0)
	}
	k.spectrum = make([]complex128, k.size)
	if err := w.plan.Forward(k.spectrum, w.buf); err != nil {
		return nil, fmt.Errorf("conv: kernel transform: %w", err)
	}

	return k, nil
}

func (k *FFTKernel) get() (*fftWork, error) {
	w := k.work.Get().(*fftWork)
	if w.plan == nil {
		plan, err := algofft.NewPlan64(k.size)
		if err != nil {
			return nil, fmt.Errorf("conv: FFT plan of size %d: %w", k.size, err)
		}
		w.plan = plan
	}
	clear(w.buf)
	return w, nil
}

// Taps returns the kernel length.
func (k *FFTKernel) Taps() int {
	return k.taps
}

// Segment returns the input segment length.
func (k *FFTKernel) Segment() int {
	return k.segment
}

// Size returns the transform length.
func (k *FFTKernel) Size() int {
	return k.size
}

// Full returns the full linear convolution of x with the kernel,
// len(x)+Taps()-1 samples.
func (k *FFTKernel) Full(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	w, err := k.get()
	if err != nil {
		return nil, err
	}
	defer k.work.Put(w)

	out := make([]float64, len(x)+k.taps-1)
	for start := 0; start < len(x); start += k.segment {
		seg := x[start:min(start+k.segment, len(x))]

		clear(w.buf)
		for i, v := range seg {
			w.buf[i] = complex(v, 0)
		}
		if err := w.plan.Forward(w.buf, w.buf); err != nil {
			return nil, fmt.Errorf("conv: segment at %d: %w", start, err)
		}
		for i, s := range k.spectrum {
			w.buf[i] *= s
		}
		if err := w.plan.Inverse(w.buf, w.buf); err != nil {
			return nil, fmt.Errorf("conv: segment at %d: %w", start, err)
		}

		tail := out[start:min(start+len(seg)+k.taps-1, len(out))]
		for i := range tail {
			tail[i] += real(w.buf[i])
		}
	}

	return out, nil
}

// FFTConvolve is the one-shot form of FFTKernel.Full.
func FFTConvolve(x, kernel []float64) ([]float64, error) {
	k, err := NewFFTKernel(kernel, 0)
	if err != nil {
		return nil, err
	}
	return k.Full(x)
}
