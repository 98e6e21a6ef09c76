package pipeline

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/cwbudde/algo-spectral/spectral/absorption"
	"github.com/cwbudde/algo-spectral/spectral/continuum"
	"github.com/cwbudde/algo-spectral/spectral/outlier"
	"github.com/cwbudde/algo-spectral/spectral/smooth"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"
)

// kernel is an Op validated against an axis. It is shared read-only by all
// workers.
type kernel struct {
	op       Op
	axis     *wavelength.Axis
	smoother *smooth.Smoother
	window   wavelength.Window
}

func compile(axis *wavelength.Axis, op Op) (*kernel, error) {
	k := &kernel{op: op, axis: axis}

	switch op.stage {
	case OutliersRemoved:
		if err := op.outlier.Validate(); err != nil {
			return nil, err
		}
	case Filtered:
		s, err := smooth.New(op.smooth, axis.Len())
		if err != nil {
			return nil, err
		}
		k.smoother = s
	case ContinuumRemoved:
		if err := op.continuum.Validate(); err != nil {
			return nil, err
		}
		w, err := axis.ResolveWindow(op.low, op.high, op.unit)
		if err != nil {
			return nil, err
		}
		k.window = w
	default:
		return nil, fmt.Errorf("pipeline: unknown stage %v", op.stage)
	}

	return k, nil
}

func compileAll(axis *wavelength.Axis, ops []Op) ([]*kernel, error) {
	if len(ops) == 0 {
		return nil, ErrNoStages
	}

	ks := make([]*kernel, len(ops))
	for i, op := range ops {
		k, err := compile(axis, op)
		if err != nil {
			return nil, fmt.Errorf("pipeline: configure %v: %w", op.stage, err)
		}
		ks[i] = k
	}
	return ks, nil
}

// pixelStats are the per-pixel diagnostics of one kernel application.
type pixelStats struct {
	replaced int
	noise    float64
}

// apply runs the kernel on one spectrum. mask receives the outlier mask and
// sigma the local noise; both must have the spectrum length for their stage.
// dst may alias src.
func (k *kernel) apply(dst, src []float64, mask []bool, sigma []float64) (pixelStats, error) {
	switch k.op.stage {
	case OutliersRemoved:
		if err := outlier.RemoveTo(dst, mask, k.axis, src, k.op.outlier); err != nil {
			return pixelStats{}, err
		}
		n := 0
		for _, m := range mask {
			if m {
				n++
			}
		}
		return pixelStats{replaced: n}, nil

	case Filtered:
		// Noise is estimated from the input, so compute it before dst
		// overwrites an aliased src.
		if err := k.smoother.Noise(sigma, src); err != nil {
			return pixelStats{}, err
		}
		if err := k.smoother.Apply(dst, src); err != nil {
			return pixelStats{}, err
		}
		return pixelStats{noise: vecmath.Sum(sigma) / float64(len(sigma))}, nil

	case ContinuumRemoved:
		_, _, err := continuum.RemoveTo(dst, nil, k.axis, src, k.window, k.op.continuum)
		return pixelStats{}, err
	}

	return pixelStats{}, fmt.Errorf("pipeline: unknown stage %v", k.op.stage)
}

// fitter fits absorption features, removing a default continuum over the fit
// window first unless the data is already continuum removed there.
type fitter struct {
	fit       *absorption.Fitter
	removeFit bool
	axis      *wavelength.Axis
}

func newFitter(axis *wavelength.Axis, windows []wavelength.Window,
	low, high float64, unit wavelength.Unit, degree int,
) (*fitter, error) {
	f, err := absorption.Prepare(axis, low, high, unit, degree)
	if err != nil {
		return nil, err
	}
	return &fitter{fit: f, axis: axis, removeFit: !covers(windows, f.Window())}, nil
}

// feature fits spectrum. scratch holds the private continuum-removed copy and
// must have the spectrum length when removal is needed.
func (f *fitter) feature(spectrum, scratch []float64) (*absorption.Feature, error) {
	if f.removeFit {
		if _, _, err := continuum.RemoveTo(scratch, nil, f.axis, spectrum, f.fit.Window(), continuum.DefaultConfig()); err != nil {
			return nil, err
		}
		spectrum = scratch
	}
	return f.fit.Fit(spectrum)
}

func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// forEachRow calls fn for rows [0, rows) on at most workers goroutines. fn
// returns the error of the first failing pixel of its row. The error of the
// lowest failing row is returned, so the reported pixel does not depend on
// scheduling. Rows above a known failure are skipped.
func forEachRow(rows, workers int, fn func(row int) error) error {
	var g errgroup.Group
	g.SetLimit(max(workers, 1))

	errs := make([]error, rows)
	var firstBad atomic.Int64
	firstBad.Store(math.MaxInt64)

	for r := 0; r < rows; r++ {
		g.Go(func() error {
			if int64(r) > firstBad.Load() {
				return nil
			}
			if err := fn(r); err != nil {
				errs[r] = err
				for {
					cur := firstBad.Load()
					if int64(r) >= cur || firstBad.CompareAndSwap(cur, int64(r)) {
						break
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// block is a contiguous run of whole rows in cube layout.
type block struct {
	firstRow   int
	rows, cols int
	bands      int
}

func (b block) pixel(buf []float64, row, col int) []float64 {
	i := (row*b.cols + col) * b.bands
	return buf[i : i+b.bands : i+b.bands]
}

// runKernels applies ks in order to every pixel of in, writing out. mask
// (nil when no outlier stage runs) receives the mask of the last outlier
// stage and noise (nil when no filter stage runs) the mean noise of the last
// filter stage per pixel. It returns the number of replaced samples.
// Failures are *PixelError with cube-global rows.
func runKernels(ctx context.Context, ks []*kernel, b block, in, out []float64,
	mask []bool, noise []float64, workers int,
) (int, error) {
	var replaced atomic.Int64

	err := forEachRow(b.rows, workers, func(r int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		sigma := make([]float64, b.bands)
		var scratchMask []bool
		if mask == nil {
			scratchMask = make([]bool, b.bands)
		}

		n := 0
		for c := 0; c < b.cols; c++ {
			src := b.pixel(in, r, c)
			dst := b.pixel(out, r, c)
			pm := scratchMask
			if mask != nil {
				i := (r*b.cols + c) * b.bands
				pm = mask[i : i+b.bands]
			}

			for j, k := range ks {
				if j > 0 {
					src = dst
				}
				st, err := k.apply(dst, src, pm, sigma)
				if err != nil {
					return &PixelError{Row: b.firstRow + r, Col: c, Stage: k.op.stage, Err: err}
				}
				switch k.op.stage {
				case OutliersRemoved:
					n += st.replaced
				case Filtered:
					if noise != nil {
						noise[r*b.cols+c] = st.noise
					}
				}
			}
		}
		replaced.Add(int64(n))

		return nil
	})

	return int(replaced.Load()), err
}

// fitKernels fits every pixel of in into m, which covers the whole cube.
func fitKernels(ctx context.Context, f *fitter, b block, in []float64, m *absorption.Map, workers int) error {
	return forEachRow(b.rows, workers, func(r int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var scratch []float64
		if f.removeFit {
			scratch = make([]float64, b.bands)
		}

		for c := 0; c < b.cols; c++ {
			feat, err := f.feature(b.pixel(in, r, c), scratch)
			if err != nil {
				return &PixelError{Row: b.firstRow + r, Col: c, Stage: AbsorptionFit, Err: err}
			}
			if err := m.Set(b.firstRow+r, c, feat); err != nil {
				return err
			}
		}
		return nil
	})
}

func hasStage(ks []*kernel, s Stage) bool {
	for _, k := range ks {
		if k.op.stage == s {
			return true
		}
	}
	return false
}
