package pipeline

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-spectral/spectral/absorption"
	"github.com/cwbudde/algo-spectral/spectral/continuum"
	"github.com/cwbudde/algo-spectral/spectral/outlier"
	"github.com/cwbudde/algo-spectral/spectral/smooth"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

// Series processes a single spectrum in memory. It is not safe for
// concurrent use.
type Series struct {
	axis    *wavelength.Axis
	values  []float64
	mask    []bool
	noise   []float64
	stage   Stage
	windows []wavelength.Window
}

// NewSeries copies spectrum, which must match the axis length.
func NewSeries(axis *wavelength.Axis, spectrum []float64) (*Series, error) {
	if axis == nil {
		return nil, fmt.Errorf("%w: nil axis", ErrAxisMismatch)
	}
	if len(spectrum) != axis.Len() {
		return nil, fmt.Errorf("%w: %d samples, axis has %d", ErrAxisMismatch, len(spectrum), axis.Len())
	}

	return &Series{axis: axis, values: core.Clone(spectrum)}, nil
}

// Axis returns the wavelength axis.
func (s *Series) Axis() *wavelength.Axis {
	return s.axis
}

// Values returns a copy of the current spectrum.
func (s *Series) Values() []float64 {
	return core.Clone(s.values)
}

// Mask returns a copy of the last outlier mask, or nil before outlier
// removal.
func (s *Series) Mask() []bool {
	if s.mask == nil {
		return nil
	}
	out := make([]bool, len(s.mask))
	copy(out, s.mask)
	return out
}

// Noise returns a copy of the local noise estimate of the last noise
// reduction, or nil before it.
func (s *Series) Noise() []float64 {
	return core.Clone(s.noise)
}

// Stage returns the last stage applied.
func (s *Series) Stage() Stage {
	return s.stage
}

// ContinuumWindows returns the windows continuum removal has run over.
func (s *Series) ContinuumWindows() []wavelength.Window {
	return append([]wavelength.Window(nil), s.windows...)
}

// OutlierRemoval replaces outliers and returns the mask of replaced samples.
func (s *Series) OutlierRemoval(cfg outlier.Config) ([]bool, error) {
	res, err := outlier.Remove(s.axis, s.values, cfg)
	if err != nil {
		return nil, err
	}

	s.values, s.mask = res.Values, res.Mask
	s.stage = OutliersRemoved

	return s.Mask(), nil
}

// NoiseReduction smooths the spectrum and returns the local noise estimate
// of the input.
func (s *Series) NoiseReduction(cfg smooth.Config) ([]float64, error) {
	sm, err := smooth.New(cfg, len(s.values))
	if err != nil {
		return nil, err
	}

	noise := make([]float64, len(s.values))
	if err := sm.Noise(noise, s.values); err != nil {
		return nil, err
	}
	out := make([]float64, len(s.values))
	if err := sm.Apply(out, s.values); err != nil {
		return nil, err
	}

	s.values, s.noise = out, noise
	s.stage = Filtered

	return s.Noise(), nil
}

// ContinuumRemoval divides the spectrum by its continuum over [low, high]
// and returns the removal result.
func (s *Series) ContinuumRemoval(cfg continuum.Config, low, high float64, unit wavelength.Unit) (continuum.Result, error) {
	if err := cfg.Validate(); err != nil {
		return continuum.Result{}, err
	}
	window, err := s.axis.ResolveWindow(low, high, unit)
	if err != nil {
		return continuum.Result{}, err
	}

	res, err := continuum.Remove(s.axis, s.values, window, cfg)
	if err != nil {
		return continuum.Result{}, err
	}

	s.values = res.Values
	s.stage = ContinuumRemoved
	s.windows = append(s.windows, window)

	out := res
	out.Values = s.Values()
	return out, nil
}

// Absorption fits an absorption band in [low, high]. The held spectrum is
// not modified.
func (s *Series) Absorption(low, high float64, unit wavelength.Unit, degree int) (*absorption.Feature, error) {
	f, err := newFitter(s.axis, s.windows, low, high, unit, degree)
	if err != nil {
		return nil, err
	}

	var scratch []float64
	if f.removeFit {
		scratch = make([]float64, len(s.values))
	}
	return f.feature(s.values, scratch)
}

// RemoveOutliers implements Pipeline.
func (s *Series) RemoveOutliers(ctx context.Context, cfg outlier.Config) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	mask, err := s.OutlierRemoval(cfg)
	if err != nil {
		return Report{}, err
	}

	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return Report{Stage: s.stage, Pixels: 1, Replaced: n}, nil
}

// ReduceNoise implements Pipeline.
func (s *Series) ReduceNoise(ctx context.Context, cfg smooth.Config) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if _, err := s.NoiseReduction(cfg); err != nil {
		return Report{}, err
	}
	return Report{Stage: s.stage, Pixels: 1}, nil
}

// RemoveContinuum implements Pipeline.
func (s *Series) RemoveContinuum(ctx context.Context, cfg continuum.Config, low, high float64, unit wavelength.Unit) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	res, err := s.ContinuumRemoval(cfg, low, high, unit)
	if err != nil {
		return Report{}, err
	}
	return Report{Stage: s.stage, Pixels: 1, Window: res.Window}, nil
}

// FitAbsorption implements Pipeline with a 1×1 map.
func (s *Series) FitAbsorption(ctx context.Context, low, high float64, unit wavelength.Unit, degree int) (*absorption.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := newFitter(s.axis, s.windows, low, high, unit, degree)
	if err != nil {
		return nil, err
	}

	var scratch []float64
	if f.removeFit {
		scratch = make([]float64, len(s.values))
	}
	feat, err := f.feature(s.values, scratch)
	if err != nil {
		return nil, err
	}

	m := absorption.NewMap(1, 1, f.fit)
	if err := m.Set(0, 0, feat); err != nil {
		return nil, err
	}
	return m, nil
}
