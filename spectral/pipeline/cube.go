package pipeline

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-spectral/spectral/absorption"
	"github.com/cwbudde/algo-spectral/spectral/continuum"
	"github.com/cwbudde/algo-spectral/spectral/cube"
	"github.com/cwbudde/algo-spectral/spectral/outlier"
	"github.com/cwbudde/algo-spectral/spectral/smooth"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

// Option configures a Cube.
type Option func(*cubeConfig)

type cubeConfig struct {
	workers int
}

// WithWorkers bounds the number of rows processed concurrently. Values below
// 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *cubeConfig) {
		c.workers = n
	}
}

// Cube processes an in-memory cube, pixels in parallel over rows. It is not
// safe for concurrent use.
type Cube struct {
	axis    *wavelength.Axis
	data    *cube.Data
	mask    *cube.Mask
	noise   []float64
	stage   Stage
	windows []wavelength.Window
	workers int
}

// NewCube takes ownership of data, whose band count must match the axis.
func NewCube(axis *wavelength.Axis, data *cube.Data, opts ...Option) (*Cube, error) {
	if axis == nil || data == nil {
		return nil, fmt.Errorf("%w: nil axis or data", ErrAxisMismatch)
	}
	if data.Shape().Bands != axis.Len() {
		return nil, fmt.Errorf("%w: %d bands, axis has %d", ErrAxisMismatch, data.Shape().Bands, axis.Len())
	}

	cfg := cubeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = defaultWorkers()
	}

	return &Cube{axis: axis, data: data, workers: cfg.workers}, nil
}

// Axis returns the wavelength axis.
func (c *Cube) Axis() *wavelength.Axis {
	return c.axis
}

// Shape returns the cube shape.
func (c *Cube) Shape() cube.Shape {
	return c.data.Shape()
}

// Data returns the current cube. It is replaced, not modified, by later
// stages; callers must not write to it.
func (c *Cube) Data() *cube.Data {
	return c.data
}

// Mask returns the mask of the last outlier removal, or nil before it.
func (c *Cube) Mask() *cube.Mask {
	return c.mask
}

// Noise returns the rows×cols image of mean local noise from the last noise
// reduction, or nil before it.
func (c *Cube) Noise() []float64 {
	return core.Clone(c.noise)
}

// Stage returns the last stage applied.
func (c *Cube) Stage() Stage {
	return c.stage
}

// ContinuumWindows returns the windows continuum removal has run over.
func (c *Cube) ContinuumWindows() []wavelength.Window {
	return append([]wavelength.Window(nil), c.windows...)
}

// Band returns the rows×cols image at the band nearest to target (in unit).
func (c *Cube) Band(target float64, unit wavelength.Unit) ([]float64, error) {
	b, err := c.axis.NearestIndex(target, unit)
	if err != nil {
		return nil, err
	}
	return c.data.Band(b)
}

// RemoveOutliers implements Pipeline.
func (c *Cube) RemoveOutliers(ctx context.Context, cfg outlier.Config) (Report, error) {
	return c.run(ctx, OutlierRemoval(cfg))
}

// ReduceNoise implements Pipeline.
func (c *Cube) ReduceNoise(ctx context.Context, cfg smooth.Config) (Report, error) {
	return c.run(ctx, NoiseReduction(cfg))
}

// RemoveContinuum implements Pipeline.
func (c *Cube) RemoveContinuum(ctx context.Context, cfg continuum.Config, low, high float64, unit wavelength.Unit) (Report, error) {
	return c.run(ctx, ContinuumRemoval(cfg, low, high, unit))
}

// Run applies ops in order as a single pass. The held data is replaced only
// when every pixel succeeds.
func (c *Cube) Run(ctx context.Context, ops ...Op) (Report, error) {
	return c.run(ctx, ops...)
}

func (c *Cube) run(ctx context.Context, ops ...Op) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	ks, err := compileAll(c.axis, ops)
	if err != nil {
		return Report{}, err
	}

	shape := c.data.Shape()
	out, err := cube.NewData(shape)
	if err != nil {
		return Report{}, err
	}

	var mask *cube.Mask
	var maskVals []bool
	if hasStage(ks, OutliersRemoved) {
		if mask, err = cube.NewMask(shape); err != nil {
			return Report{}, err
		}
		maskVals = mask.Values()
	}
	var noise []float64
	if hasStage(ks, Filtered) {
		noise = make([]float64, shape.Pixels())
	}

	b := block{rows: shape.Rows, cols: shape.Cols, bands: shape.Bands}
	replaced, err := runKernels(ctx, ks, b, c.data.Values(), out.Values(), maskVals, noise, c.workers)
	if err != nil {
		return Report{}, err
	}

	c.data = out
	if mask != nil {
		c.mask = mask
	}
	if noise != nil {
		c.noise = noise
	}

	rep := Report{Pixels: shape.Pixels(), Replaced: replaced}
	for _, k := range ks {
		c.stage = k.op.stage
		if k.op.stage == ContinuumRemoved {
			c.windows = append(c.windows, k.window)
			rep.Window = k.window
		}
	}
	rep.Stage = c.stage

	return rep, nil
}

// FitAbsorption implements Pipeline.
func (c *Cube) FitAbsorption(ctx context.Context, low, high float64, unit wavelength.Unit, degree int) (*absorption.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := newFitter(c.axis, c.windows, low, high, unit, degree)
	if err != nil {
		return nil, err
	}

	shape := c.data.Shape()
	m := absorption.NewMap(shape.Rows, shape.Cols, f.fit)
	b := block{rows: shape.Rows, cols: shape.Cols, bands: shape.Bands}
	if err := fitKernels(ctx, f, b, c.data.Values(), m, c.workers); err != nil {
		return nil, err
	}

	return m, nil
}
