package pipeline

import (
	"context"

	"github.com/cwbudde/algo-spectral/spectral/absorption"
	"github.com/cwbudde/algo-spectral/spectral/continuum"
	"github.com/cwbudde/algo-spectral/spectral/outlier"
	"github.com/cwbudde/algo-spectral/spectral/smooth"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

// Pipeline is the set of operations shared by Series, Cube and Streaming.
// Each stage replaces the held data with its output.
type Pipeline interface {
	Axis() *wavelength.Axis
	RemoveOutliers(ctx context.Context, cfg outlier.Config) (Report, error)
	ReduceNoise(ctx context.Context, cfg smooth.Config) (Report, error)
	RemoveContinuum(ctx context.Context, cfg continuum.Config, low, high float64, unit wavelength.Unit) (Report, error)
	// FitAbsorption fits an absorption band in [low, high] for every pixel.
	// A Series yields a 1×1 map.
	FitAbsorption(ctx context.Context, low, high float64, unit wavelength.Unit, degree int) (*absorption.Map, error)
}

var (
	_ Pipeline = (*Series)(nil)
	_ Pipeline = (*Cube)(nil)
	_ Pipeline = (*Streaming)(nil)
)
