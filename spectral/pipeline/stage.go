package pipeline

import (
	"fmt"

	"github.com/cwbudde/algo-spectral/spectral/continuum"
	"github.com/cwbudde/algo-spectral/spectral/outlier"
	"github.com/cwbudde/algo-spectral/spectral/smooth"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

// Stage is the processing state of held data: the last stage applied.
type Stage int

const (
	Raw Stage = iota
	OutliersRemoved
	Filtered
	ContinuumRemoved
	// AbsorptionFit labels errors raised while fitting.
	AbsorptionFit
)

func (s Stage) String() string {
	switch s {
	case Raw:
		return "raw"
	case OutliersRemoved:
		return "outlier removal"
	case Filtered:
		return "noise reduction"
	case ContinuumRemoved:
		return "continuum removal"
	case AbsorptionFit:
		return "absorption fit"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Op is one configured pipeline stage.
type Op struct {
	stage     Stage
	outlier   outlier.Config
	smooth    smooth.Config
	continuum continuum.Config
	low, high float64
	unit      wavelength.Unit
}

// OutlierRemoval returns the outlier removal stage.
func OutlierRemoval(cfg outlier.Config) Op {
	return Op{stage: OutliersRemoved, outlier: cfg}
}

// NoiseReduction returns the noise filter stage.
func NoiseReduction(cfg smooth.Config) Op {
	return Op{stage: Filtered, smooth: cfg}
}

// ContinuumRemoval returns the continuum removal stage over [low, high],
// given in unit.
func ContinuumRemoval(cfg continuum.Config, low, high float64, unit wavelength.Unit) Op {
	return Op{stage: ContinuumRemoved, continuum: cfg, low: low, high: high, unit: unit}
}

// Stage returns the stage the op produces.
func (o Op) Stage() Stage {
	return o.stage
}

// Report summarizes a completed pipeline operation.
type Report struct {
	// Stage is the last stage applied.
	Stage  Stage
	Pixels int
	// Replaced counts samples replaced by outlier removal.
	Replaced int
	// Window is the continuum window, when continuum removal ran.
	Window wavelength.Window
	// Chunks and RunID are set by Streaming.
	Chunks int
	RunID  string
}

// covers reports whether any recorded continuum window contains w.
func covers(windows []wavelength.Window, w wavelength.Window) bool {
	for _, cw := range windows {
		if cw.Contains(w) {
			return true
		}
	}
	return false
}
