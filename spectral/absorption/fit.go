package absorption

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"
)

// DefaultDegree is the polynomial degree used when none is specified.
const DefaultDegree = 2

// Feature is a fitted absorption band.
type Feature struct {
	Window wavelength.Window
	Unit   wavelength.Unit
	Poly   Polynomial
	// Center is the band center wavelength in Unit.
	Center float64
	// Depth is 1 − Poly.Eval(Center).
	Depth float64
	// IBD is the integrated band depth in Unit.
	IBD float64
	// RSquared is the coefficient of determination of the fit.
	RSquared float64
	// CenterOnEdge is set when the fitted minimum lies on a window boundary,
	// so the band is not fully resolved by the window.
	CenterOnEdge bool
}

// Fit fits a polynomial of the given degree to removed, which must be
// continuum removed over [low, high] (given in unit).
func Fit(axis *wavelength.Axis, removed []float64, low, high float64, unit wavelength.Unit, degree int) (*Feature, error) {
	f, err := Prepare(axis, low, high, unit, degree)
	if err != nil {
		return nil, err
	}
	return f.Fit(removed)
}

// Prepare resolves [low, high] (given in unit) on axis and returns a Fitter
// for it. It fails with *wavelength.RangeError when low >= high or the window
// is empty, with a degenerate *FitError when the window holds fewer than
// degree+1 samples, and with *wavelength.RangeError when it holds fewer than
// wavelength.MinWindowSamples.
func Prepare(axis *wavelength.Axis, low, high float64, unit wavelength.Unit, degree int) (*Fitter, error) {
	window, err := axis.Span(low, high, unit)
	if err != nil {
		return nil, err
	}

	f, err := NewFitter(axis, window, degree)
	if err != nil {
		return nil, err
	}
	if window.Len() < wavelength.MinWindowSamples {
		return nil, &wavelength.RangeError{
			Low: low, High: high, Unit: unit, Samples: window.Len(),
			Reason: fmt.Sprintf("need at least %d samples", wavelength.MinWindowSamples),
		}
	}

	return f, nil
}

// Fitter fits one window and degree repeatedly, for example across the
// pixels of a cube. It is safe for concurrent use.
type Fitter struct {
	axis    *wavelength.Axis
	window  wavelength.Window
	degree  int
	offset  float64
	scale   float64
	design  *mat.Dense
	weights []float64
}

// NewFitter prepares the design matrix for fits of degree over window.
func NewFitter(axis *wavelength.Axis, window wavelength.Window, degree int) (*Fitter, error) {
	n := window.Len()
	if degree < 1 || n < degree+1 {
		return nil, &FitError{
			Kind: FitDegenerate, Window: window, Degree: degree, Samples: n,
			Reason: "need degree >= 1 and at least degree+1 samples",
		}
	}

	wvl := axis.Slice(window)
	offset := 0.5 * (wvl[0] + wvl[n-1])
	scale := 0.5 * (wvl[n-1] - wvl[0])

	design := mat.NewDense(n, degree+1, nil)
	for i, w := range wvl {
		u := (w - offset) / scale
		p := 1.0
		for k := 0; k <= degree; k++ {
			design.Set(i, k, p)
			p *= u
		}
	}

	return &Fitter{
		axis:    axis,
		window:  window,
		degree:  degree,
		offset:  offset,
		scale:   scale,
		design:  design,
		weights: trapezoidWeights(wvl),
	}, nil
}

// Window returns the fitted window.
func (f *Fitter) Window() wavelength.Window {
	return f.window
}

// Degree returns the polynomial degree.
func (f *Fitter) Degree() int {
	return f.degree
}

// Fit fits the window of removed, a full-length continuum-removed spectrum.
func (f *Fitter) Fit(removed []float64) (*Feature, error) {
	if len(removed) != f.axis.Len() {
		return nil, fmt.Errorf("%w: axis=%d spectrum=%d", ErrLengthMismatch, f.axis.Len(), len(removed))
	}

	y := removed[f.window.Low : f.window.High+1]
	if ok, i := core.AllFinite(y); !ok {
		return nil, f.divergent(fmt.Sprintf("non-finite value %g at sample %d", y[i], f.window.Low+i), nil)
	}

	var qr mat.QR
	qr.Factorize(f.design)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, mat.NewVecDense(len(y), core.Clone(y))); err != nil {
		return nil, f.divergent("least-squares system is singular", err)
	}

	poly := Polynomial{
		Coeffs: mat.Col(nil, 0, &coef),
		Offset: f.offset,
		Scale:  f.scale,
	}
	if ok, _ := core.AllFinite(poly.Coeffs); !ok {
		return nil, f.divergent("non-finite coefficients", nil)
	}

	center, onEdge, err := poly.minimum(f.window.LowWavelength, f.window.HighWavelength)
	if err != nil {
		return nil, f.divergent("band center search failed", err)
	}

	feat := &Feature{
		Window:       f.window,
		Unit:         f.axis.Unit(),
		Poly:         poly,
		Center:       center,
		Depth:        1 - poly.Eval(center),
		IBD:          f.integratedDepth(y),
		RSquared:     rSquared(poly, f.axis.Slice(f.window), y),
		CenterOnEdge: onEdge,
	}
	if !core.IsFinite(feat.Depth) || !core.IsFinite(feat.IBD) {
		return nil, f.divergent("non-finite band parameters", nil)
	}

	return feat, nil
}

func (f *Fitter) divergent(reason string, err error) *FitError {
	return &FitError{
		Kind: FitDivergent, Window: f.window, Degree: f.degree, Samples: f.window.Len(),
		Reason: reason, Err: err,
	}
}

// integratedDepth is the trapezoidal integral of 1 − y over the samples.
func (f *Fitter) integratedDepth(y []float64) float64 {
	d := make([]float64, len(y))
	for i, v := range y {
		d[i] = 1 - v
	}
	return vecmath.DotProduct(f.weights, d)
}

// trapezoidWeights returns w with Σ w[i]·g(x[i]) equal to the trapezoidal
// integral of g over x.
func trapezoidWeights(x []float64) []float64 {
	w := make([]float64, len(x))
	for i := 0; i+1 < len(x); i++ {
		h := 0.5 * (x[i+1] - x[i])
		w[i] += h
		w[i+1] += h
	}
	return w
}

func rSquared(p Polynomial, x, y []float64) float64 {
	mean := vecmath.Sum(y) / float64(len(y))

	var ssRes, ssTot float64
	for i, v := range y {
		r := v - p.Eval(x[i])
		ssRes += r * r
		ssTot += (v - mean) * (v - mean)
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// ThreeBandDepth returns the depth of the center band below the straight
// line through the two shoulders: the shoulder line evaluated at wb, minus rb.
func ThreeBandDepth(ra, rb, rc, wa, wb, wc float64) (float64, error) {
	if wa == wc || math.IsNaN(wa) || math.IsNaN(wc) {
		return 0, fmt.Errorf("%w: %g and %g", ErrShoulders, wa, wc)
	}
	return (rc-ra)/(wc-wa)*(wb-wa) + ra - rb, nil
}

// ThreeBandDepthTo applies ThreeBandDepth element-wise, for example to three
// band images of a cube.
func ThreeBandDepthTo(dst, ra, rb, rc []float64, wa, wb, wc float64) error {
	if len(ra) != len(dst) || len(rb) != len(dst) || len(rc) != len(dst) {
		return fmt.Errorf("%w: dst=%d ra=%d rb=%d rc=%d", ErrLengthMismatch, len(dst), len(ra), len(rb), len(rc))
	}
	if wa == wc || math.IsNaN(wa) || math.IsNaN(wc) {
		return fmt.Errorf("%w: %g and %g", ErrShoulders, wa, wc)
	}

	slope := (wb - wa) / (wc - wa)
	for i := range dst {
		dst[i] = (rc[i]-ra[i])*slope + ra[i] - rb[i]
	}
	return nil
}
