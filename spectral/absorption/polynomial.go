package absorption

import (
	"github.com/cwbudde/algo-spectral/internal/polyroot"
)

// Polynomial is p(λ) = Σ Coeffs[k]·u^k with u = (λ − Offset) / Scale.
// Fitting in the scaled variable keeps the normal equations well conditioned.
type Polynomial struct {
	Coeffs []float64
	Offset float64
	Scale  float64
}

// Degree returns the polynomial degree.
func (p Polynomial) Degree() int {
	return len(p.Coeffs) - 1
}

// Eval evaluates the polynomial at wavelength lambda.
func (p Polynomial) Eval(lambda float64) float64 {
	return polyroot.EvalAsc(p.Coeffs, p.u(lambda))
}

func (p Polynomial) u(lambda float64) float64 {
	return (lambda - p.Offset) / p.Scale
}

func (p Polynomial) lambda(u float64) float64 {
	return p.Offset + u*p.Scale
}

// minimum returns the wavelength of the smallest value of p on [lo, hi] and
// whether it sits on an interval end.
func (p Polynomial) minimum(lo, hi float64) (float64, bool, error) {
	ulo, uhi := p.u(lo), p.u(hi)
	c := p.Coeffs

	var interior []float64
	if len(c) == 3 {
		if c[2] > 0 {
			interior = append(interior, -c[1]/(2*c[2]))
		}
	} else if d := polyroot.Derivative(c); len(c) > 3 && !allZero(d) {
		roots, err := polyroot.RealRoots(d)
		if err != nil {
			return 0, false, err
		}
		interior = roots
	}

	best, bestVal, onEdge := ulo, polyroot.EvalAsc(c, ulo), true
	if v := polyroot.EvalAsc(c, uhi); v < bestVal {
		best, bestVal = uhi, v
	}
	for _, u := range interior {
		if u <= ulo || u >= uhi {
			continue
		}
		if v := polyroot.EvalAsc(c, u); v < bestVal {
			best, bestVal, onEdge = u, v, false
		}
	}

	return p.lambda(best), onEdge, nil
}

func allZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}
