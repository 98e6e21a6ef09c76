// Package polyroot provides polynomial root-finding used to locate the
// critical points of fitted band polynomials.
package polyroot

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrDegeneratePolynomial is returned when a polynomial has degenerate
// coefficients (leading coefficient zero, convergence failure, etc.).
var ErrDegeneratePolynomial = errors.New("polyroot: degenerate polynomial")

const (
	// RealTol is the relative tolerance under which a complex root counts as real.
	RealTol = 1e-7
	// LeadTol is the magnitude, relative to the largest coefficient, below
	// which high-order coefficients are dropped before root finding.
	LeadTol = 1e-12
)

// DurandKerner finds all roots of a polynomial using the Durand-Kerner
// (Weierstrass) simultaneous iteration method. Coefficients are in descending
// power order: coeff[0]*z^n + coeff[1]*z^(n-1) + ... + coeff[n].
//
//nolint:cyclop
func DurandKerner(coeff []complex128) ([]complex128, error) {
	if len(coeff) < 2 {
		return nil, ErrDegeneratePolynomial
	}

	lead := coeff[0]
	if lead == 0 {
		return nil, ErrDegeneratePolynomial
	}

	n := len(coeff) - 1

	norm := make([]complex128, len(coeff))
	for i := range coeff {
		norm[i] = coeff[i] / lead
	}

	radius := 0.0
	for i := 1; i <= n; i++ {
		if r := cmplx.Abs(norm[i]); r > radius {
			radius = r
		}
	}

	if radius < 1 {
		radius = 1
	}

	roots := make([]complex128, n)
	for i := range n {
		angle := 2*math.Pi*float64(i)/float64(n) + 0.3
		r := radius * (1 + 0.1*float64(i)/float64(n))
		roots[i] = complex(r*math.Cos(angle), r*math.Sin(angle))
	}

	const (
		maxIter = 500
		tol     = 1e-12
	)

	for range maxIter {
		maxDelta := 0.0

		for i := range n {
			den := complex(1, 0)

			for j := range n {
				if i == j {
					continue
				}

				den *= roots[i] - roots[j]
			}

			if cmplx.Abs(den) == 0 {
				roots[i] += complex(1e-10, 1e-10)
				continue
			}

			f := PolyEval(norm, roots[i])
			delta := f / den

			roots[i] -= delta
			if d := cmplx.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}

		if maxDelta < tol {
			return roots, nil
		}
	}

	maxResidual := 0.0

	for _, r := range roots {
		res := cmplx.Abs(PolyEval(norm, r))
		if res > maxResidual {
			maxResidual = res
		}
	}

	if maxResidual < 1e-6 {
		return roots, nil
	}

	return nil, ErrDegeneratePolynomial
}

// PolyEval evaluates a polynomial at x using Horner's method. Coefficients
// are in descending power order: coeff[0]*x^n + ... + coeff[n].
func PolyEval(coeff []complex128, x complex128) complex128 {
	v := coeff[0]
	for i := 1; i < len(coeff); i++ {
		v = v*x + coeff[i]
	}

	return v
}

// EvalAsc evaluates a real polynomial with coefficients in ascending power
// order (c[0] + c[1]*x + ...) using Horner's method.
func EvalAsc(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}

	return v
}

// Derivative returns the ascending coefficients of the first derivative of
// the ascending polynomial c. The derivative of a constant is [0].
func Derivative(c []float64) []float64 {
	if len(c) <= 1 {
		return []float64{0}
	}

	d := make([]float64, len(c)-1)
	for i := 1; i < len(c); i++ {
		d[i-1] = float64(i) * c[i]
	}

	return d
}

// RealRoots returns the real roots of the ascending polynomial c in increasing
// order. Trailing (highest power) coefficients that are negligible next to
// the largest one (see LeadTol) are dropped first; a
// polynomial that reduces to a non-zero constant has no roots. Linear
// polynomials are solved directly.
func RealRoots(c []float64) ([]float64, error) {
	scale := 0.0
	for _, v := range c {
		scale = math.Max(scale, math.Abs(v))
	}

	deg := len(c) - 1
	for deg >= 0 && math.Abs(c[deg]) <= LeadTol*scale {
		deg--
	}

	switch {
	case deg < 0:
		return nil, ErrDegeneratePolynomial
	case deg == 0:
		return nil, nil
	case deg == 1:
		return []float64{-c[0] / c[1]}, nil
	}

	desc := make([]complex128, deg+1)
	for i := 0; i <= deg; i++ {
		desc[i] = complex(c[deg-i], 0)
	}

	roots, err := DurandKerner(desc)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(roots))
	for _, r := range roots {
		if math.Abs(imag(r)) <= RealTol*math.Max(1, math.Abs(real(r))) {
			out = append(out, real(r))
		}
	}

	sortFloats(out)

	return out, nil
}

// sortFloats is an insertion sort; root sets are tiny.
func sortFloats(x []float64) {
	for i := 1; i < len(x); i++ {
		key := x[i]
		j := i - 1
		for j >= 0 && x[j] > key {
			x[j+1] = x[j]
			j--
		}
		x[j+1] = key
	}
}
