package testutil

import (
	"math"
	"math/rand"
)

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// GaussianDip returns 1 - depth*exp(-(λ-center)²/(2·width²)) sampled at wvl.
func GaussianDip(wvl []float64, center, depth, width float64) []float64 {
	out := make([]float64, len(wvl))
	for i, w := range wvl {
		d := w - center
		out[i] = 1 - depth*math.Exp(-d*d/(2*width*width))
	}
	return out
}

// SlopedDip multiplies a Gaussian dip by a linear continuum
// offset + slope·(λ-wvl[0]).
func SlopedDip(wvl []float64, center, depth, width, offset, slope float64) []float64 {
	out := GaussianDip(wvl, center, depth, width)
	for i, w := range wvl {
		out[i] *= offset + slope*(w-wvl[0])
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// AddInPlace adds b to a element-wise.
func AddInPlace(a, b []float64) {
	for i := range a {
		a[i] += b[i]
	}
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}

// SyntheticCube fills a rows×cols cube (band fastest) with sloped Gaussian
// dips whose center, depth and continuum vary smoothly per pixel, plus small
// deterministic noise. Every pixel differs, so order bugs surface in
// comparisons.
func SyntheticCube(wvl []float64, rows, cols int, seed int64) []float64 {
	n := len(wvl)
	out := make([]float64, 0, rows*cols*n)
	span := wvl[n-1] - wvl[0]
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			center := wvl[0] + span*(0.4+0.2*float64(r*cols+c)/float64(rows*cols))
			depth := 0.1 + 0.4*float64((r+2*c)%7)/7
			spec := SlopedDip(wvl, center, depth, span/10, 0.3+0.05*float64(c), 1e-4*float64(r))
			AddInPlace(spec, DeterministicNoise(seed+int64(r*cols+c), 0.002, n))
			out = append(out, spec...)
		}
	}
	return out
}
