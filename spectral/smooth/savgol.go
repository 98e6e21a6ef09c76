package smooth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// savitzkyGolayKernel returns the smoothing weights of a least-squares
// polynomial of the given order fitted over width samples, evaluated at the
// window center.
//
// With design matrix A[i][j] = u_i^j the weights are h = A (AᵀA)⁻¹ e₀. The
// offsets u are scaled to [-1, 1]; scaling the columns leaves h unchanged
// because the constant column is unaffected.
func savitzkyGolayKernel(width, order int) ([]float64, error) {
	half := width / 2
	cols := order + 1

	a := mat.NewDense(width, cols, nil)
	for i := 0; i < width; i++ {
		u := float64(i-half) / float64(half)
		p := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, p)
			p *= u
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	e0 := mat.NewVecDense(cols, nil)
	e0.SetVec(0, 1)

	var z mat.VecDense
	if err := z.SolveVec(&ata, e0); err != nil {
		return nil, fmt.Errorf("smooth: savitzky-golay design (width %d, order %d): %w", width, order, err)
	}

	var h mat.VecDense
	h.MulVec(a, &z)

	return mat.Col(nil, 0, &h), nil
}
