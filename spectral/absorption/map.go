package absorption

import (
	"fmt"

	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

// Map holds per-pixel band parameters for a rows×cols image, row-major.
// It never holds spectral data.
type Map struct {
	Rows, Cols int
	Degree     int
	Window     wavelength.Window
	Unit       wavelength.Unit
	// Offset and Scale are shared by every pixel's polynomial.
	Offset, Scale float64

	Center       []float64
	Depth        []float64
	IBD          []float64
	RSquared     []float64
	CenterOnEdge []bool
	// Coeffs holds Degree+1 coefficients per pixel.
	Coeffs []float64
}

// NewMap allocates a map for fits made by f.
func NewMap(rows, cols int, f *Fitter) *Map {
	n := rows * cols
	return &Map{
		Rows:         rows,
		Cols:         cols,
		Degree:       f.degree,
		Window:       f.window,
		Unit:         f.axis.Unit(),
		Offset:       f.offset,
		Scale:        f.scale,
		Center:       make([]float64, n),
		Depth:        make([]float64, n),
		IBD:          make([]float64, n),
		RSquared:     make([]float64, n),
		CenterOnEdge: make([]bool, n),
		Coeffs:       make([]float64, n*(f.degree+1)),
	}
}

// Set stores feat at (row, col). Distinct pixels may be set concurrently.
func (m *Map) Set(row, col int, feat *Feature) error {
	if err := m.check(row, col); err != nil {
		return err
	}
	if feat.Poly.Degree() != m.Degree {
		return fmt.Errorf("absorption: feature degree %d, map degree %d", feat.Poly.Degree(), m.Degree)
	}

	i := row*m.Cols + col
	m.Center[i] = feat.Center
	m.Depth[i] = feat.Depth
	m.IBD[i] = feat.IBD
	m.RSquared[i] = feat.RSquared
	m.CenterOnEdge[i] = feat.CenterOnEdge
	copy(m.Coeffs[i*(m.Degree+1):], feat.Poly.Coeffs)

	return nil
}

// Feature reconstructs the feature at (row, col).
func (m *Map) Feature(row, col int) (*Feature, error) {
	if err := m.check(row, col); err != nil {
		return nil, err
	}

	i := row*m.Cols + col
	coeffs := make([]float64, m.Degree+1)
	copy(coeffs, m.Coeffs[i*(m.Degree+1):])

	return &Feature{
		Window:       m.Window,
		Unit:         m.Unit,
		Poly:         Polynomial{Coeffs: coeffs, Offset: m.Offset, Scale: m.Scale},
		Center:       m.Center[i],
		Depth:        m.Depth[i],
		IBD:          m.IBD[i],
		RSquared:     m.RSquared[i],
		CenterOnEdge: m.CenterOnEdge[i],
	}, nil
}

func (m *Map) check(row, col int) error {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return fmt.Errorf("absorption: pixel (%d, %d) outside %dx%d map", row, col, m.Rows, m.Cols)
	}
	return nil
}
