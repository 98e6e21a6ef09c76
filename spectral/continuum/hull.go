package continuum

import (
	"github.com/cwbudde/algo-spectral/dsp/interp"
)

// convexHull fills continuum with the upper convex hull of (wvl, obs).
// offset is the axis index of wvl[0].
func convexHull(continuum, wvl, obs []float64, offset int) (Anchor, Anchor, error) {
	n := len(wvl)
	low := Anchor{Index: offset, Wavelength: wvl[0], Value: obs[0]}
	high := Anchor{Index: offset + n - 1, Wavelength: wvl[n-1], Value: obs[n-1]}
	if n < 2 {
		return low, high, &DegenerateError{Low: low, High: high, Index: -1, Reason: "anchors share a wavelength"}
	}

	hull := upperHull(wvl, obs)
	hx := make([]float64, len(hull))
	hy := make([]float64, len(hull))
	for i, k := range hull {
		hx[i], hy[i] = wvl[k], obs[k]
	}

	p, err := interp.NewPolyline(hx, hy)
	if err != nil {
		return low, high, &DegenerateError{Low: low, High: high, Index: -1, Reason: err.Error()}
	}
	for i, x := range wvl {
		continuum[i] = p.At(x)
	}

	return low, high, nil
}

// upperHull returns the indices of the upper convex hull of points with
// increasing x (Andrew's monotone chain). Collinear points are dropped.
func upperHull(x, y []float64) []int {
	hull := make([]int, 0, len(x))
	for i := range x {
		for len(hull) >= 2 {
			a, b := hull[len(hull)-2], hull[len(hull)-1]
			// Pop b unless it lies strictly above the chord a -> i.
			cross := (x[b]-x[a])*(y[i]-y[a]) - (y[b]-y[a])*(x[i]-x[a])
			if cross < 0 {
				break
			}
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	return hull
}
