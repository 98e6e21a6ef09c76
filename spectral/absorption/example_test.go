package absorption_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectral/spectral/absorption"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

func ExampleFit() {
	values := make([]float64, 41)
	removed := make([]float64, 41)
	for i := range values {
		values[i] = 800 + 10*float64(i)
		d := values[i] - 1000
		removed[i] = 1 - 0.3*math.Exp(-d*d/(2*60*60))
	}
	axis, _ := wavelength.New(values, wavelength.Nanometer)

	feat, _ := absorption.Fit(axis, removed, 940, 1060, wavelength.Nanometer, 2)

	fmt.Printf("center %.0f nm, depth %.2f\n", feat.Center, feat.Depth)

	// Output:
	// center 1000 nm, depth 0.30
}
