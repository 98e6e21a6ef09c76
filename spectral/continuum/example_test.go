package continuum_test

import (
	"fmt"

	"github.com/cwbudde/algo-spectral/spectral/continuum"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

func ExampleRemove() {
	axis, _ := wavelength.New([]float64{900, 950, 1000, 1050, 1100}, wavelength.Nanometer)
	spectrum := []float64{0.50, 0.45, 0.40, 0.50, 0.60}

	res, _ := continuum.Remove(axis, spectrum, axis.Full(), continuum.DefaultConfig())

	fmt.Println("anchors:", res.Low.Wavelength, res.High.Wavelength)
	fmt.Printf("%.3f\n", res.Values)

	// Output:
	// anchors: 900 1100
	// [1.000 0.857 0.727 0.870 1.000]
}
