package smooth_test

import (
	"fmt"

	"github.com/cwbudde/algo-spectral/spectral/smooth"
)

func ExampleFilter() {
	spectrum := []float64{0.40, 0.46, 0.41, 0.45, 0.42, 0.44}

	out, _ := smooth.Filter(spectrum, smooth.BoxFilter(3))
	fmt.Printf("%.3f\n", out)

	// Output:
	// [0.440 0.423 0.440 0.427 0.437 0.427]
}
