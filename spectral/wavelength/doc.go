// Package wavelength models the spectral axis shared by every pixel of a
// spectrum or spectral cube.
//
// An [Axis] is an immutable, strictly increasing sequence of positive
// wavelengths tagged with a [Unit]. Every window-based query takes an explicit
// unit; values are converted to the axis unit before they are compared, so a
// micrometer window can be resolved against a nanometer axis:
//
//	axis, err := wavelength.New([]float64{800, 850, 900, 950, 1000}, wavelength.Nanometer)
//	win, err := axis.ResolveWindow(0.85, 0.95, wavelength.Micrometer) // indices 1..3
//
// [Axis.Span] returns any non-empty window; [Axis.ResolveWindow] additionally
// requires at least three samples, the minimum for a meaningful band fit.
package wavelength
