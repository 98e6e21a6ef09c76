// Package pipeline runs spectral processing stages over a single spectrum
// (Series), an in-memory cube (Cube) or a cube streamed through a store in
// row chunks (Streaming).
//
// All three implement [Pipeline] and share the same per-pixel kernels, so a
// given configuration yields the same numbers in every mode. Each stage
// consumes the current data and installs its output as the new current
// data; the previous buffer is released. Stages are:
//
//	OutlierRemoval   -> Stage OutliersRemoved, outlier mask
//	NoiseReduction   -> Stage Filtered, local noise estimate
//	ContinuumRemoval -> Stage ContinuumRemoved, continuum window recorded
//
// FitAbsorption is a query. When the fit window lies inside a window that
// continuum removal was run over, the held data is fitted directly.
// Otherwise a double-line continuum with default settings is removed over
// the fit window on a private copy first; the held data is never modified.
//
// A failing pixel aborts the whole operation. Cube and Streaming report the
// failure with the lowest (row, col), independent of worker scheduling.
package pipeline
