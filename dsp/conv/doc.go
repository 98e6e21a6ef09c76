// Package conv provides the convolution routines used for spectral-axis
// smoothing.
//
// Two strategies are available:
//
//   - Direct convolution: O(N*M) time-domain convolution, best for the short
//     kernels typical of spectral smoothing (< 64 bands)
//   - [FFTKernel]: overlap-add through the frequency domain for wide
//     kernels. The kernel is transformed once and may be shared by workers.
//
// [Convolve] selects between them by kernel length. [ConvolveReflect] is the
// entry point for filters: it mirrors the signal at both edges (without
// repeating the edge sample) so the output has the same length as the input
// and carries no zero-padding bias:
//
//	smoothed, err := conv.ConvolveReflect(spectrum, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
//
// # Algorithm Selection
//
//   - Kernel length < 64: Direct convolution
//   - Kernel length >= 64: FFT-based overlap-add
//
// Both paths agree to within floating-point rounding; callers that need
// bitwise reproducibility across kernel sizes should use [Direct].
package conv
