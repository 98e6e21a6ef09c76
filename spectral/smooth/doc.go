// Package smooth implements spectral-axis noise filters.
//
// A filter is selected with a closed [Method] value and validated against
// the spectrum length before any data is touched. Every method convolves the
// spectrum with a normalized odd-length kernel after mirroring it at both
// edges, so the output has the same length as the input and no zero bias
// enters at the ends. A width of 1 is the identity.
//
// [Smoother] precomputes the kernel once for repeated use across the pixels
// of a cube; [Filter] is the one-shot form. [Smoother.Noise] reports the local
// standard deviation over the same window as a noise diagnostic.
package smooth
