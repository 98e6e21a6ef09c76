// Package outlier detects and replaces anomalous samples in a spectrum.
//
// Each sample is compared with the median of a sliding spectral window. The
// spread of the window is the median absolute deviation scaled by 1.4826, so
// Threshold reads as a number of standard deviations for Gaussian noise.
// Flagged samples are replaced by linear interpolation in wavelength between
// their nearest unflagged neighbours; flagged runs at either end of the
// spectrum take the nearest unflagged value.
//
// A window that holds no usable sample fails with [*WindowError] instead of
// inventing data.
package outlier
