// Package continuum normalizes a spectral window by its continuum.
//
// The double-line method anchors a straight line on the highest local
// reflectance maximum near each window boundary and divides the observed
// values by it. When no local maximum lies within the search radius of a
// boundary, the boundary sample itself is the anchor. The convex-hull method
// divides by the upper hull of the window instead.
//
// Removal is windowed: samples outside the window pass through unchanged.
// Values near 1 indicate no absorption.
package continuum
