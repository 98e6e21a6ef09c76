// Package absorption fits polynomials to continuum-removed absorption
// features and derives band parameters.
//
// A fit is a least-squares polynomial over a spectral window, solved by QR
// decomposition on wavelengths centred and scaled to [-1, 1]. From it:
//
//   - band center: wavelength of the fitted minimum inside the window
//     (closed-form vertex for degree 2, critical points otherwise)
//   - band depth: 1 minus the fitted value at the band center
//   - integrated band depth: trapezoidal area of 1 minus the observed values
//     over the original sample spacing
//
// Input must already be continuum removed over the window; this package
// never normalizes on its own.
package absorption
