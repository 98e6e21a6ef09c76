// Package interp provides linear interpolation primitives on non-uniform
// sample grids, such as wavelength axes.
//
// Available helpers:
//
//   - [Lerp]:     2-point linear interpolation at a fractional position
//   - [Line]:     straight line through two (x, y) points
//   - [FillGaps]: replace masked samples by interpolating their unmasked
//     neighbours, holding the nearest value past either end
//   - [Polyline]: piecewise-linear curve through increasing knots
package interp
