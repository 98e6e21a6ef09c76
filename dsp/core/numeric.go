package core

import "math"

// ClampInt limits value to the inclusive range [min, max].
func ClampInt(value, min, max int) int {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// AllFinite reports whether every element of x is finite.
// It returns the index of the first offending element, or -1.
func AllFinite(x []float64) (bool, int) {
	for i, v := range x {
		if !IsFinite(v) {
			return false, i
		}
	}

	return true, -1
}

// RoundToOdd rounds x to the nearest odd integer. Exact even values round
// down, values between an even and an odd integer round toward the odd side
// they are closer to.
func RoundToOdd(x float64) int {
	r := math.Round(x)
	n := int(r)
	if n%2 != 0 {
		return n
	}

	switch {
	case x > r:
		return n + 1
	case x < r:
		return n - 1
	default:
		return n - 1
	}
}

// LargestOddAtMost returns the largest odd integer <= n, or 0 when n < 1.
func LargestOddAtMost(n int) int {
	if n < 1 {
		return 0
	}

	if n%2 == 0 {
		return n - 1
	}

	return n
}
