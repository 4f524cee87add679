package quant

import (
	"fmt"
	"math"
)

// safeEpsilonExp shifts the safe-bound epsilon relative to the precision:
// epsilon = 2^(precision + safeEpsilonExp).
const safeEpsilonExp = -20

// ClipBound returns the largest magnitude of a symmetric integer grid of the
// given precision: (2^precision - 1) / 2. For example ClipBound(8) = 127.5.
func ClipBound(precision int) float64 {
	buckets := math.Ldexp(1, precision) - 1
	return buckets / 2
}

// SafeClipBound returns ClipBound(precision) - 2^(precision-20).
//
// Clipping to the slightly smaller bound guarantees that values at the
// nominal bound round inward under round-half-up instead of overflowing the
// grid by one unit.
//
// Panics if the result is not strictly below ClipBound(precision): the
// epsilon is too small to matter at this magnitude, which is an internal
// error rather than bad input.
func SafeClipBound(precision int) float64 {
	bound := ClipBound(precision)
	safe := bound - math.Ldexp(1, precision+safeEpsilonExp)
	if safe >= bound {
		panic(fmt.Sprintf("quant: internal error, epsilon too small for precision %d", precision))
	}
	return safe
}
