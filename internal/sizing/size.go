// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import "math"

// ToInt64 converts a uint64 to int64, returning overflowErr if it doesn't fit.
func ToInt64(size uint64, overflowErr error) (int64, error) {
	if size > uint64(math.MaxInt64) {
		return 0, overflowErr
	}
	return int64(size), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// SaturatingAdd adds b to a, clamping at math.MaxUint64.
func SaturatingAdd(a, b uint64) uint64 {
	if sum, ok := AddUint64(a, b); ok {
		return sum
	}
	return math.MaxUint64
}

// Fraction returns done/total in [0, 1]. A zero total counts as complete.
func Fraction(done, total uint64) float64 {
	if total == 0 {
		return 1
	}
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}
