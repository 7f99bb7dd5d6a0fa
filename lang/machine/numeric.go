package machine

import "golang.org/x/exp/constraints"

// clamp restricts v to [lo, hi] for any integer width; normalizeRelIndex
// uses it.
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// shiftCount masks a shift amount to the 5 low bits, ES3 11.7's rule that
// SHL/SHR/USHR only ever look at the right operand modulo 32.
func shiftCount(n uint32) uint {
	return uint(n & 0x1F)
}

// normalizeRelIndex resolves a possibly-negative integer relative index (a
// negative one counts back from the end, the slice/splice convention)
// against a length, clamping to [0, length].
func normalizeRelIndex(i, length int64) int64 {
	if i < 0 {
		i += length
	}
	return clamp(i, 0, length)
}
