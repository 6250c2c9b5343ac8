package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// AlignUp rounds `operand` up to the next multiple of `granularity`.
// Unlike a mask-based round it also accepts granularities that are not
// powers of two. A zero granularity leaves the operand untouched.
func AlignUp[T constraints.Unsigned](operand, granularity T) T {
	if granularity == 0 {
		return operand
	}
	if rem := operand % granularity; rem != 0 {
		return operand + granularity - rem
	}
	return operand
}
