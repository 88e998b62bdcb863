package pad

import (
	"cmp"
)

// fill fills a slice with a value
func fill[S ~[]T, T any](s S, v T) {
	for i := range s {
		s[i] = v
	}
}

// clamp returns the value clamped between s and b
// similar to min(max(value, smallest),biggest)
func clamp[T cmp.Ordered](v T, s, b T) T {
	if v < s {
		return s
	}
	if v > b {
		return b
	}
	return v
}
