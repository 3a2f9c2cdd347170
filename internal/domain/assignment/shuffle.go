package assignment

import "math/rand/v2"

// Shuffle returns a uniformly permuted copy of items using Fisher-Yates.
// A nil rnd draws from the global source.
// POST: items is not mutated; Result is a permutation of items
func Shuffle[T any](items []T, rnd *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)
	intN := rand.IntN
	if rnd != nil {
		intN = rnd.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
