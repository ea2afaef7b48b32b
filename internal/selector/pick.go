package selector

import "math/rand/v2"

// Pick chooses an item from pool that is not in h, records it in h, and
// returns it. When every item has been seen recently the history is cut
// back to its newest quarter and the filter is retried once; if that
// still leaves nothing, the whole pool is eligible. Pick returns false
// only for an empty pool.
//
// intn returns a value in [0, n); nil uses math/rand/v2.
func Pick[T any](pool []T, key func(T) string, h *History, intn func(int) int) (T, bool) {
	var zero T
	if len(pool) == 0 {
		return zero, false
	}
	if intn == nil {
		intn = rand.IntN
	}
	if h == nil {
		h = NewHistory(DefaultMaxHistory)
	}

	candidates := filter(pool, key, h)
	if len(candidates) == 0 {
		h.keepRecent(h.limit() / 4)
		candidates = filter(pool, key, h)
	}
	if len(candidates) == 0 {
		candidates = pool
	}

	chosen := candidates[intn(len(candidates))]
	h.Push(key(chosen))
	return chosen, true
}

func filter[T any](pool []T, key func(T) string, h *History) []T {
	out := make([]T, 0, len(pool))
	for _, it := range pool {
		if !h.Contains(key(it)) {
			out = append(out, it)
		}
	}
	return out
}
