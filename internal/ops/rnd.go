package ops

import (
	"math/rand"
	"sync"
)

// Rnd is the rnd.* surface (supplemented feature: the original ships a tiny
// rnd.py alongside midi/sampler/tracks for use inside loop bodies,
// SPEC_FULL.md §4). Backed by a per-engine *rand.Rand so tests can seed it
// deterministically.
type Rnd struct {
	mu  sync.Mutex
	src *rand.Rand
}

func newRnd(seed int64) *Rnd {
	return &Rnd{src: rand.New(rand.NewSource(seed))}
}

// Float returns a uniform float64 in [lo, hi).
func (r *Rnd) Float(lo, hi float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.src.Float64()*(hi-lo)
}

// Int returns a uniform int in [lo, hi].
func (r *Rnd) Int(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hi <= lo {
		return lo
	}
	return lo + r.src.Intn(hi-lo+1)
}

// Pick returns a uniformly random element of items. Panics on an empty slice,
// matching the original's unchecked random.choice semantics for loop bodies
// that always pass a non-empty literal.
func Pick[T any](r *Rnd, items []T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return items[r.src.Intn(len(items))]
}
