package registry

import (
	"sync"

	"github.com/soir-live/soir/internal/timeline"
)

// LiveBody is the user callable wrapped by @live. Like LoopBody it takes no
// arguments; it runs once per ingest when its source text changes.
type LiveBody func() error

// Live is a `@live` artifact (spec.md §3). Unlike Loop it is not self
// re-scheduling: it fires once per generation whose source differs from the
// last one it ran under.
type Live struct {
	Name string

	mu          sync.RWMutex
	body        LiveBody
	sourceSlice string
	updatedAt   uint64
	evalAt      timeline.Beat
}

// NewLive constructs a live artifact.
func NewLive(name string, body LiveBody, sourceSlice string, generation uint64) *Live {
	return &Live{
		Name:        name,
		body:        body,
		sourceSlice: sourceSlice,
		updatedAt:   generation,
	}
}

// Touch records that this generation re-declared the live artifact with an
// identical source slice: only updated_at advances, body/eval_at untouched
// (spec.md §4.5 "touch-only-on-source-match").
func (l *Live) Touch(generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updatedAt = generation
}

// Update replaces the body because the source slice changed; the caller is
// responsible for invoking the new body and recording EvalAt via MarkRun.
func (l *Live) Update(body LiveBody, sourceSlice string, generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.body = body
	l.sourceSlice = sourceSlice
	l.updatedAt = generation
}

// SourceMatches reports whether slice is identical to the last slice this
// live artifact ran under.
func (l *Live) SourceMatches(slice string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sourceSlice == slice
}

func (l *Live) Body() LiveBody {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.body
}

func (l *Live) UpdatedAt() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.updatedAt
}

func (l *Live) EvalAt() timeline.Beat {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.evalAt
}

// MarkRun records the beat the body last ran at.
func (l *Live) MarkRun(now timeline.Beat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evalAt = now
}
