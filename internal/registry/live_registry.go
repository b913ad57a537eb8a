package registry

import (
	"sort"
	"sync"
)

// LiveRegistry is the name -> Live map populated by @live declarations.
type LiveRegistry struct {
	mu     sync.RWMutex
	byName map[string]*Live
}

// NewLiveRegistry creates an empty live registry.
func NewLiveRegistry() *LiveRegistry {
	return &LiveRegistry{byName: make(map[string]*Live)}
}

// Declare records a @live declaration for this generation. changed reports
// whether the body needs to run (source slice differs from last time, or the
// artifact is brand new); when changed is false the caller should skip
// invoking body and only rely on the Touch already applied.
func (r *LiveRegistry) Declare(name string, body LiveBody, sourceSlice string, generation uint64) (live *Live, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byName[name]
	if !ok {
		live = NewLive(name, body, sourceSlice, generation)
		r.byName[name] = live
		return live, true
	}
	if existing.SourceMatches(sourceSlice) {
		existing.Touch(generation)
		return existing, false
	}
	existing.Update(body, sourceSlice, generation)
	return existing, true
}

// Get returns the named live artifact, if any.
func (r *LiveRegistry) Get(name string) (*Live, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[name]
	return l, ok
}

// Delete removes a live artifact by name.
func (r *LiveRegistry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, name)
}

// Len reports the number of registered live artifacts.
func (r *LiveRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Names returns every registered live name in lexicographic order.
func (r *LiveRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sweep drops live artifacts whose updated_at generation is older than
// minGeneration.
func (r *LiveRegistry) Sweep(minGeneration uint64) (removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, l := range r.byName {
		if l.UpdatedAt() < minGeneration {
			delete(r.byName, name)
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	return removed
}
