package registry

import "sync"

// Sampler is a handle bound to one sample pack on one track, returned by
// SamplerRegistry.NewSampler for @loop bodies to call Play/Stop against.
type Sampler struct {
	Pack  string
	Track string
}

// SamplerRegistry validates sample-pack names against the set the host
// reports as available (host.KnownPacks, spec.md §6 supplement) before
// handing out a Sampler.
type SamplerRegistry struct {
	mu         sync.RWMutex
	knownPacks map[string]bool
}

// NewSamplerRegistry builds a registry that accepts only the given pack names.
func NewSamplerRegistry(knownPacks []string) *SamplerRegistry {
	set := make(map[string]bool, len(knownPacks))
	for _, p := range knownPacks {
		set[p] = true
	}
	return &SamplerRegistry{knownPacks: set}
}

// SetKnownPacks replaces the accepted pack set, e.g. after the host
// reports a refreshed sample library.
func (sr *SamplerRegistry) SetKnownPacks(packs []string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	set := make(map[string]bool, len(packs))
	for _, p := range packs {
		set[p] = true
	}
	sr.knownPacks = set
}

// NewSampler returns a Sampler bound to pack/track, or SamplePackNotFound if
// pack isn't in the known set.
func (sr *SamplerRegistry) NewSampler(pack, track string) (*Sampler, error) {
	sr.mu.RLock()
	known := sr.knownPacks[pack]
	sr.mu.RUnlock()

	if !known {
		return nil, newSamplePackNotFoundError(pack)
	}
	return &Sampler{Pack: pack, Track: track}, nil
}
