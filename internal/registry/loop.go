// Package registry holds the loop, live, track-layout, sampler and
// recording-request artifacts created by user code, along with the
// reconciliation primitives (Sweep) internal/engine drives each generation.
package registry

import (
	"sync"

	"github.com/soir-live/soir/internal/timeline"
)

// LoopBody is the user callable wrapped by @loop. It takes no arguments:
// the "current loop" context it needs (sleep offsets, MIDI channel scope)
// is tracked by internal/engine around the call, mirroring the original's
// global current_loop binding (spec.md §4.5).
type LoopBody func() error

// Loop is a `@loop(track, beats, align)` artifact (spec.md §3).
type Loop struct {
	Name string

	mu            sync.RWMutex
	beats         int
	track         string
	align         bool
	body          LoopBody
	updatedAt     uint64
	evalAt        timeline.Beat
	currentOffset timeline.Beat
	extra         map[string]any
}

// NewLoop constructs a loop artifact. generation is the evaluation generation
// it was declared under (I1, I3).
func NewLoop(name string, beats int, track string, align bool, body LoopBody, generation uint64) *Loop {
	return &Loop{
		Name:      name,
		beats:     beats,
		track:     track,
		align:     align,
		body:      body,
		updatedAt: generation,
		extra:     make(map[string]any),
	}
}

// Mutate updates an existing loop's declared fields in place (spec.md §4.5:
// "mutate in place"; the running self-recursion keeps its old timing until
// the next firing).
func (l *Loop) Mutate(beats int, track string, align bool, body LoopBody, generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beats = beats
	l.track = track
	l.align = align
	l.body = body
	l.updatedAt = generation
}

func (l *Loop) Beats() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.beats
}

func (l *Loop) Track() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.track
}

func (l *Loop) Align() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.align
}

func (l *Loop) Body() LoopBody {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.body
}

func (l *Loop) UpdatedAt() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.updatedAt
}

func (l *Loop) EvalAt() timeline.Beat {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.evalAt
}

// BeginRun sets eval_at to now and resets current_offset, per the wrapped
// action's step 2 (spec.md §4.5).
func (l *Loop) BeginRun(now timeline.Beat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evalAt = now
	l.currentOffset = 0
}

// CurrentOffset returns the accumulated sub-beat offset for the run in progress.
func (l *Loop) CurrentOffset() timeline.Beat {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentOffset
}

// Sleep advances current_offset by beats (spec.md §4.6 sleep semantics).
func (l *Loop) Sleep(beats timeline.Beat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentOffset += beats
}

// MidiChan returns the loop's scoped MIDI channel override, if any.
func (l *Loop) MidiChan() (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.extra["midi_chan"].(int)
	return c, ok
}

// SetMidiChan installs a scoped MIDI channel override (use_chan).
func (l *Loop) SetMidiChan(c int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.extra["midi_chan"] = c
}

// ClearMidiChan removes the scoped MIDI channel override.
func (l *Loop) ClearMidiChan() {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.extra, "midi_chan")
}
