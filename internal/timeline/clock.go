package timeline

import (
	"sync"

	"github.com/soir-live/soir/internal/logging"
)

var log = logging.ForService("timeline")

// Clock holds the engine's current beat and tempo. The audio driver is the
// only writer of currentBeat; everything else only reads it. BPM may be set
// from the global scope (I4 forbids it from inside a loop body; that guard
// lives in internal/ops, not here).
type Clock struct {
	mu          sync.RWMutex
	bpm         float64
	currentBeat Beat
}

// NewClock creates a Clock at beat 0 with the given initial BPM.
func NewClock(bpm float64) *Clock {
	return &Clock{bpm: bpm}
}

// Beat returns the current beat (I5: non-decreasing).
func (c *Clock) Beat() Beat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentBeat
}

// BPM returns the current tempo.
func (c *Clock) BPM() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bpm
}

// SetBPM replaces the tempo. Callers enforce I4 (no BPM changes from inside
// a loop body); Clock itself has no notion of "current loop".
func (c *Clock) SetBPM(bpm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bpm <= 0 {
		log.Warn("ignoring non-positive bpm", "bpm", bpm)
		return
	}
	c.bpm = bpm
}

// Advance moves current_beat forward by the beats equivalent of frames
// rendered at sampleRate, per §4.1: beat += frames * bpm / (60 * sampleRate).
// Only the audio driver should call this.
func (c *Clock) Advance(frames int, sampleRate int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if frames <= 0 || sampleRate <= 0 {
		return
	}
	c.currentBeat += Beat(float64(frames) * c.bpm / (60 * float64(sampleRate)))
}
