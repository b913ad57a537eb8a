// Package timeline owns the engine's authoritative musical clock: the
// current beat and BPM, advanced only by the audio driver.
package timeline

// Beat is a musical time expressed in quarter-note units. It is a float64
// so sub-beat offsets (sleep, control-rate ticks) compose without rounding.
type Beat float64

// Add returns b shifted forward by offset beats. offset may be negative,
// though the clock itself never moves backward (I5).
func (b Beat) Add(offset Beat) Beat {
	return b + offset
}
