package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClockStartsAtZero(t *testing.T) {
	t.Parallel()

	c := NewClock(120)
	assert.Equal(t, Beat(0), c.Beat())
	assert.InDelta(t, 120.0, c.BPM(), 0.0001)
}

func TestAdvanceMovesBeatForward(t *testing.T) {
	t.Parallel()

	c := NewClock(120)
	// 120 BPM, 48000 Hz: one beat = 0.5s = 24000 frames.
	c.Advance(24000, 48000)
	assert.InDelta(t, 1.0, float64(c.Beat()), 0.0001)

	c.Advance(12000, 48000)
	assert.InDelta(t, 1.5, float64(c.Beat()), 0.0001)
}

func TestAdvanceIsMonotonicAcrossBPMChanges(t *testing.T) {
	t.Parallel()

	c := NewClock(120)
	c.Advance(24000, 48000)
	c.SetBPM(240)
	c.Advance(24000, 48000)

	assert.InDelta(t, 3.0, float64(c.Beat()), 0.0001)
}

func TestSetBPMRejectsNonPositive(t *testing.T) {
	t.Parallel()

	c := NewClock(120)
	c.SetBPM(0)
	assert.InDelta(t, 120.0, c.BPM(), 0.0001)

	c.SetBPM(-5)
	assert.InDelta(t, 120.0, c.BPM(), 0.0001)

	c.SetBPM(140)
	assert.InDelta(t, 140.0, c.BPM(), 0.0001)
}

func TestAdvanceIgnoresNonPositiveInputs(t *testing.T) {
	t.Parallel()

	c := NewClock(120)
	c.Advance(0, 48000)
	c.Advance(-10, 48000)
	c.Advance(100, 0)

	assert.Equal(t, Beat(0), c.Beat())
}
