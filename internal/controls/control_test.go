package controls

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorizedFlag() *atomic.Bool {
	var flag atomic.Bool
	flag.Store(true)
	return &flag
}

func TestLFOFwdOscillatesBetweenLowAndHigh(t *testing.T) {
	t.Parallel()

	c := NewLFO("lfo1", GlobalScope(0), 1.0, 1.0, 0.0, 10.0)
	bindUpdateLoopFlag(c, authorizedFlag())

	require.NoError(t, c.Fwd(0.25))           // value computed at tick 0, then tick advances to 0.25s
	assert.InDelta(t, 5.0, c.Value(), 0.0001) // sin(0) = 0 -> midpoint

	require.NoError(t, c.Fwd(0.25)) // value computed at tick 0.25s: quarter period at 1Hz -> sin peaks
	assert.InDelta(t, 10.0, c.Value(), 0.01)
}

func TestLinearRampsAndStaysUnclamped(t *testing.T) {
	t.Parallel()

	c := NewLinear("lin1", GlobalScope(0), 0.0, 10.0, 2.0)
	bindUpdateLoopFlag(c, authorizedFlag())

	require.NoError(t, c.Fwd(1.0)) // value computed at tick 0, then tick advances to 1s
	assert.InDelta(t, 0.0, c.Value(), 0.0001)

	require.NoError(t, c.Fwd(2.0)) // value computed at tick 1s, then tick advances to 3s
	assert.InDelta(t, 5.0, c.Value(), 0.0001)

	require.NoError(t, c.Fwd(0)) // value computed at tick 3s, past duration of 2s
	assert.InDelta(t, 15.0, c.Value(), 0.0001, "Linear is deliberately unclamped past duration")
}

func TestValFwdIsNoOpSetMutates(t *testing.T) {
	t.Parallel()

	c := NewVal("v1", GlobalScope(0), 1.0)
	bindUpdateLoopFlag(c, authorizedFlag())

	require.NoError(t, c.Fwd(10))
	assert.InDelta(t, 1.0, c.Value(), 0.0001)

	require.NoError(t, c.Set(42))
	assert.InDelta(t, 42.0, c.Value(), 0.0001)
}

func TestSetOnlyLegalOnVal(t *testing.T) {
	t.Parallel()

	c := NewLFO("lfo1", GlobalScope(0), 1, 1, 0, 1)
	err := c.Set(5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSetNotSupported)
}

func TestFuncFwdCallsCallable(t *testing.T) {
	t.Parallel()

	calls := 0
	c := NewFunc("f1", GlobalScope(0), func() float64 {
		calls++
		return float64(calls) * 10
	})
	bindUpdateLoopFlag(c, authorizedFlag())

	require.NoError(t, c.Fwd(0))
	assert.InDelta(t, 10.0, c.Value(), 0.0001)
	require.NoError(t, c.Fwd(0))
	assert.InDelta(t, 20.0, c.Value(), 0.0001)
}

func TestFwdFailsOutsideUpdateLoop(t *testing.T) {
	t.Parallel()

	c := NewVal("v1", GlobalScope(0), 1.0)
	err := c.Fwd(1.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotInControlLoop)
}
