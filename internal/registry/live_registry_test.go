package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveDeclareNewAlwaysChanged(t *testing.T) {
	t.Parallel()

	r := NewLiveRegistry()
	live, changed := r.Declare("drone", func() error { return nil }, "play(60)", 1)

	assert.True(t, changed)
	require.NotNil(t, live)
	assert.Equal(t, 1, r.Len())
}

func TestLiveRedeclareSameSourceOnlyTouches(t *testing.T) {
	t.Parallel()

	r := NewLiveRegistry()
	r.Declare("drone", func() error { return nil }, "play(60)", 1)

	live, changed := r.Declare("drone", func() error { return nil }, "play(60)", 2)

	assert.False(t, changed)
	assert.Equal(t, uint64(2), live.UpdatedAt())
	assert.Equal(t, 1, r.Len())
}

func TestLiveRedeclareDifferentSourceChanges(t *testing.T) {
	t.Parallel()

	r := NewLiveRegistry()
	r.Declare("drone", func() error { return nil }, "play(60)", 1)

	live, changed := r.Declare("drone", func() error { return nil }, "play(62)", 2)

	assert.True(t, changed)
	assert.True(t, live.SourceMatches("play(62)"))
}

func TestLiveRegistrySweepRemovesStale(t *testing.T) {
	t.Parallel()

	r := NewLiveRegistry()
	r.Declare("keep", nil, "a", 5)
	r.Declare("drop", nil, "b", 3)

	removed := r.Sweep(5)
	assert.Equal(t, []string{"drop"}, removed)
	assert.Equal(t, 1, r.Len())
}
