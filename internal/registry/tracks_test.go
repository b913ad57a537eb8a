package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLayout() *TrackLayout {
	return &TrackLayout{Tracks: []Track{
		{Name: "drums", Instrument: "808", Channel: 9, Volume: 0.8, Pan: 0},
		{Name: "bass", Instrument: "synth", Channel: 1, Volume: 0.6, Pan: -0.2},
	}}
}

func TestValidateAcceptsWellFormedLayout(t *testing.T) {
	t.Parallel()
	require.NoError(t, validLayout().Validate())
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	tl := validLayout()
	tl.Tracks = append(tl.Tracks, Track{Name: "drums", Channel: 2})
	err := tl.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTrackLayout)
}

func TestValidateRejectsOutOfRangeChannel(t *testing.T) {
	t.Parallel()

	tl := &TrackLayout{Tracks: []Track{{Name: "x", Channel: 16}}}
	err := tl.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTrackLayout)
}

func TestValidateRejectsOutOfRangeVolumeAndPan(t *testing.T) {
	t.Parallel()

	tl := &TrackLayout{Tracks: []Track{{Name: "x", Channel: 0, Volume: 1.5}}}
	require.Error(t, tl.Validate())

	tl2 := &TrackLayout{Tracks: []Track{{Name: "x", Channel: 0, Volume: 0.5, Pan: -2}}}
	require.Error(t, tl2.Validate())
}

func TestLookupFindsTrackByName(t *testing.T) {
	t.Parallel()

	tl := validLayout()
	tr, ok := tl.Lookup("bass")
	require.True(t, ok)
	assert.Equal(t, "synth", tr.Instrument)

	_, ok = tl.Lookup("missing")
	assert.False(t, ok)
}

func TestNamesReturnsDeclarationOrder(t *testing.T) {
	t.Parallel()

	tl := validLayout()
	assert.Equal(t, []string{"drums", "bass"}, tl.Names())
}
