package registry

import "fmt"

// Track describes one output channel of the mixer/MIDI surface (the
// supplemented track-layout feature; original_source left this implicit in
// per-call instrument arguments).
type Track struct {
	Name       string
	Instrument string
	Channel    int
	Muted      bool
	Volume     float64
	Pan        float64
}

// TrackLayout is the full set of tracks set up by Context.SetupTracks.
type TrackLayout struct {
	Tracks []Track
}

// Validate checks every track's fields are in range, returning the first
// violation found.
func (tl *TrackLayout) Validate() error {
	seen := make(map[string]bool, len(tl.Tracks))
	for _, t := range tl.Tracks {
		if t.Name == "" {
			return newInvalidTrackLayoutError("track name must not be empty")
		}
		if seen[t.Name] {
			return newInvalidTrackLayoutError(fmt.Sprintf("duplicate track name %q", t.Name))
		}
		seen[t.Name] = true
		if t.Channel < 0 || t.Channel > 15 {
			return newInvalidTrackLayoutError(fmt.Sprintf("track %q: channel %d out of range [0,15]", t.Name, t.Channel))
		}
		if t.Volume < 0 || t.Volume > 1 {
			return newInvalidTrackLayoutError(fmt.Sprintf("track %q: volume %f out of range [0,1]", t.Name, t.Volume))
		}
		if t.Pan < -1 || t.Pan > 1 {
			return newInvalidTrackLayoutError(fmt.Sprintf("track %q: pan %f out of range [-1,1]", t.Name, t.Pan))
		}
	}
	return nil
}

// Names returns every track name in declaration order.
func (tl *TrackLayout) Names() []string {
	names := make([]string, len(tl.Tracks))
	for i, t := range tl.Tracks {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the track with the given name, if present.
func (tl *TrackLayout) Lookup(name string) (Track, bool) {
	for _, t := range tl.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return Track{}, false
}
