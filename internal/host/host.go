// Package host declares the abstract operations the core calls into the
// surrounding audio/MIDI/DSP process through (spec.md §6). Nothing in this
// repository implements the DSP graph, device I/O or sample playback itself;
// internal/hostbridge provides one concrete Host backed by MQTT.
package host

import "github.com/soir-live/soir/internal/registry"

// Host is the full set of operations the engine and internal/ops need from
// whatever process owns the actual audio/MIDI hardware.
type Host interface {
	Log(msg string)

	GetBlockSize() int
	GetSampleRate() int

	MidiNoteOn(track string, channel, note int, velocity float64)
	MidiNoteOff(track string, channel, note int)
	MidiCC(track string, channel, cc int, value float64)

	SamplePlay(track string, params map[string]any)
	SampleStop(track string, params map[string]any)

	PublishControls(knobs map[string]float64)

	StartRecording(path string)
	StopRecording()

	SetupTracks(layout registry.TrackLayout) error
	GetTracks() registry.TrackLayout

	GetControlUpdateFrequency() float64
	GetCodeText() string

	// KnownPacks lists the sample packs currently loaded by the host
	// (supplemented feature grounding SamplePackNotFound, see SPEC_FULL.md §4).
	KnownPacks() []string
}
