// Package hostbridge provides one concrete internal/host.Host implementation,
// backed by MQTT (spec.md §6: "there is no wire format defined by the core
// itself; JSON encodings are the negotiated bridge to the host"). It is the
// interface edge to the audio/MIDI/DSP process, never an implementation of
// it: nothing here touches an audio device or hosts a VST.
package hostbridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/soir-live/soir/internal/logging"
	"github.com/soir-live/soir/internal/mqtt"
	"github.com/soir-live/soir/internal/registry"
)

var log = logging.ForService("hostbridge")

// MQTTHost turns every host.Host call into a JSON-encoded publish under a
// base topic, one subtopic per operation.
type MQTTHost struct {
	client     mqtt.Client
	baseTopic  string
	blockSize  int
	sampleRate int
	controlHz  float64
	knownPacks []string

	mu       sync.RWMutex
	codeText string
	layout   registry.TrackLayout

	ctx    context.Context
	cancel context.CancelFunc
}

// NewMQTTHost builds a host bridge publishing under baseTopic via client.
// client is expected to already be connected (or connecting with its own
// reconnect policy); publish failures are logged, never returned, since
// host operations are contracted to be non-blocking (spec.md §5).
func NewMQTTHost(client mqtt.Client, baseTopic string, blockSize, sampleRate int, controlHz float64, knownPacks []string) *MQTTHost {
	ctx, cancel := context.WithCancel(context.Background())
	return &MQTTHost{
		client:     client,
		baseTopic:  baseTopic,
		blockSize:  blockSize,
		sampleRate: sampleRate,
		controlHz:  controlHz,
		knownPacks: knownPacks,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Close releases the context backing outstanding publishes. It does not
// disconnect the underlying mqtt.Client, which outlives individual engines.
func (h *MQTTHost) Close() { h.cancel() }

// SetCodeText installs the latest snapshot text, for GetCodeText's
// source-slice extraction (spec.md §6). Called by whatever watcher feeds
// snapshots; out of scope here but the setter gives it a home.
func (h *MQTTHost) SetCodeText(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.codeText = text
}

func (h *MQTTHost) publish(subtopic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to encode host bridge payload", "subtopic", subtopic, "error", err)
		return
	}
	topic := h.baseTopic + "/" + subtopic
	if err := h.client.Publish(h.ctx, topic, string(payload)); err != nil {
		log.Warn("host bridge publish failed", "topic", topic, "error", err)
	}
}

func (h *MQTTHost) Log(msg string) {
	h.publish("log", map[string]string{"msg": msg})
}

func (h *MQTTHost) GetBlockSize() int  { return h.blockSize }
func (h *MQTTHost) GetSampleRate() int { return h.sampleRate }

func (h *MQTTHost) MidiNoteOn(track string, channel, note int, velocity float64) {
	h.publish("midi/note_on", map[string]any{
		"track": track, "channel": channel, "note": note, "velocity": velocity,
	})
}

func (h *MQTTHost) MidiNoteOff(track string, channel, note int) {
	h.publish("midi/note_off", map[string]any{
		"track": track, "channel": channel, "note": note,
	})
}

func (h *MQTTHost) MidiCC(track string, channel, cc int, value float64) {
	h.publish("midi/cc", map[string]any{
		"track": track, "channel": channel, "cc": cc, "value": value,
	})
}

func (h *MQTTHost) SamplePlay(track string, params map[string]any) {
	h.publish("sample/play", map[string]any{"track": track, "params": params})
}

func (h *MQTTHost) SampleStop(track string, params map[string]any) {
	h.publish("sample/stop", map[string]any{"track": track, "params": params})
}

func (h *MQTTHost) PublishControls(knobs map[string]float64) {
	h.publish("controls", map[string]any{"knobs": knobs})
}

func (h *MQTTHost) StartRecording(path string) {
	h.publish("recording/start", map[string]string{"path": path})
}

func (h *MQTTHost) StopRecording() {
	h.publish("recording/stop", struct{}{})
}

func (h *MQTTHost) SetupTracks(layout registry.TrackLayout) error {
	if err := layout.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	h.layout = layout
	h.mu.Unlock()
	h.publish("tracks/setup", layout)
	return nil
}

func (h *MQTTHost) GetTracks() registry.TrackLayout {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.layout
}

func (h *MQTTHost) GetControlUpdateFrequency() float64 { return h.controlHz }

func (h *MQTTHost) GetCodeText() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.codeText
}

func (h *MQTTHost) KnownPacks() []string { return h.knownPacks }
