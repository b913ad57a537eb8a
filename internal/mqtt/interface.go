// interface.go: public Config/Client surface for the MQTT host bridge transport.
package mqtt

import "context"

// Config describes how to reach the MQTT broker used by the host bridge.
type Config struct {
	Broker   string // tcp://, tls:// or ssl:// broker URL
	ClientID string
	Username string
	Password string
	Topic    string // base topic host bridge messages are published under
	TLS      TLSConfig
}

// TLSConfig holds the certificate material for a secured broker connection.
type TLSConfig struct {
	Enabled            bool
	CACert             string
	ClientCert         string
	ClientKey          string
	InsecureSkipVerify bool
}

// usesTLSScheme reports whether broker starts with a TLS-implying scheme.
func usesTLSScheme(broker string) bool {
	return hasScheme(broker, "tls://") || hasScheme(broker, "ssl://")
}

func hasScheme(s, scheme string) bool {
	return len(s) >= len(scheme) && s[:len(scheme)] == scheme
}

// Client is a small, reconnecting MQTT publisher used to carry host bridge
// operations (publish_controls, sample_play/stop, midi_note_on/off) to a
// detached DSP or DAW process. It is the only concrete host.* transport the
// engine ships with; other bridges can implement host.Host directly.
type Client interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, topic string, payload string) error
	IsConnected() bool
	Disconnect()
}

// ConnectionRecorder receives connection-state observations from Client.
// internal/metrics implements this to expose broker connectivity as a gauge.
type ConnectionRecorder interface {
	RecordMQTTConnection(connected bool)
	RecordMQTTPublish(topic string, err error)
}

// noopRecorder discards all observations. Used when no recorder is wired.
type noopRecorder struct{}

func (noopRecorder) RecordMQTTConnection(bool)       {}
func (noopRecorder) RecordMQTTPublish(string, error) {}
