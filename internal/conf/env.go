// env.go - environment variable configuration for soir
package conf

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings.
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // optional validation function
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"engine.samplerate", "SOIR_SAMPLE_RATE", validatePositiveInt},
		{"engine.blocksize", "SOIR_BLOCK_SIZE", validatePositiveInt},
		{"engine.controlhz", "SOIR_CONTROL_HZ", validatePositiveFloat},
		{"engine.bpm", "SOIR_BPM", validatePositiveFloat},

		{"mqtt.enabled", "SOIR_MQTT_ENABLED", nil},
		{"mqtt.broker", "SOIR_MQTT_BROKER", nil},
		{"mqtt.topic", "SOIR_MQTT_TOPIC", nil},
		{"mqtt.username", "SOIR_MQTT_USERNAME", nil},
		{"mqtt.password", "SOIR_MQTT_PASSWORD", nil},

		{"http.enabled", "SOIR_HTTP_ENABLED", nil},
		{"http.addr", "SOIR_HTTP_ADDR", nil},

		{"recording.outputdir", "SOIR_RECORDING_DIR", nil},
	}
}

// bindEnvVars binds each known environment variable to its viper key.
func bindEnvVars() {
	for _, b := range getEnvBindings() {
		_ = viper.BindEnv(b.ConfigKey, b.EnvVar)
	}
}

func validatePositiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("expected integer, got %q: %w", v, err)
	}
	if n <= 0 {
		return fmt.Errorf("expected positive integer, got %d", n)
	}
	return nil
}

func validatePositiveFloat(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("expected float, got %q: %w", v, err)
	}
	if f <= 0 {
		return fmt.Errorf("expected positive float, got %f", f)
	}
	return nil
}
