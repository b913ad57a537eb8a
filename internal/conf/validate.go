package conf

import "fmt"

// validateSettings checks Settings for obviously invalid combinations before
// the engine is handed the struct.
func validateSettings(s *Settings) error {
	if s.Engine.SampleRate <= 0 {
		return fmt.Errorf("engine.samplerate must be positive, got %d", s.Engine.SampleRate)
	}
	if s.Engine.BlockSize <= 0 {
		return fmt.Errorf("engine.blocksize must be positive, got %d", s.Engine.BlockSize)
	}
	if s.Engine.ControlHz <= 0 {
		return fmt.Errorf("engine.controlhz must be positive, got %f", s.Engine.ControlHz)
	}
	if s.Engine.BPM <= 0 {
		return fmt.Errorf("engine.bpm must be positive, got %f", s.Engine.BPM)
	}

	if s.MQTT.Enabled && s.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker must be set when mqtt.enabled is true")
	}

	if s.HTTP.Enabled && s.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must be set when http.enabled is true")
	}

	switch s.Main.Log.Rotation {
	case "", RotationDaily, RotationWeekly, RotationSize:
	default:
		return fmt.Errorf("main.log.rotation must be one of daily, weekly, size, got %q", s.Main.Log.Rotation)
	}

	return nil
}
