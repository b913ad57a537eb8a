package conf

import "testing"

func validSettings() *Settings {
	s := &Settings{}
	s.Engine.SampleRate = 48000
	s.Engine.BlockSize = 512
	s.Engine.ControlHz = 100
	s.Engine.BPM = 120
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	t.Parallel()

	if err := validateSettings(validSettings()); err != nil {
		t.Fatalf("expected valid settings to pass, got %v", err)
	}
}

func TestValidateSettingsRejectsNonPositiveEngineFields(t *testing.T) {
	t.Parallel()

	cases := []func(*Settings){
		func(s *Settings) { s.Engine.SampleRate = 0 },
		func(s *Settings) { s.Engine.BlockSize = -1 },
		func(s *Settings) { s.Engine.ControlHz = 0 },
		func(s *Settings) { s.Engine.BPM = 0 },
	}

	for _, mutate := range cases {
		s := validSettings()
		mutate(s)
		if err := validateSettings(s); err == nil {
			t.Errorf("expected error for mutated settings %+v", s.Engine)
		}
	}
}

func TestValidateSettingsRequiresBrokerWhenMQTTEnabled(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.MQTT.Enabled = true
	s.MQTT.Broker = ""

	if err := validateSettings(s); err == nil {
		t.Error("expected error when mqtt enabled without a broker")
	}

	s.MQTT.Broker = "tcp://localhost:1883"
	if err := validateSettings(s); err != nil {
		t.Errorf("expected no error with broker set, got %v", err)
	}
}

func TestValidateSettingsRequiresAddrWhenHTTPEnabled(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.HTTP.Enabled = true
	s.HTTP.Addr = ""

	if err := validateSettings(s); err == nil {
		t.Error("expected error when http enabled without an addr")
	}
}

func TestValidateSettingsRejectsUnknownRotation(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Main.Log.Rotation = RotationType("fortnightly")

	if err := validateSettings(s); err == nil {
		t.Error("expected error for unknown rotation type")
	}
}
