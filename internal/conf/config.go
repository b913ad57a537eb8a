// conf/config.go
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings holds the full runtime configuration for the soir engine.
type Settings struct {
	Debug bool // true to enable debug mode

	Main struct {
		Name string // name of this node, used to identify the source in logs/MQTT
		Log  LogConfig
	}

	Engine struct {
		SampleRate int     // audio sample rate the host drives the engine at
		BlockSize  int     // audio callback block size, in frames
		ControlHz  float64 // control-rate tick frequency for value generators
		BPM        float64 // initial tempo in beats per minute
	}

	MQTT struct {
		Enabled  bool          // true to enable the MQTT host bridge
		Broker   string        // MQTT broker (tcp://host:port, tls://host:port)
		Topic    string        // base MQTT topic for host operations
		Username string        // MQTT username
		Password string        // MQTT password
		TLS      MQTTTLSConfig // TLS/SSL settings, used for tls:// and ssl:// brokers
	}

	HTTP struct {
		Enabled bool   // true to enable the read-only status endpoint
		Addr    string // address to listen on, e.g. ":8080"
	}

	Sampler struct {
		PackPaths []string // filesystem paths searched for sample packs
	}

	Recording struct {
		OutputDir string // directory recordings are written to
	}
}

// MQTTTLSConfig holds certificate-based TLS settings for a secured MQTT broker.
type MQTTTLSConfig struct {
	Enabled            bool   // true to force TLS even for brokers not using a tls://ssl:// scheme
	CACert             string // path to a CA certificate used to verify the broker
	ClientCert         string // path to a client certificate for mutual TLS
	ClientKey          string // path to the client certificate's private key
	InsecureSkipVerify bool   // skip broker certificate verification, for self-signed test setups
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay time.Weekday // Day of the week for RotationWeekly
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// buildDate is the time when the binary was built, set via -ldflags.
var buildDate string

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a fresh Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := validateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()
	bindEnvVars()

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	fmt.Printf("soir build date: %s, using config file: %s\n", buildDate, viper.ConfigFileUsed())

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SetForTesting installs settings directly, bypassing Load/viper. Intended
// for tests that need deterministic Settings without touching the filesystem.
func SetForTesting(s *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = s
}
