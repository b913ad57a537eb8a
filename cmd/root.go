// root.go viper root command code
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/soir-live/soir/cmd/authors"
	"github.com/soir-live/soir/cmd/license"
	"github.com/soir-live/soir/cmd/run"
	"github.com/soir-live/soir/cmd/version"
	"github.com/soir-live/soir/internal/buildinfo"
	"github.com/soir-live/soir/internal/conf"
	"github.com/soir-live/soir/internal/logging"
)

// RootCommand creates and returns the root command. info carries the
// ldflags-populated build metadata main.go assembled; it is threaded through
// to the version subcommand and to "run" so the status server can report it.
func RootCommand(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "soir",
		Short: "soir live-coding engine",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	authorsCmd := authors.Command()
	licenseCmd := license.Command()
	versionCmd := version.Command(info)
	runCmd := run.Command(settings, info)

	rootCmd.AddCommand(authorsCmd, licenseCmd, versionCmd, runCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() != authorsCmd.Name() && cmd.Name() != licenseCmd.Name() && cmd.Name() != versionCmd.Name() {
			logging.Init()
			if settings.Debug {
				logging.SetLevel(slog.LevelDebug)
			}
		}
		return nil
	}

	return rootCmd
}

// setupFlags binds the global, always-present flags to settings and viper.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Main.Name, "name", viper.GetString("main.name"), "Node name used to identify this instance in logs and MQTT")
	rootCmd.PersistentFlags().IntVar(&settings.Engine.SampleRate, "sample-rate", viper.GetInt("engine.samplerate"), "Audio sample rate the host drives the engine at")
	rootCmd.PersistentFlags().IntVar(&settings.Engine.BlockSize, "block-size", viper.GetInt("engine.blocksize"), "Audio callback block size, in frames")
	rootCmd.PersistentFlags().Float64Var(&settings.Engine.ControlHz, "control-hz", viper.GetFloat64("engine.controlhz"), "Control-rate tick frequency for value generators")
	rootCmd.PersistentFlags().Float64Var(&settings.Engine.BPM, "bpm", viper.GetFloat64("engine.bpm"), "Initial tempo in beats per minute")
	rootCmd.PersistentFlags().BoolVar(&settings.MQTT.Enabled, "mqtt-enabled", viper.GetBool("mqtt.enabled"), "Enable the MQTT host bridge")
	rootCmd.PersistentFlags().StringVar(&settings.MQTT.Broker, "mqtt-broker", viper.GetString("mqtt.broker"), "MQTT broker URL, e.g. tcp://localhost:1883")
	rootCmd.PersistentFlags().StringVar(&settings.MQTT.Topic, "mqtt-topic", viper.GetString("mqtt.topic"), "Base MQTT topic for host bridge operations")
	rootCmd.PersistentFlags().BoolVar(&settings.HTTP.Enabled, "http-enabled", viper.GetBool("http.enabled"), "Enable the read-only status endpoint")
	rootCmd.PersistentFlags().StringVar(&settings.HTTP.Addr, "http-addr", viper.GetString("http.addr"), "Address the status endpoint listens on")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
