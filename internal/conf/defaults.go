// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "soir")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/soir.log")
	viper.SetDefault("main.log.rotation", string(RotationDaily))
	viper.SetDefault("main.log.maxsize", int64(10*1024*1024))

	viper.SetDefault("engine.samplerate", 48000)
	viper.SetDefault("engine.blocksize", 512)
	viper.SetDefault("engine.controlhz", 100.0)
	viper.SetDefault("engine.bpm", 120.0)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "soir")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.tls.enabled", false)
	viper.SetDefault("mqtt.tls.cacert", "")
	viper.SetDefault("mqtt.tls.clientcert", "")
	viper.SetDefault("mqtt.tls.clientkey", "")
	viper.SetDefault("mqtt.tls.insecureskipverify", false)

	viper.SetDefault("http.enabled", true)
	viper.SetDefault("http.addr", ":9191")

	viper.SetDefault("sampler.packpaths", []string{"~/.config/soir/packs"})

	viper.SetDefault("recording.outputdir", "~/.config/soir/recordings")
}
