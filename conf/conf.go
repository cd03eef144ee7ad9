package conf

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LoadConfig reads the worker configuration
// Every key can be overridden with an APOD_-prefixed environment variable, e.g. APOD_FEED_URL
func LoadConfig() {
	log.Debug("Reading config file")
	viper.SetConfigName("apod-config")
	viper.AddConfigPath("$HOME/.apod-frame")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./.apod-frame")

	setDefaults()

	viper.SetEnvPrefix("APOD")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		// The config file is optional as long as the required values come from the environment
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
		log.Debug("No config file found, relying on defaults and environment")
	}

	setLoggerLevel()
}

func setDefaults() {
	viper.SetDefault("feed_url", "https://apod.me/en.rss")
	viper.SetDefault("db_path", "./data/apod.db")
	viper.SetDefault("base_url", "https://apod-frame.replit.app")
	viper.SetDefault("share_page_url", "https://apod-frame.replit.app/share")
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("log_level", "info")
}

func setLoggerLevel() {
	switch viper.GetString("log_level") {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "panic":
		log.SetLevel(log.PanicLevel)
	case "fatal":
		log.SetLevel(log.FatalLevel)
	}
}
