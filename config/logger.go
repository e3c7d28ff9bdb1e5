package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the standard logrus logger and returns it.
func SetupLogger(cfg *Config) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
