package bootstrap

import (
	"os"

	"medibook/config"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the standard logrus logger from cfg.
// Text output is used when asked for explicitly or in development.
func SetupLogger(cfg config.LogConfig, env string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stdout)

	if cfg.Format == "text" || (cfg.Format == "" && env == "development") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
