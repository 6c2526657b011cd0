package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger from configuration.
func NewLogger(cfg *Config) *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(os.Stdout)
	if cfg != nil && cfg.LogFormat == "text" {
		lg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		lg.SetFormatter(&logrus.JSONFormatter{})
	}
	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}
	lg.SetLevel(level)
	return lg
}

// LogError writes err with the usual module/function fields.
func LogError(lg *logrus.Logger, module, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	lg.WithFields(fields).Error(err.Error())
}
