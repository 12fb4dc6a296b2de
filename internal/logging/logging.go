package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging returns the JSON logger. An unknown level falls back to info.
func SetupLogging(level string) *logrus.Logger {
	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}

	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			logger.WithField("level", level).Warn("logging.SetupLogging.unknown level")
		} else {
			logger.Level = parsed
		}
	}

	return &logger
}
