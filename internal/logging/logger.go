// Package logging builds the process-wide structured logger.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a JSON-formatted logrus logger at the given level. An
// unrecognized level falls back to info so a typo in LOG_LEVEL never
// silences the process.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
