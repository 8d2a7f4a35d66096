// Package logging configures the shared logrus logger used across
// arithflowd and arithworker, per SPEC_FULL.md §4.9.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Setup parses level (e.g. "debug", "info", "warn") and installs it as the
// level of logrus's standard logger, along with a text formatter with
// timestamps. An unparsable level falls back to info with a warning.
func Setup(level string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("unrecognized log level, defaulting to info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
