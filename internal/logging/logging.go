// Package logging provides component loggers backed by a shared logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l
}

// NewLogger returns a logger tagged with the given component name.
func NewLogger(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// Configure sets the level ("debug", "info", "warn", "error") and format
// ("text" or "json") of every component logger. Unknown levels fall back to info.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
}

// SetOutput redirects all component loggers.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}
