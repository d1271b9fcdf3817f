// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup applies the configured level and a text formatter to the standard
// logrus logger. Unknown levels fall back to info. When verbose is set the
// level is forced to debug and caller information is included.
func Setup(out io.Writer, level string, verbose bool) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	logger.SetReportCaller(verbose)

	return logger
}
