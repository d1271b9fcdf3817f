package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupLevels(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Setup(os.Stderr, "info", false) })

	tests := []struct {
		level   string
		verbose bool
		want    logrus.Level
	}{
		{"INFO", false, logrus.InfoLevel},
		{"warn", false, logrus.WarnLevel},
		{" Error ", false, logrus.ErrorLevel},
		{"nonsense", false, logrus.InfoLevel},
		{"error", true, logrus.DebugLevel},
	}
	for _, tt := range tests {
		logger := Setup(&buf, tt.level, tt.verbose)
		assert.Equal(t, tt.want, logger.GetLevel(), "level %q verbose %v", tt.level, tt.verbose)
	}
}

func TestSetupWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Setup(os.Stderr, "info", false) })

	logger := Setup(&buf, "info", false)
	logger.WithField("request_id", "abc").Info("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "request_id=abc")
}
