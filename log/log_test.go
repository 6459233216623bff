package log_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/oracle-feeder/log"
)

func TestNewRootLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   string
		expected string
	}{
		{format: "json", expected: `"msg":"voted"`},
		{format: "logfmt", expected: "msg=voted"},
		{format: "console", expected: "voted"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := log.NewRootLogger(tt.format, "info", &buf)
			require.NoError(t, err)

			logger.Debug("hidden")
			logger.Info("voted")
			require.NoError(t, logger.Sync())

			require.Contains(t, buf.String(), tt.expected)
			require.NotContains(t, buf.String(), "hidden")
		})
	}
}

func TestNewRootLoggerInvalidArgs(t *testing.T) {
	t.Parallel()

	_, err := log.NewRootLogger("yaml", "info", &bytes.Buffer{})
	require.ErrorContains(t, err, "unrecognized log format")

	_, err = log.NewRootLogger("json", "verbose", &bytes.Buffer{})
	require.ErrorContains(t, err, "unrecognized log level")
}

func TestNewRootLoggerWithFile(t *testing.T) {
	t.Parallel()

	logFile := filepath.Join(t.TempDir(), "logs", "feederd.log")
	logger, err := log.NewRootLoggerWithFile(logFile, "console", "debug")
	require.NoError(t, err)
	logger.Info("started")
	require.FileExists(t, logFile)
}
