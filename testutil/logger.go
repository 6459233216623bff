package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// GetTestLogger only prints errors so that failing iterations stay visible
// in test output.
func GetTestLogger(t *testing.T) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	require.NoError(t, err)

	return logger
}
