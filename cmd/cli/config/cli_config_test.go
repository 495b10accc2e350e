package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
sampling:
  seed: 42
  round_minutes: 15
  infinite_end: "2999-01-01T00:00:00"
server:
  port: 9000
  read_timeout: 2s
log:
  level: debug
  format: json
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), config.Sampling.Seed)
	assert.Equal(t, 15, config.Sampling.RoundMinutes)
	assert.Equal(t, "2999-01-01T00:00:00", config.Sampling.InfiniteEnd)
	assert.Equal(t, constants.DefaultBatchSize, config.Sampling.BatchSize)
	assert.Equal(t, constants.DefaultMaxSupport, config.Sampling.MaxSupport)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, 2*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, constants.DefaultMetricsPort, config.Server.MetricsPort)
	assert.Equal(t, "json", config.Log.Format)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SYNTH_SAMPLING_BATCH_SIZE", "7")
	t.Setenv("SYNTH_SAMPLING_MAX_SUPPORT", "4096")
	path := writeConfig(t, "log:\n  level: warn\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, config.Sampling.BatchSize)
	assert.Equal(t, 4096, config.Sampling.MaxSupport)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestLoadConfigInvalidSampling(t *testing.T) {
	path := writeConfig(t, "sampling:\n  trim_fraction: 0.7\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(false)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, err = LogConfig{Level: "warn", Format: "text"}.NewLogger(true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	_, err = LogConfig{Level: "loud"}.NewLogger(false)
	assert.Error(t, err)

	_, err = LogConfig{Level: "info", Format: "xml"}.NewLogger(false)
	assert.Error(t, err)
}
