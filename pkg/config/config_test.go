package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileAndConvert(t *testing.T) {
	path := writeConfig(t, `
uid: "7FF0:00000001"
max_retries: 5
response_timeout: 4ms
queue_capacity: 16
poll_timeout: 20ms
supported_pids:
  - "0x1000"
  - "4096"
`)

	fc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7FF0:00000001", fc.UID)
	assert.Equal(t, 5, fc.MaxRetries)
	assert.Equal(t, 4*time.Millisecond, fc.ResponseTimeout)

	ctlCfg, err := ToControllerConfig(fc)
	require.NoError(t, err)
	assert.Equal(t, 5, ctlCfg.MaxRetries)
	assert.Equal(t, 4*time.Millisecond, ctlCfg.ResponseTimeout)

	respCfg, err := ToResponderConfig(fc)
	require.NoError(t, err)
	assert.Equal(t, 16, respCfg.QueueCapacity)
	assert.Equal(t, 20*time.Millisecond, respCfg.PollTimeout)
	require.Len(t, respCfg.SupportedPIDs, 2)
	assert.Equal(t, uint16(0x1000), uint16(respCfg.SupportedPIDs[0]))
	assert.Equal(t, uint16(4096), uint16(respCfg.SupportedPIDs[1]))
}

func TestLoadFileMissingUIDFailsValidation(t *testing.T) {
	path := writeConfig(t, `
max_retries: 3
response_timeout: 3ms
queue_capacity: 8
poll_timeout: 10ms
`)

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestDecodeMapAppliesDurationHook(t *testing.T) {
	fc, err := DecodeMap(map[string]any{
		"uid":              "7FF0:000000FE",
		"max_retries":      3,
		"response_timeout": "3ms",
		"queue_capacity":   8,
		"poll_timeout":     "10ms",
	})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, fc.ResponseTimeout)
	assert.Equal(t, 10*time.Millisecond, fc.PollTimeout)
}

func TestWithMetricsAttachesRecorder(t *testing.T) {
	fc, err := DecodeMap(map[string]any{
		"uid":              "7FF0:000000FE",
		"max_retries":      3,
		"response_timeout": "3ms",
		"queue_capacity":   8,
		"poll_timeout":     "10ms",
	})
	require.NoError(t, err)
	ctlCfg, err := ToControllerConfig(fc)
	require.NoError(t, err)
	assert.Nil(t, ctlCfg.Metrics)

	ctlCfg = WithMetrics(ctlCfg, nil)
	assert.Nil(t, ctlCfg.Metrics)
}
