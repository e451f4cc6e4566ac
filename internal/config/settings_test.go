package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, 30, s.HTTP.TimeoutSeconds)
	assert.Empty(t, s.Logging.File)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, 30, s.HTTP.TimeoutSeconds)
}

func TestLoadSettingsValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
logging:
  level: debug
  file: /tmp/bridge.log
http:
  timeoutSeconds: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "/tmp/bridge.log", s.Logging.File)
	assert.Equal(t, 10, s.HTTP.TimeoutSeconds)
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings")
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	t.Setenv("BITBUCKET_MCP_LOG_LEVEL", "TRACE")
	t.Setenv("BITBUCKET_MCP_HTTP_TIMEOUT", "5")

	s, err := LoadSettings(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "trace", s.Logging.Level)
	assert.Equal(t, 5, s.HTTP.TimeoutSeconds)
}

func TestLoadSettingsExpandsLogFile(t *testing.T) {
	t.Setenv("BRIDGE_LOG_DIR", "/var/log/bridge")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "logging:\n  file: ${BRIDGE_LOG_DIR}/server.log\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/bridge/server.log", s.Logging.File)
}

func TestExpandEnvVarsUnsetLeftAlone(t *testing.T) {
	assert.Equal(t, "${DEFINITELY_NOT_SET_XYZ}/x", expandEnvVars("${DEFINITELY_NOT_SET_XYZ}/x"))
}
