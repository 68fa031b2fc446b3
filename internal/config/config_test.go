// internal/config/config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "SERVER_NAME", "VOICESTYLE_PROFILE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()

	assert.Equal(t, "matt-vst-lfr", cfg.Server.Name)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Profile.Path)
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8123")
	t.Setenv("SERVER_NAME", "custom")
	t.Setenv("VOICESTYLE_PROFILE", "/tmp/profile.yaml")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "custom", cfg.Server.Name)
	assert.Equal(t, "/tmp/profile.yaml", cfg.Profile.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDefaultConfig_InvalidPortIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")

	cfg := DefaultConfig()
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	validConfigPath := filepath.Join(tempDir, "config.yaml")
	validConfig := `
server:
  name: "Test Server"
  port: 8080
  shutdown_timeout: 2s
profile:
  path: "/etc/voicestyle/profile.yaml"
log:
  level: "warn"
`
	require.NoError(t, os.WriteFile(validConfigPath, []byte(validConfig), 0o600))

	t.Run("ValidConfig", func(t *testing.T) {
		cfg, err := LoadFromFile(validConfigPath)
		require.NoError(t, err)
		assert.Equal(t, "Test Server", cfg.Server.Name)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "1.0.0", cfg.Server.Version, "Unset fields keep their defaults.")
		assert.Equal(t, "/etc/voicestyle/profile.yaml", cfg.Profile.Path)
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("EnvironmentWinsOverFile", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		cfg, err := LoadFromFile(validConfigPath)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(tempDir, "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		badPath := filepath.Join(tempDir, "bad.yaml")
		require.NoError(t, os.WriteFile(badPath, []byte("server: [unclosed"), 0o600))
		_, err := LoadFromFile(badPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file YAML")
	})
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.Server.Name = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.ShutdownTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}
