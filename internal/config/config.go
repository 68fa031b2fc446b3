// Package config handles loading, parsing, and validating application configuration.
// It defines the structure for configuration settings, provides default values,
// loads settings from YAML files, and applies overrides from environment variables.
// file: internal/config/config.go.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultPort is the HTTP port used when neither the config file nor PORT set one.
const DefaultPort = 3000

// ServerConfig contains settings shared by every exposure surface.
type ServerConfig struct {
	// Name is the implementation name reported to MCP clients and in service descriptors.
	Name string `yaml:"name"`
	// Version is the implementation version reported to clients.
	Version string `yaml:"version"`
	// Port is the HTTP listener port. Ignored by the stdio surfaces.
	Port int `yaml:"port"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProfileConfig selects the voice profile source.
type ProfileConfig struct {
	// Path names a YAML or JSON profile document. Empty means the built-in profile.
	// Supports '~' expansion.
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Profile ProfileConfig `yaml:"profile"`
	Log     LogConfig     `yaml:"log"`
}

// DefaultConfig returns a configuration populated with default values,
// with environment overrides applied on top.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Name:            "matt-vst-lfr",
			Version:         "1.0.0",
			Port:            DefaultPort,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
	applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
	return cfg
}

// LoadFromFile loads configuration from the specified YAML file path.
// It starts with default values, merges the values from the YAML file,
// and finally applies any environment variable overrides.
func LoadFromFile(path string) (*Config, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path comes from a command-line flag.
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", expanded)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", expanded)
	}

	applyEnvironmentOverrides(cfg, logging.GetLogger("config_load"))
	if cfg.Profile.Path != "" {
		if cfg.Profile.Path, err = expandHome(cfg.Profile.Path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks the settings every surface depends on.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.Newf("server.shutdown_timeout %s must not be negative", c.Server.ShutdownTimeout)
	}
	return nil
}

// expandHome replaces a leading '~' with the user's home directory.
func expandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory to expand path")
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// applyEnvironmentOverrides applies configuration overrides from environment variables.
// Environment variables take precedence over values set in configuration files or defaults.
func applyEnvironmentOverrides(config *Config, logger logging.Logger) {
	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port < 65536 {
			logger.Debug("Overriding server port from environment.", "envVar", "PORT", "value", port)
			config.Server.Port = port
		} else {
			logger.Warn("Invalid PORT environment variable ignored.", "value", portStr, "error", err)
		}
	}
	if serverName := os.Getenv("SERVER_NAME"); serverName != "" {
		logger.Debug("Overriding server name from environment.", "envVar", "SERVER_NAME", "value", serverName)
		config.Server.Name = serverName
	}
	if profilePath := os.Getenv("VOICESTYLE_PROFILE"); profilePath != "" {
		logger.Debug("Overriding profile path from environment.", "envVar", "VOICESTYLE_PROFILE", "value", profilePath)
		config.Profile.Path = profilePath
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
