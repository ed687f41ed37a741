// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted by [Load].
const EnvVar = "HOTPREVIEW_CONFIG"

// Config is the tooling process configuration.
type Config struct {
	// Listen configures the socket apps connect to.
	Listen ListenConfig `yaml:"listen"`

	// Automation configures the HTTP automation API.
	Automation AutomationConfig `yaml:"automation"`

	// Snapshots configures snapshot capture.
	Snapshots SnapshotsConfig `yaml:"snapshots"`

	// Navigation configures preview navigation.
	Navigation NavigationConfig `yaml:"navigation"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`

	// PinnedProjects lists project paths whose aggregates are pinned at
	// startup and survive the disconnect of their last session.
	PinnedProjects []string `yaml:"pinned_projects"`
}

// ListenConfig configures the app-facing listener.
type ListenConfig struct {
	// Address is the TCP address the tooling listens on.
	// Default: 127.0.0.1:54242
	Address string `yaml:"address"`

	// AppConnectionString is advertised to apps through tooling/getInfo.
	// It is a comma separated list of host:port candidates. Empty means
	// the tooling does not advertise one.
	AppConnectionString string `yaml:"app_connection_string"`
}

// AutomationConfig configures the HTTP automation API.
type AutomationConfig struct {
	// Enabled starts the API alongside the listener.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Address is the TCP address the API binds.
	// Default: 127.0.0.1:54243
	Address string `yaml:"address"`
}

// SnapshotsConfig configures snapshot capture.
type SnapshotsConfig struct {
	// DirectoryName is the directory, relative to the project's
	// directory, that captured images are written under.
	// Default: snapshots
	DirectoryName string `yaml:"directory_name"`

	// Concurrency bounds the number of in-flight snapshot requests per
	// capture. Zero means one per session.
	Concurrency int `yaml:"concurrency"`
}

// NavigationConfig configures preview navigation.
type NavigationConfig struct {
	// BringAppToFront raises the app window before a navigation. It
	// needs a platform foregrounder, which the hotpreview binary does
	// not ship; serve logs a warning when it is set.
	BringAppToFront bool `yaml:"bring_app_to_front"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the default configuration. It is the base a config file
// is merged into, and the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Address: "127.0.0.1:54242",
		},
		Automation: AutomationConfig{
			Enabled: true,
			Address: "127.0.0.1:54243",
		},
		Snapshots: SnapshotsConfig{
			DirectoryName: "snapshots",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the HOTPREVIEW_CONFIG environment
// variable. It fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your hotpreview.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path on top of
// [Default]. Only ${HOME} style path variables are expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Snapshots.DirectoryName = expandVars(c.Snapshots.DirectoryName, vars)
	for i, project := range c.PinnedProjects {
		c.PinnedProjects[i] = expandVars(project, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Values in vars
// take precedence over the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if err := validateAddress(c.Listen.Address); err != nil {
		errs = append(errs, fmt.Errorf("listen.address: %w", err))
	}

	for _, candidate := range strings.Split(c.Listen.AppConnectionString, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if err := validateAddress(candidate); err != nil {
			errs = append(errs, fmt.Errorf("listen.app_connection_string: %w", err))
		}
	}

	if c.Automation.Enabled {
		if err := validateAddress(c.Automation.Address); err != nil {
			errs = append(errs, fmt.Errorf("automation.address: %w", err))
		}
	}

	if c.Snapshots.DirectoryName == "" {
		errs = append(errs, errors.New("snapshots.directory_name is required"))
	} else if filepath.IsAbs(c.Snapshots.DirectoryName) {
		errs = append(errs, fmt.Errorf("snapshots.directory_name must be relative, got %s", c.Snapshots.DirectoryName))
	}

	if c.Snapshots.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("snapshots.concurrency must not be negative, got %d", c.Snapshots.Concurrency))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}

	for i, project := range c.PinnedProjects {
		if project == "" {
			errs = append(errs, fmt.Errorf("pinned_projects[%d] is empty", i))
		}
	}

	return errors.Join(errs...)
}

// LogLevel returns the slog level named by Log.Level. Unknown names map
// to info; Validate rejects them.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func validateAddress(address string) error {
	if address == "" {
		return errors.New("address is required")
	}
	if _, _, err := net.SplitHostPort(address); err != nil {
		return fmt.Errorf("invalid address %q: %w", address, err)
	}
	return nil
}
