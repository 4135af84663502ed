// Package config builds the settings for a single byobu-select run.
//
// Precedence (highest to lowest):
//  1. Environment variables (SHELL, BYOBU_*, OTEL_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. $BYOBU_CONFIG_DIR/select.yaml
//  2. ~/.config/byobu-select/config.yaml
//
// Marker files (.reuse-session, .always-select) are read once per Load and
// never cached across runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultShell is used when $SHELL is unset.
	DefaultShell = "/bin/bash"
	// DefaultPrefix is the install prefix holding share/byobu and share/doc/byobu.
	DefaultPrefix = "/usr"

	reuseMarker        = ".reuse-session"
	alwaysSelectMarker = ".always-select"
)

// Config holds all settings for a byobu-select run.
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	LogFile  string `yaml:"log_file"`  // empty: stderr (or run dir when debugging)

	// TUI
	Theme string `yaml:"theme"` // dark, light

	// Binaries
	TmuxBinary    string `yaml:"tmux_binary"`
	WrapperBinary string `yaml:"wrapper_binary"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Resolved from the environment (not from YAML).
	Shell     string `yaml:"-"`
	Home      string `yaml:"-"`
	ConfigDir string `yaml:"-"`
	RunDir    string `yaml:"-"`
	Prefix    string `yaml:"-"`

	// ReuseSessions selects "new client view of the same session" attach
	// instead of plain reattach.
	ReuseSessions bool `yaml:"-"`
	// AlwaysSelect forces the NEW/SHELL choices even with at most one session.
	AlwaysSelect bool `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		LogLevel:      "warn",
		Theme:         "dark",
		TmuxBinary:    "tmux",
		WrapperBinary: "byobu",
		Shell:         DefaultShell,
		Prefix:        DefaultPrefix,
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Directories come first: the config file lives inside ConfigDir.
	resolveDirs(cfg)

	if path, data, err := findConfigFile(cfg.ConfigDir); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	cfg.ReuseSessions = exists(cfg.ReuseMarkerPath())
	cfg.AlwaysSelect = exists(cfg.AlwaysSelectMarkerPath())

	return cfg, nil
}

// resolveDirs fills Shell, Home, ConfigDir, RunDir and Prefix from the environment.
func resolveDirs(cfg *Config) {
	cfg.Home = os.Getenv("HOME")
	if cfg.Home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Home = home
		}
	}
	if v := os.Getenv("SHELL"); v != "" {
		cfg.Shell = v
	}
	cfg.ConfigDir = envOrDefault("BYOBU_CONFIG_DIR", filepath.Join(cfg.Home, ".byobu"))
	cfg.RunDir = envOrDefault("BYOBU_RUN_DIR", filepath.Join(cfg.Home, ".cache", "byobu"))
	cfg.Prefix = envOrDefault("BYOBU_PREFIX", cfg.Prefix)
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile(configDir string) (string, []byte, error) {
	// 1. Byobu config dir
	if configDir != "" {
		path := filepath.Join(configDir, "select.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "byobu-select", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, errors.New("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFile != "" {
		cfg.LogFile = file.LogFile
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.TmuxBinary != "" {
		cfg.TmuxBinary = file.TmuxBinary
	}
	if file.WrapperBinary != "" {
		cfg.WrapperBinary = file.WrapperBinary
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("BYOBU_SELECT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BYOBU_SELECT_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("BYOBU_SELECT_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}

// ReuseMarkerPath is the marker file that enables session reuse.
func (c *Config) ReuseMarkerPath() string {
	return filepath.Join(c.ConfigDir, reuseMarker)
}

// AlwaysSelectMarkerPath is the marker file that forces the selection menu.
func (c *Config) AlwaysSelectMarkerPath() string {
	return filepath.Join(c.ConfigDir, alwaysSelectMarker)
}

// ShareDir is the system-wide byobu data directory.
func (c *Config) ShareDir() string {
	return filepath.Join(c.Prefix, "share", "byobu")
}

// DocDir is the system-wide byobu documentation directory.
func (c *Config) DocDir() string {
	return filepath.Join(c.Prefix, "share", "doc", "byobu")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
