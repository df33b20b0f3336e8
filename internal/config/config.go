// Package config handles configuration loading and management for loom.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for loom.
type Config struct {
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Runs       RunsConfig       `mapstructure:"runs"`
	TUI        TUIConfig        `mapstructure:"tui"`
}

// WorkflowConfig holds orchestration-loop settings.
type WorkflowConfig struct {
	// MaxIterations bounds the feedback loop per feature.
	MaxIterations int `mapstructure:"max_iterations"`
	// PhaseTimeout is the wall-clock budget per phase.
	PhaseTimeout time.Duration `mapstructure:"phase_timeout"`
	// Root is the directory holding feature workspaces.
	Root string `mapstructure:"root"`
}

// ClassifierConfig holds failure-classification settings.
type ClassifierConfig struct {
	// RulesPath points at a YAML rule table overriding the built-in one.
	// Empty means use the built-in rules.
	RulesPath string `mapstructure:"rules_path"`
}

// RunsConfig holds run-history settings.
type RunsConfig struct {
	// DBPath is the run-history database path. Empty means the default
	// location under the project's .loom directory.
	DBPath string `mapstructure:"db_path"`
	// Retention is how long finished runs are kept before purge.
	Retention time.Duration `mapstructure:"retention"`
}

// TUIConfig holds watch-view display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (LOOM_*)
// 2. Project config (.loom.yaml in current directory or parent)
// 3. User config (~/.config/loom/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("LOOM")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Classifier.RulesPath = os.ExpandEnv(cfg.Classifier.RulesPath)
	cfg.Runs.DBPath = os.ExpandEnv(cfg.Runs.DBPath)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Workflow: WorkflowConfig{
			MaxIterations: 5,
			PhaseTimeout:  30 * time.Minute,
			Root:          ".loom",
		},
		Runs: RunsConfig{
			Retention: 30 * 24 * time.Hour,
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("workflow.max_iterations", 5)
	v.SetDefault("workflow.phase_timeout", "30m")
	v.SetDefault("workflow.root", ".loom")

	v.SetDefault("classifier.rules_path", "")

	v.SetDefault("runs.db_path", "")
	v.SetDefault("runs.retention", "720h")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for loom.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "loom")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "loom")
	}
	return filepath.Join(home, ".config", "loom")
}

// findProjectConfig searches for .loom.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".loom.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
