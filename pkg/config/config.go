package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"mdclip/pkg/engine"
	"mdclip/pkg/errors"
	"mdclip/pkg/history"
	"mdclip/pkg/render"
	"mdclip/pkg/richtext"

	"gopkg.in/yaml.v3"
)

// Config holds the complete configuration
type Config struct {
	Engine   EngineConfig  `yaml:"engine"`
	Render   RenderConfig  `yaml:"render"`
	Codec    string        `yaml:"codec"`
	History  HistoryConfig `yaml:"history"`
	LogLevel string        `yaml:"log_level,omitempty"`
}

type EngineConfig struct {
	Mode     string        `yaml:"mode"`
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

type RenderConfig struct {
	Mode string `yaml:"mode"`
}

type HistoryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Path      string        `yaml:"path,omitempty"`
	Retention time.Duration `yaml:"retention"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Mode:     engine.ModeSandbox,
			Attempts: engine.DefaultRetryPolicy.Attempts,
			Delay:    engine.DefaultRetryPolicy.Delay,
		},
		Render:  RenderConfig{Mode: render.ModeSubset},
		Codec:   richtext.ModeAuto,
		History: HistoryConfig{Enabled: true, Retention: history.DefaultRetention},
	}
}

// RetryPolicy returns the engine initialisation policy.
func (c *Config) RetryPolicy() engine.RetryPolicy {
	return engine.RetryPolicy{Attempts: c.Engine.Attempts, Delay: c.Engine.Delay}
}

// HistoryPath returns the configured database path or the default one.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return history.DefaultPath()
}

// Load loads the configuration file, applies environment overrides and
// validates the result.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "mdclip", "config.yaml"), nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return saveToPath(configPath, cfg)
}

func saveToPath(configPath string, cfg *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func loadFromPath(configPath string) (*Config, error) {
	cfg := Default()

	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile reads and parses the config file from the given path
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		// No file: defaults and environment only
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

// applyEnvironmentOverrides applies MDCLIP_* variables over the file values
func applyEnvironmentOverrides(cfg *Config) {
	cfg.Engine.Mode = getEnv("MDCLIP_ENGINE_MODE", cfg.Engine.Mode)
	cfg.Engine.Attempts = getEnvInt("MDCLIP_ENGINE_ATTEMPTS", cfg.Engine.Attempts)
	cfg.Engine.Delay = getEnvDuration("MDCLIP_ENGINE_DELAY", cfg.Engine.Delay)
	cfg.Render.Mode = getEnv("MDCLIP_RENDERER", cfg.Render.Mode)
	cfg.Codec = getEnv("MDCLIP_CODEC", cfg.Codec)
	cfg.History.Enabled = getEnvBool("MDCLIP_HISTORY", cfg.History.Enabled)
	cfg.LogLevel = getEnv("MDCLIP_LOG_LEVEL", cfg.LogLevel)
}

// validateConfig rejects values the converters cannot use
func validateConfig(cfg *Config) error {
	if !slices.Contains(engine.Modes(), cfg.Engine.Mode) {
		return errors.ConfigError(fmt.Sprintf("engine mode %q is not supported. Use one of: %s (or MDCLIP_ENGINE_MODE)",
			cfg.Engine.Mode, strings.Join(engine.Modes(), ", ")))
	}
	if cfg.Engine.Attempts < 1 {
		return errors.ConfigError(fmt.Sprintf("engine attempts must be at least 1, got %d", cfg.Engine.Attempts))
	}
	if cfg.Engine.Delay < 0 {
		return errors.ConfigError(fmt.Sprintf("engine delay must not be negative, got %s", cfg.Engine.Delay))
	}
	if !slices.Contains(render.Modes(), cfg.Render.Mode) {
		return errors.ConfigError(fmt.Sprintf("render mode %q is not supported. Use one of: %s (or MDCLIP_RENDERER)",
			cfg.Render.Mode, strings.Join(render.Modes(), ", ")))
	}
	if !slices.Contains(richtext.Modes(), cfg.Codec) {
		return errors.ConfigError(fmt.Sprintf("codec %q is not supported. Use one of: %s (or MDCLIP_CODEC)",
			cfg.Codec, strings.Join(richtext.Modes(), ", ")))
	}
	if cfg.History.Retention < 0 {
		return errors.ConfigError(fmt.Sprintf("history retention must not be negative, got %s", cfg.History.Retention))
	}
	return nil
}
