package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mdclip/pkg/errors"

	"gopkg.in/yaml.v3"
)

var envKeys = []string{
	"MDCLIP_ENGINE_MODE",
	"MDCLIP_ENGINE_ATTEMPTS",
	"MDCLIP_ENGINE_DELAY",
	"MDCLIP_RENDERER",
	"MDCLIP_CODEC",
	"MDCLIP_HISTORY",
	"MDCLIP_LOG_LEVEL",
}

// clearEnv unsets every MDCLIP_* variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// contains checks if a string contains a substring
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "mdclip", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	return configPath
}

func TestLoad_Success(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `engine:
  mode: native
  attempts: 5
  delay: 250ms
render:
  mode: commonmark
codec: pandoc
history:
  enabled: false
  path: /tmp/mdclip-history.db
  retention: 48h
`)

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.Engine.Mode != "native" {
		t.Errorf("Expected engine mode 'native', got '%s'", cfg.Engine.Mode)
	}
	if cfg.Engine.Attempts != 5 {
		t.Errorf("Expected engine attempts 5, got %d", cfg.Engine.Attempts)
	}
	if cfg.Engine.Delay != 250*time.Millisecond {
		t.Errorf("Expected engine delay 250ms, got %s", cfg.Engine.Delay)
	}
	if cfg.Render.Mode != "commonmark" {
		t.Errorf("Expected render mode 'commonmark', got '%s'", cfg.Render.Mode)
	}
	if cfg.Codec != "pandoc" {
		t.Errorf("Expected codec 'pandoc', got '%s'", cfg.Codec)
	}
	if cfg.History.Enabled {
		t.Error("Expected history to be disabled")
	}
	if cfg.HistoryPath() != "/tmp/mdclip-history.db" {
		t.Errorf("Expected history path '/tmp/mdclip-history.db', got '%s'", cfg.HistoryPath())
	}
	if cfg.History.Retention != 48*time.Hour {
		t.Errorf("Expected retention 48h, got %s", cfg.History.Retention)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `engine:
  mode: native
`)

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.Engine.Attempts != 3 {
		t.Errorf("Expected default attempts 3, got %d", cfg.Engine.Attempts)
	}
	if cfg.Engine.Delay != time.Second {
		t.Errorf("Expected default delay 1s, got %s", cfg.Engine.Delay)
	}
	if cfg.Render.Mode != "subset" {
		t.Errorf("Expected default render mode 'subset', got '%s'", cfg.Render.Mode)
	}
	if cfg.Codec != "auto" {
		t.Errorf("Expected default codec 'auto', got '%s'", cfg.Codec)
	}
	if !cfg.History.Enabled {
		t.Error("Expected history to be enabled by default")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)

	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	policy := cfg.RetryPolicy()
	if policy.Attempts != 3 || policy.Delay != time.Second {
		t.Errorf("RetryPolicy() = %+v, want 3 attempts with 1s delay", policy)
	}
	if cfg.Engine.Mode != "sandbox" {
		t.Errorf("Expected default engine mode 'sandbox', got '%s'", cfg.Engine.Mode)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "engine: [not, a, map\n")

	_, err := loadFromPath(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
	if !errors.IsKind(err, errors.ExitCodeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "engine mode", content: "engine:\n  mode: remote\n", wantMsg: "engine mode"},
		{name: "attempts", content: "engine:\n  attempts: 0\n", wantMsg: "attempts"},
		{name: "delay", content: "engine:\n  delay: -1s\n", wantMsg: "delay"},
		{name: "render mode", content: "render:\n  mode: gfm\n", wantMsg: "render mode"},
		{name: "codec", content: "codec: word\n", wantMsg: "codec"},
		{name: "retention", content: "history:\n  retention: -1h\n", wantMsg: "retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadFromPath(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.IsKind(err, errors.ExitCodeConfig) {
				t.Errorf("Expected config error, got %v", err)
			}
			if !contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error mentioning %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLoad_WithEnvOverrides(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `engine:
  mode: sandbox
codec: none
`)

	t.Setenv("MDCLIP_ENGINE_MODE", "native")
	t.Setenv("MDCLIP_ENGINE_ATTEMPTS", "7")
	t.Setenv("MDCLIP_ENGINE_DELAY", "10ms")
	t.Setenv("MDCLIP_RENDERER", "commonmark")
	t.Setenv("MDCLIP_CODEC", "textutil")
	t.Setenv("MDCLIP_HISTORY", "false")
	t.Setenv("MDCLIP_LOG_LEVEL", "debug")

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.Engine.Mode != "native" {
		t.Errorf("Expected engine mode from env 'native', got '%s'", cfg.Engine.Mode)
	}
	if cfg.Engine.Attempts != 7 {
		t.Errorf("Expected attempts from env 7, got %d", cfg.Engine.Attempts)
	}
	if cfg.Engine.Delay != 10*time.Millisecond {
		t.Errorf("Expected delay from env 10ms, got %s", cfg.Engine.Delay)
	}
	if cfg.Render.Mode != "commonmark" {
		t.Errorf("Expected renderer from env 'commonmark', got '%s'", cfg.Render.Mode)
	}
	if cfg.Codec != "textutil" {
		t.Errorf("Expected codec from env 'textutil', got '%s'", cfg.Codec)
	}
	if cfg.History.Enabled {
		t.Error("Expected history disabled from env")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level from env 'debug', got '%s'", cfg.LogLevel)
	}
}

func TestLoad_InvalidEnvValuesAreIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("MDCLIP_ENGINE_ATTEMPTS", "many")
	t.Setenv("MDCLIP_ENGINE_DELAY", "soon")
	t.Setenv("MDCLIP_HISTORY", "maybe")

	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if cfg.Engine.Attempts != 3 || cfg.Engine.Delay != time.Second || !cfg.History.Enabled {
		t.Errorf("Expected defaults when env values do not parse, got %+v", cfg)
	}
}

func TestGetConfigPath_WithXDG(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() failed: %v", err)
	}
	if !contains(path, filepath.Join("mdclip", "config.yaml")) {
		t.Errorf("GetConfigPath() = %q, want it to end in mdclip/config.yaml", path)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("MDCLIP_TEST_VALUE", "set")

	if got := getEnv("MDCLIP_TEST_VALUE", "default"); got != "set" {
		t.Errorf("getEnv() = %q, want %q", got, "set")
	}
	if got := getEnv("MDCLIP_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want %q", got, "default")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Engine.Delay = 2 * time.Second
	cfg.Codec = "none"
	if err := saveToPath(configPath, cfg); err != nil {
		t.Fatalf("saveToPath() failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Saved config is not valid YAML: %v", err)
	}
	if raw["codec"] != "none" {
		t.Errorf("Saved codec = %v, want none", raw["codec"])
	}

	loaded, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() failed: %v", err)
	}
	if loaded.Engine.Delay != 2*time.Second {
		t.Errorf("Loaded delay = %s, want 2s", loaded.Engine.Delay)
	}
}
