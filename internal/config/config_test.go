package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvLogLevel, EnvStorage} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("Expected default base URL 'http://localhost:5000', got '%s'", cfg.APIBaseURL)
	}
	if cfg.Storage.Backend != StorageFile {
		t.Errorf("Expected file storage by default, got '%s'", cfg.Storage.Backend)
	}
	if cfg.Speech.Rate != 0.9 {
		t.Errorf("Expected speech rate 0.9, got %v", cfg.Speech.Rate)
	}
	if len(cfg.Speech.VoiceMarkers) == 0 || cfg.Speech.VoiceMarkers[0] != "Female" {
		t.Errorf("Unexpected voice markers: %v", cfg.Speech.VoiceMarkers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v", cfg.RequestTimeout())
	}
	cfg.RequestTimeoutSeconds = 0
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() with zero = %v", cfg.RequestTimeout())
	}
	cfg.RequestTimeoutSeconds = 5
	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("RequestTimeout() = %v", cfg.RequestTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"https", func(c *Config) { c.APIBaseURL = "https://companion.example.com" }, false},
		{"no scheme", func(c *Config) { c.APIBaseURL = "localhost:5000" }, true},
		{"sqlite", func(c *Config) { c.Storage.Backend = StorageSQLite }, false},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "redis" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetConfigDir_HomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("GetConfigDir() = %s, want %s", got, dir)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if path != filepath.Join(dir, "config.json") {
		t.Errorf("GetConfigPath() = %s", path)
	}
}

func TestLoadConfigFrom_Missing(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}
	if cfg.APIBaseURL != DefaultConfig().APIBaseURL {
		t.Errorf("Expected defaults, got base URL %s", cfg.APIBaseURL)
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if cfg.APIBaseURL != DefaultConfig().APIBaseURL {
		t.Errorf("Expected defaults on parse error, got %s", cfg.APIBaseURL)
	}
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"api_base_url": "http://file.example:5000/", "log": {"level": "debug"}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvStorage, "")

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://file.example:5000" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level from file, got %s", cfg.Log.Level)
	}

	t.Setenv(EnvAPIURL, "http://env.example:8080")
	t.Setenv(EnvStorage, StorageSQLite)

	cfg, err = LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://env.example:8080" {
		t.Errorf("Expected env override, got %s", cfg.APIBaseURL)
	}
	if cfg.Storage.Backend != StorageSQLite {
		t.Errorf("Expected sqlite backend from env, got %s", cfg.Storage.Backend)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	cfg := DefaultConfig()
	cfg.APIBaseURL = "http://saved.example:9000"
	cfg.Speech.SynthesisCommand = "espeak-ng"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file permissions = %o, want 600", info.Mode().Perm())
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded.APIBaseURL != cfg.APIBaseURL {
		t.Errorf("APIBaseURL = %s, want %s", loaded.APIBaseURL, cfg.APIBaseURL)
	}
	if loaded.Speech.SynthesisCommand != "espeak-ng" {
		t.Errorf("SynthesisCommand = %s", loaded.Speech.SynthesisCommand)
	}
}
