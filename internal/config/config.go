// Package config handles configuration for companion.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/diogo/companion/internal/models"
)

// Environment variables that override the config file
const (
	EnvAPIURL   = "COMPANION_API_URL"
	EnvHome     = "COMPANION_HOME"
	EnvLogLevel = "COMPANION_LOG_LEVEL"
	EnvStorage  = "COMPANION_STORAGE"
)

// Storage backends
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "dark", "light", "dracula", "notty" or a JSON theme path
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// StorageConfig selects the durable medium for settings
type StorageConfig struct {
	Backend string `json:"backend"`        // "file" or "sqlite"
	Path    string `json:"path,omitempty"` // Directory (file) or database file (sqlite); empty = data dir
}

// SpeechConfig configures the local speech engines
type SpeechConfig struct {
	// SynthesisCommand forces a TTS command (say, espeak-ng, espeak, spd-say).
	// Empty auto-detects the first one installed.
	SynthesisCommand string `json:"synthesis_command,omitempty"`
	// RecognitionCommand is a program that prints recognized speech, one result per line.
	// Empty means voice input is unavailable.
	RecognitionCommand string   `json:"recognition_command,omitempty"`
	VoiceMarkers       []string `json:"voice_markers,omitempty"`
	Rate               float64  `json:"rate"`
}

// LogConfig configures the log file
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"` // Empty = <data dir>/logs/companion_<date>.log
}

// Config represents the user configuration
type Config struct {
	APIBaseURL string `json:"api_base_url"`
	// RequestTimeoutSeconds bounds every service request. A timeout is reported as a
	// transport failure.
	RequestTimeoutSeconds int            `json:"request_timeout_seconds"`
	CopyToClipboard       bool           `json:"copy_to_clipboard"`
	TUITheme              string         `json:"tui_theme,omitempty"`
	Storage               StorageConfig  `json:"storage"`
	Speech                SpeechConfig   `json:"speech"`
	Log                   LogConfig      `json:"log"`
	Markdown              MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		APIBaseURL:            models.DefaultBaseURL,
		RequestTimeoutSeconds: 30,
		CopyToClipboard:       false,
		TUITheme:              "tokyonight",
		Storage: StorageConfig{
			Backend: StorageFile,
		},
		Speech: SpeechConfig{
			VoiceMarkers: []string{"Female", "Samantha", "Joanna"},
			Rate:         0.9,
		},
		Log: LogConfig{
			Level: "info",
		},
		Markdown: DefaultMarkdownConfig(),
	}
}

// RequestTimeout returns the request timeout as a duration
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks values that cannot be repaired silently
func (c Config) Validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api_base_url must start with http:// or https://, got %q", c.APIBaseURL)
	}
	switch c.Storage.Backend {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)", c.Storage.Backend, StorageFile, StorageSQLite)
	}
	return nil
}

// GetConfigDir returns the data directory path. COMPANION_HOME overrides ~/.companion.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".companion"), nil
}

// EnsureConfigDir creates the data directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk and applies environment overrides.
// A .env file in the working directory is read first, if present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	configPath, err := GetConfigPath()
	if err != nil {
		cfg := DefaultConfig()
		applyEnv(&cfg)
		return cfg, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from an explicit path
func LoadConfigFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		applyEnv(&cfg)
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = DefaultConfig()
		applyEnv(&cfg)
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		cfg.Storage.Backend = v
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
