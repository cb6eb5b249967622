package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level tcollab.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Audit   AuditConfig   `yaml:"audit"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig controls the HTTP/websocket listener.
type ServerConfig struct {
	Listen    string `yaml:"listen"`     // e.g. ":3000"
	PublicDir string `yaml:"public_dir"` // static board UI assets
}

// SessionConfig seeds the default session.
type SessionConfig struct {
	DefaultTitle string `yaml:"default_title"`
}

// AuditConfig controls the mutation audit trail. An empty path disables it.
type AuditConfig struct {
	LogPath string `yaml:"log_path,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads a tcollab.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new deployment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:    ":3000",
			PublicDir: "public",
		},
		Session: SessionConfig{
			DefaultTitle: "Main Board",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SlogLevel maps the configured level name to a slog.Level, defaulting to
// info for anything unrecognized.
func (c *Config) SlogLevel() slog.Level {
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
