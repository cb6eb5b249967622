package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Listen = ":8080"
	cfg.Audit.LogPath = "logs/mutations.csv"

	path := filepath.Join(t.TempDir(), "tcollab.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", got.Server.Listen)
	assert.Equal(t, cfg.Server.PublicDir, got.Server.PublicDir)
	assert.Equal(t, cfg.Session.DefaultTitle, got.Session.DefaultTitle)
	assert.Equal(t, "logs/mutations.csv", got.Audit.LogPath)
	assert.Equal(t, cfg.Log.Level, got.Log.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":3000", cfg.Server.Listen)
	assert.Equal(t, "public", cfg.Server.PublicDir)
	assert.Equal(t, "Main Board", cfg.Session.DefaultTitle)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Audit.LogPath)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "tcollab.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, ":3000")
	assert.Contains(t, contents, "public_dir: public")
	assert.Contains(t, contents, "default_title: Main Board")
	assert.Contains(t, contents, "level: info")
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Log.Level = tt.level
		assert.Equal(t, tt.want, cfg.SlogLevel())
	}
}
