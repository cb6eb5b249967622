package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcollab-dev/tcollab/internal/config"
)

func TestRunInit_WritesConfigAndPublicDir(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, runInit(dir, "Econ 101", ":8080"))

	cfg, err := config.Load(filepath.Join(dir, "tcollab.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Econ 101", cfg.Session.DefaultTitle)
	assert.Equal(t, ":8080", cfg.Server.Listen)

	info, err := os.Stat(filepath.Join(dir, "public"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunInit_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "", ""))

	err := runInit(dir, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoadConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Listen)
	assert.Equal(t, "Main Board", cfg.Session.DefaultTitle)
}

func TestNewRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["serve"])
	assert.True(t, names["export"])
}
