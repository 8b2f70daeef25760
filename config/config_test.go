package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	// Empty variables are ignored
	t.Setenv("SETSWAPPER_INSTALL_PATH", "")
	t.Setenv("SETSWAPPER_BACKUP_DIR", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	defaults := Defaults()
	assert.Equal(t, defaults.BackupDir, cfg.BackupDir)
	assert.Equal(t, defaults.SwapsFile, cfg.SwapsFile)
	assert.Equal(t, "https://api.scryfall.com", cfg.APIBaseURL)
	assert.Equal(t, 100*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, LogFormatAuto, cfg.LogFormat)
	assert.False(t, cfg.ArtOnly)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
install_path = "/games/MTGA"
backup_dir = "/backups"
request_delay = "250ms"
art_only = true
`), 0o644))

	t.Setenv("SETSWAPPER_BACKUP_DIR", "/env/backups")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("install", "", "")
	flags.Bool("art-only", false, "")
	require.NoError(t, flags.Parse([]string{"--install", "/flag/MTGA"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "/flag/MTGA", cfg.InstallPath)
	assert.Equal(t, "/env/backups", cfg.BackupDir)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
	// Unset flags don't override the file
	assert.True(t, cfg.ArtOnly)
}

func TestLoadDefaultPath(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "mtga-setswapper", "config.toml")
	assert.Equal(t, path, DefaultPath())

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`log_format = "json"`), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.toml"), nil)
	assert.Error(t, err)

	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_format = "xml"`), 0o644))
	_, err = Load(path, nil)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`api_base_url = "ftp://example.com"`), 0o644))
	_, err = Load(path, nil)
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "backups"), expandHome("~/backups"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}

func TestWriteDefault(t *testing.T) {
	isolate(t)

	path := DefaultPath()
	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false))
	assert.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults().BackupDir, cfg.BackupDir)
	assert.Equal(t, 100*time.Millisecond, cfg.RequestDelay)
}
