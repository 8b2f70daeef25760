package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileConfig is the layout of the config file.
type fileConfig struct {
	InstallPath  string `toml:"install_path"`
	BackupDir    string `toml:"backup_dir"`
	WorkDir      string `toml:"work_dir"`
	SwapsFile    string `toml:"swaps_file"`
	APIBaseURL   string `toml:"api_base_url"`
	RequestDelay string `toml:"request_delay"`
	ArtOnly      bool   `toml:"art_only"`
	Debug        bool   `toml:"debug"`
	LogFormat    string `toml:"log_format"`
}

// WriteDefault writes a config file holding the default settings to path.
// An existing file is only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) (err error) {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("config file %s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	defaults := Defaults()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(fileConfig{
		InstallPath:  defaults.InstallPath,
		BackupDir:    defaults.BackupDir,
		WorkDir:      defaults.WorkDir,
		SwapsFile:    defaults.SwapsFile,
		APIBaseURL:   defaults.APIBaseURL,
		RequestDelay: defaults.RequestDelay.String(),
		ArtOnly:      defaults.ArtOnly,
		Debug:        defaults.Debug,
		LogFormat:    defaults.LogFormat,
	}); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}
