// Package config loads the settings of the tool from defaults, an optional
// config file, environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "SETSWAPPER"

// Log formats.
const (
	LogFormatAuto    = "auto"
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds the settings of a run.
type Config struct {
	// InstallPath is the game installation folder.
	InstallPath string `mapstructure:"install_path"`
	// BackupDir receives the pristine copies of the modified containers.
	BackupDir string `mapstructure:"backup_dir"`
	// WorkDir is where the downloaded images are stored during a run.
	WorkDir string `mapstructure:"work_dir"`
	// SwapsFile is the swap plan to apply.
	SwapsFile    string        `mapstructure:"swaps_file"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
	// ArtOnly leaves the display names untouched.
	ArtOnly   bool   `mapstructure:"art_only"`
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
}

// Flag names bound to each key, when the flag is defined.
var flagKeys = map[string]string{
	"install_path": "install",
	"backup_dir":   "backup-dir",
	"work_dir":     "work-dir",
	"swaps_file":   "swaps",
	"api_base_url": "api-url",
	"art_only":     "art-only",
	"debug":        "debug",
	"log_format":   "log-format",
}

// Defaults returns the default settings.
func Defaults() Config {
	home, _ := os.UserHomeDir()

	return Config{
		BackupDir:    filepath.Join(home, "MTGA_Swapper_Backups"),
		WorkDir:      os.TempDir(),
		SwapsFile:    filepath.Join(home, "Downloads", "swaps.json"),
		APIBaseURL:   "https://api.scryfall.com",
		RequestDelay: 100 * time.Millisecond,
		LogFormat:    LogFormatAuto,
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or its default path.
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// DefaultPath returns the path of the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(GetXDGConfigHome(), "mtga-setswapper", "config.toml")
}

// Load reads the configuration. When path is empty, the file at DefaultPath
// is read if it exists. Flags that were set on the command line take
// precedence over everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("install_path", defaults.InstallPath)
	v.SetDefault("backup_dir", defaults.BackupDir)
	v.SetDefault("work_dir", defaults.WorkDir)
	v.SetDefault("swaps_file", defaults.SwapsFile)
	v.SetDefault("api_base_url", defaults.APIBaseURL)
	v.SetDefault("request_delay", defaults.RequestDelay.String())
	v.SetDefault("art_only", defaults.ArtOnly)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("log_format", defaults.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("couldn't bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if _, err := os.Stat(DefaultPath()); err == nil {
		v.SetConfigFile(DefaultPath())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", DefaultPath(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.InstallPath = expandHome(cfg.InstallPath)
	cfg.BackupDir = expandHome(cfg.BackupDir)
	cfg.WorkDir = expandHome(cfg.WorkDir)
	cfg.SwapsFile = expandHome(cfg.SwapsFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that can't be used as-is.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case LogFormatAuto, LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	if c.RequestDelay < 0 {
		return errors.New("request_delay can't be negative")
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_base_url %q must be an HTTP(S) URL", c.APIBaseURL)
	}

	if c.BackupDir == "" {
		return errors.New("backup_dir can't be empty")
	}

	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
