// Package config handles the configuration directory, file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskman"

	// ConfigFile is the optional configuration filename inside Dir.
	ConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides (TASKMAN_SERVER, TASKMAN_TIMEOUT).
	EnvPrefix = "TASKMAN"

	// DefaultServer is the API base URL used when nothing else is configured.
	DefaultServer = "http://localhost:8081"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 5 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path. Session entries live here.
	Dir string

	// Server is the base URL of the task API.
	Server string

	// Timeout bounds a single API round trip.
	Timeout time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory
// and default settings. It reads neither the environment nor a config file.
// If configDir is empty, uses XDG_CONFIG_HOME/taskman or $HOME/.config/taskman.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Server: DefaultServer, Timeout: DefaultTimeout}, nil
}

// Load builds a Config from, in order of precedence, the changed flags in fs,
// TASKMAN_* environment variables, Dir/config.yaml and defaults.
//
// Recognised flags: config, server, timeout, quiet, debug.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", DefaultServer)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("quiet", false)
	v.SetDefault("debug", false)

	if fs != nil {
		for _, name := range []string{"config", "server", "timeout", "quiet", "debug"} {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg, err := New(v.GetString("config"))
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(cfg.ConfigPath())
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	cfg.Server = strings.TrimRight(v.GetString("server"), "/")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Quiet = v.GetBool("quiet")
	cfg.Debug = v.GetBool("debug")
	if cfg.Server == "" {
		return nil, errors.New("server URL must not be empty")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout: %s", cfg.Timeout)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the optional configuration file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
