// Package config loads skillport settings from flags, SKILLPORT_*
// environment variables and an optional config.yaml, in that order of
// precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/jingkaihe/skillport/pkg/telemetry"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the resolved configuration.
type Config struct {
	// Home holds the history database and the default registry.
	Home     string           `mapstructure:"home"`
	Registry RegistryConfig   `mapstructure:"registry"`
	History  HistoryConfig    `mapstructure:"history"`
	Log      LogConfig        `mapstructure:"log"`
	Watch    WatchConfig      `mapstructure:"watch"`
	Tracing  telemetry.Config `mapstructure:"tracing"`
}

// RegistryConfig locates service manifests.
type RegistryConfig struct {
	// Enabled turns on enrichment for every import.
	Enabled  bool     `mapstructure:"enabled"`
	Paths    []string `mapstructure:"paths"`
	Patterns []string `mapstructure:"patterns"`
}

// HistoryConfig controls the import ledger.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

var envReplacer = strings.NewReplacer(".", "_")

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("home", "")
	v.SetDefault("registry.enabled", false)
	v.SetDefault("registry.paths", []string{})
	v.SetDefault("registry.patterns", registry.DefaultPatterns)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("watch.debounce", 500*time.Millisecond)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", telemetry.DefaultServiceName)
	v.SetDefault("tracing.sampler_type", "always")
	v.SetDefault("tracing.sampler_ratio", 1.0)
}

// NewViper returns a viper instance with defaults, environment binding and
// the config file read. A missing config file is not an error; an explicit
// configFile that cannot be read is.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("SKILLPORT")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", configFile)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.skillport")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}
	return v, nil
}

// Load decodes v into a Config and fills in derived paths.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if cfg.Home == "" {
		if env := os.Getenv("SKILLPORT_HOME"); env != "" {
			cfg.Home = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.Wrap(err, "failed to get home directory")
			}
			cfg.Home = filepath.Join(home, ".skillport")
		}
	}
	if len(cfg.Registry.Paths) == 0 {
		cfg.Registry.Paths = []string{filepath.Join(cfg.Home, "services")}
	}
	if len(cfg.Registry.Patterns) == 0 {
		cfg.Registry.Patterns = registry.DefaultPatterns
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(cfg.Home, "history.db")
	}
	return &cfg, nil
}

// RegistryRoots turns the configured registry paths into load roots.
func (c *Config) RegistryRoots() []registry.Root {
	roots := make([]registry.Root, 0, len(c.Registry.Paths))
	for _, p := range c.Registry.Paths {
		roots = append(roots, registry.DirRoot(p))
	}
	return roots
}
