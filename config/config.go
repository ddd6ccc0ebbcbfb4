// Package config loads thunderdoc settings from a yaml file, THUNDERDOC_*
// environment variables and built-in defaults, in that order of precedence
// from lowest to highest: defaults, file, environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Model  ModelConfig  `mapstructure:"model"`
	Engine EngineConfig `mapstructure:"engine"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig contains bolt file settings
type StoreConfig struct {
	Path    string        `mapstructure:"path"`
	Prefix  string        `mapstructure:"prefix"`
	NoSync  bool          `mapstructure:"no_sync"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ModelConfig contains per-model settings
type ModelConfig struct {
	Daily   bool `mapstructure:"daily"`
	DevMode bool `mapstructure:"dev_mode"`
}

// EngineConfig contains query engine settings
type EngineConfig struct {
	IndexCacheSize int `mapstructure:"index_cache_size"`
	DefaultRows    int `mapstructure:"default_rows"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the configuration. An empty path searches for thunderdoc.yaml in
// the working directory and ./config; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("thunderdoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("THUNDERDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("No config file found, using environment variables and defaults")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "thunderdoc.db")
	v.SetDefault("store.prefix", "")
	v.SetDefault("store.no_sync", false)
	v.SetDefault("store.timeout", time.Second)

	v.SetDefault("model.daily", false)
	v.SetDefault("model.dev_mode", false)

	v.SetDefault("engine.index_cache_size", 256)
	v.SetDefault("engine.default_rows", 20)

	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Store.Timeout < 0 {
		return fmt.Errorf("store.timeout must not be negative, got %s", c.Store.Timeout)
	}
	if c.Engine.IndexCacheSize < 0 {
		return fmt.Errorf("engine.index_cache_size must not be negative, got %d", c.Engine.IndexCacheSize)
	}
	if c.Engine.DefaultRows <= 0 {
		return fmt.Errorf("engine.default_rows must be positive, got %d", c.Engine.DefaultRows)
	}
	if _, err := c.Log.ZerologLevel(); err != nil {
		return err
	}
	return nil
}

// ZerologLevel parses the configured level.
func (l LogConfig) ZerologLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return level, nil
}

// CollectionName applies the store prefix to a model name.
func (c *Config) CollectionName(name string) string {
	return c.Store.Prefix + name
}
