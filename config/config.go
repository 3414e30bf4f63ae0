// Package config loads and validates the agent configuration from a
// YAML file plus environment overrides.
package config

import (
	"time"

	"github.com/AliGym19/voiceverse-sub001/logger"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config is the full agent configuration.
type Config struct {
	App        AppConfig            `mapstructure:"app"`
	Server     ServerConfig         `mapstructure:"server"`
	Origin     OriginConfig         `mapstructure:"origin"`
	Cache      CacheConfig          `mapstructure:"cache"`
	Classifier ClassifierConfig     `mapstructure:"classifier"`
	Queue      QueueConfig          `mapstructure:"queue"`
	Probe      ProbeConfig          `mapstructure:"probe"`
	Log        logger.ManagerConfig `mapstructure:"log"`
}

// AppConfig identifies the build being served.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig is the agent's own listen surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// OriginConfig points at the upstream application server.
type OriginConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	HealthPath string        `mapstructure:"health_path"`
	// Manifest lists the must-cache static assets fetched at install.
	Manifest []string `mapstructure:"manifest"`
}

// CacheConfig selects and tunes the store backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend   string `mapstructure:"backend"`
	RedisAddr string `mapstructure:"redis_addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ClassifierConfig overrides the request-class path rules.
type ClassifierConfig struct {
	StaticPrefixes []string `mapstructure:"static_prefixes"`
	AudioPrefixes  []string `mapstructure:"audio_prefixes"`
	APIPrefixes    []string `mapstructure:"api_prefixes"`
}

// QueueConfig tunes the offline queue.
type QueueConfig struct {
	MaxSize     int    `mapstructure:"max_size"`
	MaxAttempts int    `mapstructure:"max_attempts"`
	// SQLitePath is the queue database location; empty keeps the queue
	// in memory only.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ProbeConfig tunes the background reachability check.
type ProbeConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "voiceverse-agent",
			Version: "v1",
		},
		Server: ServerConfig{
			Addr:            ":8089",
			ShutdownTimeout: 10 * time.Second,
		},
		Origin: OriginConfig{
			Timeout:    10 * time.Second,
			HealthPath: "/healthz",
		},
		Cache: CacheConfig{
			Backend:   "memory",
			KeyPrefix: "vvagent:",
		},
		Queue: QueueConfig{
			MaxSize:     100,
			MaxAttempts: 5,
		},
		Probe: ProbeConfig{
			Enabled:  true,
			Interval: 15 * time.Second,
		},
		Log: logger.DefaultManagerConfig(),
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.App),
		validation.Field(&c.Server),
		validation.Field(&c.Origin),
		validation.Field(&c.Cache),
		validation.Field(&c.Queue),
	)
	return convertValidationError(err)
}

func (c AppConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Version, validation.Required),
	)
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
	)
}

func (c OriginConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In("memory", "redis")),
		validation.Field(&c.RedisAddr, validation.Required.When(c.Backend == "redis")),
	)
}

func (c QueueConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxSize, validation.Min(1)),
		validation.Field(&c.MaxAttempts, validation.Min(1)),
	)
}
