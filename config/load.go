package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "VVAGENT"

// Load reads the configuration file at path (optional), applies
// environment overrides (VVAGENT_ORIGIN_BASE_URL etc.), merges onto
// the defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	bindDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, ErrLoad.Wrap(err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, ErrLoad.Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Log.ApplyDefaults()
	return cfg, nil
}

// bindDefaults seeds viper with the default values so AutomaticEnv can
// see every key even when no file sets it.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("app.name", cfg.App.Name)
	v.SetDefault("app.version", cfg.App.Version)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("origin.base_url", cfg.Origin.BaseURL)
	v.SetDefault("origin.timeout", cfg.Origin.Timeout)
	v.SetDefault("origin.health_path", cfg.Origin.HealthPath)
	v.SetDefault("origin.manifest", cfg.Origin.Manifest)
	v.SetDefault("cache.backend", cfg.Cache.Backend)
	v.SetDefault("cache.redis_addr", cfg.Cache.RedisAddr)
	v.SetDefault("cache.key_prefix", cfg.Cache.KeyPrefix)
	v.SetDefault("classifier.static_prefixes", cfg.Classifier.StaticPrefixes)
	v.SetDefault("classifier.audio_prefixes", cfg.Classifier.AudioPrefixes)
	v.SetDefault("classifier.api_prefixes", cfg.Classifier.APIPrefixes)
	v.SetDefault("queue.max_size", cfg.Queue.MaxSize)
	v.SetDefault("queue.max_attempts", cfg.Queue.MaxAttempts)
	v.SetDefault("queue.sqlite_path", cfg.Queue.SQLitePath)
	v.SetDefault("probe.enabled", cfg.Probe.Enabled)
	v.SetDefault("probe.interval", cfg.Probe.Interval)
	v.SetDefault("log.app_name", cfg.Log.AppName)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.encoding", cfg.Log.Encoding)
	v.SetDefault("log.enable_console", cfg.Log.EnableConsole)
	v.SetDefault("log.enable_file", cfg.Log.EnableFile)
}
