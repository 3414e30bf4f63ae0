// Package logger provides module-scoped zap loggers with file rotation.
// Each package obtains its logger via GetLogger(module); the manager
// creates them on demand and owns the underlying writers.
package logger

import (
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// ManagerConfig is shared by every module logger the manager creates.
type ManagerConfig struct {
	AppName       string `mapstructure:"app_name"`
	BaseLogDir    string `mapstructure:"base_log_dir"`
	Level         string `mapstructure:"level"`
	Encoding      string `mapstructure:"encoding"` // json or console
	EnableConsole bool   `mapstructure:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file"`
	EnableCaller  bool   `mapstructure:"enable_caller"`

	// Rotation settings, passed through to lumberjack.
	MaxSize    int  `mapstructure:"max_size"` // MB
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"` // days
	Compress   bool `mapstructure:"compress"`

	// TraceIDKey is the context key whose value is injected into every
	// log line when present.
	TraceIDKey string `mapstructure:"trace_id_key"`
}

// DefaultManagerConfig returns the configuration used when none is supplied.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		AppName:       "voiceverse-agent",
		BaseLogDir:    "logs",
		Level:         "info",
		Encoding:      "json",
		EnableConsole: true,
		EnableFile:    false,
		EnableCaller:  true,
		MaxSize:       100,
		MaxBackups:    3,
		MaxAge:        28,
		Compress:      true,
		TraceIDKey:    "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields in place.
func (c *ManagerConfig) ApplyDefaults() {
	defaults := DefaultManagerConfig()
	if c.AppName == "" {
		c.AppName = defaults.AppName
	}
	if c.BaseLogDir == "" {
		c.BaseLogDir = defaults.BaseLogDir
	}
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = defaults.TraceIDKey
	}
}

// filePath returns the log file path for a module.
func (c *ManagerConfig) filePath(module string) string {
	return filepath.Join(c.BaseLogDir, module+".log")
}

// ParseLevel maps a level string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
