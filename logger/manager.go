package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager owns one logger per module name, created lazily.
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger
	writers    map[string]*lumberjack.Logger
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
	managerMu     sync.RWMutex
)

// NewManager creates an independent manager. Zero-valued config fields are
// filled with defaults.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
		writers:    make(map[string]*lumberjack.Logger),
	}
}

// InitManager initializes the global manager once.
func InitManager(cfg ManagerConfig) {
	managerOnce.Do(func() {
		managerMu.Lock()
		globalManager = NewManager(cfg)
		managerMu.Unlock()
	})
}

// GetLogger returns the global module logger, initializing a default
// manager on first use so packages can log before configuration loads.
func GetLogger(module string) *CtxZapLogger {
	managerMu.RLock()
	m := globalManager
	managerMu.RUnlock()
	if m == nil {
		InitManager(DefaultManagerConfig())
		managerMu.RLock()
		m = globalManager
		managerMu.RUnlock()
	}
	return m.GetLogger(module)
}

// GetLogger returns the logger for a module, creating it on first use.
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.createLogger(module).
		With(zap.String("app_name", m.baseConfig.AppName), zap.String("module", module)).
		WithOptions(zap.AddCallerSkip(1))

	l := &CtxZapLogger{base: base, module: module, config: &m.baseConfig}
	m.loggers[module] = l
	return l
}

func (m *Manager) createLogger(module string) *zap.Logger {
	level := ParseLevel(m.baseConfig.Level)
	encoder := m.createEncoder()

	var cores []zapcore.Core
	if m.baseConfig.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}
	if m.baseConfig.EnableFile {
		w := &lumberjack.Logger{
			Filename:   m.baseConfig.filePath(module),
			MaxSize:    m.baseConfig.MaxSize,
			MaxBackups: m.baseConfig.MaxBackups,
			MaxAge:     m.baseConfig.MaxAge,
			Compress:   m.baseConfig.Compress,
		}
		m.writers[module] = w
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(w), level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}

	var opts []zap.Option
	if m.baseConfig.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

func (m *Manager) createEncoder() zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if m.baseConfig.Encoding == "console" {
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

// CloseAll flushes and closes the global manager's writers, if any.
func CloseAll() {
	managerMu.RLock()
	m := globalManager
	managerMu.RUnlock()
	if m != nil {
		m.CloseAll()
	}
}

// CloseAll flushes buffers and closes the file writers.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
	for _, w := range m.writers {
		_ = w.Close()
	}
}
