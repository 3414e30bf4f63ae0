package logger

import "go.uber.org/zap"

// NewTestLogger returns a no-op logger for tests that need to inject a
// *CtxZapLogger without producing output.
func NewTestLogger(module string) *CtxZapLogger {
	cfg := DefaultManagerConfig()
	return &CtxZapLogger{
		base:   zap.NewNop(),
		module: module,
		config: &cfg,
	}
}
