package corkboard

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerPtr stores the active logger. Storage port completions are produced
// on worker goroutines, so access is atomic.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger for corkboard and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Levels used:
//   - Debug: gesture and geometry decisions (zoom rejected, link pending)
//   - Info: board lifecycle (created, loaded, saved)
//   - Warn: storage failures and corrupt records
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages use it as their default.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

// NewLogger builds a logger for a config log level. "debug" gets the
// development encoder; other levels get the production one at that level.
func NewLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
