package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewTest returns a logger that records every entry at debug level or above
// for inspection.
func NewTest() (*Logger, *observer.ObservedLogs) {
	core, observed := observer.New(zapcore.DebugLevel)
	return &Logger{zap: zap.New(core)}, observed
}
