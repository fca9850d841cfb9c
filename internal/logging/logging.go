// Package logging holds the shared diagnostic logger. User-facing output is
// printed directly by the command packages; zap is reserved for transport and
// state diagnostics.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Init builds the process logger. Verbose enables debug-level output.
func Init(verbose bool) error {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	built, err := config.Build()
	if err != nil {
		return err
	}
	logger = built
	return nil
}

// L returns the process logger.
func L() *zap.Logger {
	return logger
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Sync()
}
