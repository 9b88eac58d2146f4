package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "VNCVIEW_LOG_LEVEL"

// LogFileEnvVar names a file to receive log output instead of stderr.
// The interactive viewer owns the terminal, so it logs to a file or not at all.
const LogFileEnvVar = "VNCVIEW_LOG_FILE"

// Initialize creates a new logger with the specified level writing to stderr.
// If level is empty, it checks VNCVIEW_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	return initialize(level, "stderr")
}

// InitializeToFile is Initialize with output appended to path.
// An empty path falls back to VNCVIEW_LOG_FILE; if that is empty too,
// logging is disabled so nothing is drawn over the terminal UI.
func InitializeToFile(level, path string) error {
	if path == "" {
		path = os.Getenv(LogFileEnvVar)
	}
	if path == "" {
		logger = zap.NewNop()
		return nil
	}
	return initialize(level, path)
}

func initialize(level, output string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	// No level means silent mode
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if output == "stderr" || output == "stdout" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

func parseLevel(level string) zapcore.Level {
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
		// Unknown level - use info as default when explicitly set to something
		return zapcore.InfoLevel
	}
}

// SetLogger replaces the global logger (used by tests to observe output)
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized so library code never prints unasked
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogSessionEvent logs an event reported by a remote-display session
func LogSessionEvent(target string, event string, clean bool) {
	Debug("Session event",
		zap.String("target", target),
		zap.String("event", event),
		zap.Bool("clean", clean),
	)
}

// LogTransition logs a connection state change
func LogTransition(from, to, trigger, handleID string) {
	Info("Connection state changed",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("trigger", trigger),
		zap.String("handle", handleID),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
