// Package logger builds the process-wide zap logger from LogConfig.
package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pagecrafter/internal/config"
)

// New creates a logger writing to stderr.
func New(cfg config.LogConfig) *zap.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger writing to w. Format "json" selects the JSON
// encoder, anything else the console encoder.
func NewWithWriter(cfg config.LogConfig, w io.Writer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller())
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Init builds the logger and installs it as the zap global, returning it and
// a function that flushes buffered entries.
func Init(cfg config.LogConfig) (*zap.Logger, func()) {
	l := New(cfg)
	undo := zap.ReplaceGlobals(l)
	return l, func() {
		_ = l.Sync()
		undo()
	}
}

// Named returns a child of the global logger. Packages call this lazily so
// they pick up whatever logger Init installed.
func Named(name string) *zap.Logger {
	return zap.L().Named(name)
}
