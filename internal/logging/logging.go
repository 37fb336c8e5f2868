// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings.
type Config struct {
	// Level is parsed with zapcore.ParseLevel.
	Level string `yaml:"level" env:"NOTEBOX_LOG_LEVEL" default:"info"`
	// File receives the log output; stderr when empty. Stdout is reserved
	// for MCP traffic.
	File string `yaml:"file" env:"NOTEBOX_LOG_FILE"`
	// Production switches to JSON output.
	Production bool `yaml:"production" env:"NOTEBOX_LOG_PRODUCTION" default:"false"`
}

// New creates a logger from cfg. The returned function closes the log file
// and must be called once the logger is no longer used.
func New(cfg Config) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var (
		writer zapcore.WriteSyncer
		closer = func() {}
	)
	if cfg.File == "" {
		writer = zapcore.Lock(os.Stderr)
	} else {
		ws, closeFile, err := zap.Open(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = ws
		closer = closeFile
	}

	var encoder zapcore.Encoder
	if cfg.Production {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if cfg.File == "" {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, writer, level)
	logger := zap.New(core, zap.AddCaller())
	cleanup := func() {
		_ = logger.Sync()
		closer()
	}
	return logger, cleanup, nil
}
