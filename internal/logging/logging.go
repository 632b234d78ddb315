// Package logging builds the zap logger used across the dispatcher and the
// policy loaders from a serialisable configuration.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents logger configuration
type Config struct {
	Level       string   `json:"level,omitempty" yaml:"level,omitempty"`
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`
	Outputs     []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Development bool     `json:"development,omitempty" yaml:"development,omitempty"`
	Rotation    Rotation `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// Rotation represents file output rotation settings
type Rotation struct {
	Enable     bool `json:"enable,omitempty" yaml:"enable,omitempty"`
	MaxSizeMB  int  `json:"maxSizeMB,omitempty" yaml:"maxSizeMB,omitempty"`
	MaxBackups int  `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty"`
	MaxAgeDays int  `json:"maxAgeDays,omitempty" yaml:"maxAgeDays,omitempty"`
	Compress   bool `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// Level parses configured level, info is the default
func (c *Config) level() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	}
	return zap.InfoLevel
}

// New builds a zap.Logger, the caller should defer logger.Sync()
func New(c *Config) (*zap.Logger, error) {
	if c == nil {
		return zap.NewNop(), nil
	}
	level := zap.NewAtomicLevelAt(c.level())

	var encCfg zapcore.EncoderConfig
	if c.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encCfg = zap.NewProductionEncoderConfig()
	}
	var encoder zapcore.Encoder
	if strings.ToLower(c.Format) == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	outputs := c.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}
	var cores []zapcore.Core
	for _, out := range outputs {
		ws, err := c.writeSyncer(out)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder, ws, level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}
	if c.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

func (c *Config) writeSyncer(out string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(out) {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}
	if c.Rotation.Enable {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   out,
			MaxSize:    max(c.Rotation.MaxSizeMB, 10),
			MaxBackups: max(c.Rotation.MaxBackups, 1),
			MaxAge:     max(c.Rotation.MaxAgeDays, 7),
			Compress:   c.Rotation.Compress,
		}), nil
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
