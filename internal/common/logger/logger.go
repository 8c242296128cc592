package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin per-service wrapper over zap. Log lines carry a "service"
// field and an action name as the message.
type Logger struct {
	z *zap.Logger
}

func New(service string) *Logger {
	return NewWithLevel(service, "info")
}

func NewWithLevel(service, level string) *Logger {
	var zl zapcore.Level
	switch level {
	case "debug":
		zl = zapcore.DebugLevel
	case "warn":
		zl = zapcore.WarnLevel
	case "error":
		zl = zapcore.ErrorLevel
	default:
		zl = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zl),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z.With(zap.String("service", service))}
}

// Nop returns a logger that discards everything; handy in tests.
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

func (l *Logger) Debug(action string, fields ...zap.Field) { l.z.Debug(action, fields...) }
func (l *Logger) Info(action string, fields ...zap.Field)  { l.z.Info(action, fields...) }
func (l *Logger) Warn(action string, fields ...zap.Field)  { l.z.Warn(action, fields...) }

func (l *Logger) Error(action string, err error, fields ...zap.Field) {
	l.z.Error(action, append(fields, zap.Error(err))...)
}

func (l *Logger) Sync() error { return l.z.Sync() }
