package logs

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger logger interface
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
	// With returns a child logger carrying fields, the receiver is left untouched
	With(fields ...zap.Field) Logger
}

// LogLevel log level
type LogLevel int

const (
	//Debug enable debug or above log output
	Debug LogLevel = 0
	//Info enable info or above log output
	Info LogLevel = 1
	//Warn enable warn or above log output
	Warn LogLevel = 2
	//Error enable error or above log output
	Error LogLevel = 3
)

func (ll LogLevel) String() string {
	switch ll {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	}
	return ""
}

func (ll LogLevel) zapLevel() zapcore.Level {
	switch ll {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// ParseLevel parse a case-insensitive level name
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return Debug, nil
	case "INFO", "":
		return Info, nil
	case "WARN", "WARNING":
		return Warn, nil
	case "ERROR":
		return Error, nil
	}
	return Info, fmt.Errorf("unknown log level: %q", s)
}

type zapLogger struct {
	l *zap.Logger
}

// NewLogger wrap a zap logger
func NewLogger(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// Nop logger discarding everything
func Nop() Logger {
	return &zapLogger{l: zap.NewNop()}
}

// Default console logger at info level
func Default() Logger {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	return &zapLogger{l: zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stdout), zapcore.InfoLevel), zap.AddCaller(), zap.AddCallerSkip(1))}
}

func (z *zapLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	z.l.Debug(format(msg, args))
}

func (z *zapLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	z.l.Info(format(msg, args))
}

func (z *zapLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	z.l.Warn(format(msg, args))
}

func (z *zapLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	z.l.Error(format(msg, args))
}

func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
