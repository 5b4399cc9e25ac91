package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the structured logging interface every loandesk package depends
// on. Field names are camelCase.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

// Options configure the process logger.
type Options struct {
	Level       string
	Format      string // "json" or "console"
	Service     string
	Environment string
}

// New builds the process-wide zap logger. Unknown levels fall back to info.
// Every entry carries the service and environment when they are set.
func New(opts Options) *zap.Logger {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if opts.Format != "json" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	initial := map[string]interface{}{}
	if opts.Service != "" {
		initial["service"] = opts.Service
	}
	if opts.Environment != "" {
		initial["environment"] = opts.Environment
	}
	cfg.InitialFields = initial

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields map[string]interface{}) {
	l.z.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields map[string]interface{}) {
	l.z.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields map[string]interface{}) {
	l.z.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields map[string]interface{}) {
	l.z.Error(msg, toZapFields(fields)...)
}

func (l *zapLogger) WithFields(fields map[string]interface{}) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...)}
}

func (l *zapLogger) WithError(err error) Logger {
	return &zapLogger{z: l.z.With(zap.Error(err))}
}

// toZapFields keeps errors as errors so zap renders them under their key.
func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case error:
			out = append(out, zap.NamedError(k, val))
		case string:
			out = append(out, zap.String(k, val))
		case int:
			out = append(out, zap.Int(k, val))
		case bool:
			out = append(out, zap.Bool(k, val))
		default:
			out = append(out, zap.Any(k, val))
		}
	}
	return out
}

// NewZapAdapter wraps an existing *zap.Logger.
func NewZapAdapter(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// NewTestLogger routes output to t.Log.
func NewTestLogger(t testing.TB) Logger {
	return &zapLogger{z: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return &zapLogger{z: zap.NewNop()}
}
