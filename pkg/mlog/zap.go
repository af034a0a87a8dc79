package mlog

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// sensitiveFields are dropped from every structured log entry, never
// masked, per spec.md §6.
var sensitiveFields = map[string]bool{
	"token":         true,
	"accountId":     true,
	"token_hash":    true,
	"salt":          true,
	"password":      true,
	"authorization": true,
	"cookie":        true,
}

// redactingEncoder wraps a zapcore.Encoder and drops sensitive fields before
// they reach the underlying encoding.
type redactingEncoder struct {
	zapcore.Encoder
}

func (e *redactingEncoder) Clone() zapcore.Encoder {
	return &redactingEncoder{Encoder: e.Encoder.Clone()}
}

func (e *redactingEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	filtered := make([]zapcore.Field, 0, len(fields))

	for _, f := range fields {
		if sensitiveFields[f.Key] {
			continue
		}

		filtered = append(filtered, f)
	}

	return e.Encoder.EncodeEntry(entry, filtered)
}

// ZapLogger is the zap-backed Logger implementation. It logs structured,
// line-delimited JSON with level, time, event_type, component and msg, plus
// any WithFields additions. It does not add request_id by itself; a line
// carries one only when the caller attaches it through WithFields.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a ZapLogger at the given level ("debug", "info",
// "warn", "error"), writing redacted JSON to stdout.
func NewZapLogger(level string, component string) (*ZapLogger, error) {
	lvl := zapcore.InfoLevel
	_ = lvl.Set(strings.ToLower(level))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "msg"
	encoderCfg.LevelKey = "level"

	core := zapcore.NewCore(
		&redactingEncoder{Encoder: zapcore.NewJSONEncoder(encoderCfg)},
		zapcore.Lock(os.Stdout),
		lvl,
	)

	logger := zap.New(core).Sugar().With("component", component, "event_type", "SYSTEM")

	return &ZapLogger{sugar: logger}, nil
}

func (l *ZapLogger) Info(args ...any)                   { l.sugar.Info(args...) }
func (l *ZapLogger) Infof(format string, args ...any)   { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Error(args ...any)                  { l.withEventType("ERROR").Error(args...) }
func (l *ZapLogger) Errorf(format string, args ...any)  { l.withEventType("ERROR").Errorf(format, args...) }
func (l *ZapLogger) Warn(args ...any)                   { l.sugar.Warn(args...) }
func (l *ZapLogger) Warnf(format string, args ...any)   { l.sugar.Warnf(format, args...) }
func (l *ZapLogger) Debug(args ...any)                  { l.sugar.Debug(args...) }
func (l *ZapLogger) Debugf(format string, args ...any)  { l.sugar.Debugf(format, args...) }
func (l *ZapLogger) Fatal(args ...any)                  { l.sugar.Fatal(args...) }
func (l *ZapLogger) Fatalf(format string, args ...any)  { l.sugar.Fatalf(format, args...) }

func (l *ZapLogger) Security(args ...any) { l.withEventType("SECURITY").Info(args...) }
func (l *ZapLogger) Securityf(format string, args ...any) {
	l.withEventType("SECURITY").Infof(format, args...)
}

func (l *ZapLogger) Business(args ...any) { l.withEventType("BUSINESS").Info(args...) }
func (l *ZapLogger) Businessf(format string, args ...any) {
	l.withEventType("BUSINESS").Infof(format, args...)
}

func (l *ZapLogger) withEventType(eventType string) *zap.SugaredLogger {
	return l.sugar.With("event_type", eventType)
}

// WithFields adds structured context, returning a new Logger and leaving
// the receiver unchanged. Sensitive keys are dropped here, since fields
// attached with With are encoded once up front and never pass through
// redactingEncoder.EncodeEntry.
func (l *ZapLogger) WithFields(fields ...any) Logger {
	kept := make([]any, 0, len(fields))

	for i := 0; i < len(fields); i++ {
		if f, ok := fields[i].(zapcore.Field); ok {
			if !sensitiveFields[f.Key] {
				kept = append(kept, f)
			}

			continue
		}

		if key, ok := fields[i].(string); ok && i+1 < len(fields) {
			if !sensitiveFields[key] {
				kept = append(kept, key, fields[i+1])
			}

			i++

			continue
		}

		kept = append(kept, fields[i])
	}

	return &ZapLogger{sugar: l.sugar.With(kept...)}
}

// Sync flushes any buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
