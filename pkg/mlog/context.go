package mlog

import "context"

type loggerKey struct{}

// ContextWithLogger returns a copy of ctx carrying logger, retrievable later
// with LoggerFromContext. Request-scoped fields (correlation id, route)
// should already be attached via WithFields before the logger is stored.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger stored by ContextWithLogger, or
// fallback if ctx carries none.
func LoggerFromContext(ctx context.Context, fallback Logger) Logger {
	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}

	return fallback
}
