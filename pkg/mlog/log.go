// Package mlog defines the structured logging interface tokenvault's
// adapters and application code log through, and a zap-backed
// implementation matching spec.md §6's log format.
package mlog

// Logger is the common interface every component logs through. Keeping it
// as an interface, rather than importing zap directly everywhere, lets
// tests substitute a no-op implementation.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)

	// Security logs a SECURITY-classified event: rate-limit hits, risk
	// REJECT/CHALLENGE outcomes, INVALID redemption attempts, limiter
	// failures — per spec.md §7.
	Security(args ...any)
	Securityf(format string, args ...any)

	// Business logs a BUSINESS-classified event: a domain milestone such
	// as a successful mint or redemption.
	Business(args ...any)
	Businessf(format string, args ...any)

	WithFields(fields ...any) Logger

	Sync() error
}
