package command

import "github.com/cashbridge/tokenvault/pkg/mlog"

// testLogger is a no-op mlog.Logger, sufficient for use cases that only log
// on branches these tests don't assert on.
type testLogger struct{}

func (testLogger) Info(...any)            {}
func (testLogger) Infof(string, ...any)    {}
func (testLogger) Error(...any)           {}
func (testLogger) Errorf(string, ...any)  {}
func (testLogger) Warn(...any)            {}
func (testLogger) Warnf(string, ...any)   {}
func (testLogger) Debug(...any)           {}
func (testLogger) Debugf(string, ...any)  {}
func (testLogger) Fatal(...any)           {}
func (testLogger) Fatalf(string, ...any)  {}
func (testLogger) Security(...any)        {}
func (testLogger) Securityf(string, ...any) {}
func (testLogger) Business(...any)        {}
func (testLogger) Businessf(string, ...any) {}
func (testLogger) WithFields(...any) mlog.Logger { return testLogger{} }
func (testLogger) Sync() error            { return nil }

var _ mlog.Logger = testLogger{}
