package core

import (
	"context"
	"time"
)

// Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// StorageInterface storage interface
type StorageInterface interface {
	SaveStats(stats *RequestStats) error
	LoadStats() (*RequestStats, error)
	Close() error
}

// Responder submits one user message upstream and returns the assistant's reply.
// An empty reply with a nil error means the upstream answered with no text.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
	Protocol() string
}

// MetricsCollector interface
type MetricsCollector interface {
	RecordUpstreamCall(operation string, status int, duration time.Duration)
	RecordRunPolls(polls int)
}

// NopLogger empty logger implementation
type NopLogger struct{}

func (*NopLogger) Debug(format string, args ...any) {}
func (*NopLogger) Info(format string, args ...any)  {}
func (*NopLogger) Warn(format string, args ...any)  {}
func (*NopLogger) Error(format string, args ...any) {}
func (*NopLogger) Fatal(format string, args ...any) {}

// NopMetrics empty metrics collector implementation
type NopMetrics struct{}

func (*NopMetrics) RecordUpstreamCall(operation string, status int, duration time.Duration) {}
func (*NopMetrics) RecordRunPolls(polls int)                                                {}
