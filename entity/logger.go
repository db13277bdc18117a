package entity

import "context"

// Logger specifies a contextual, structured logger.
type Logger interface {
	Info(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, err error, kv ...any)
}

// NopLogger discards everything; handy when no logger is configured.
type NopLogger struct{}

func (NopLogger) Info(ctx context.Context, msg string, kv ...any)             {}
func (NopLogger) Error(ctx context.Context, msg string, err error, kv ...any) {}
