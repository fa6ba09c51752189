package logging

import "context"

type LogEntry struct {
	Key   string
	Value interface{}
}

func Entry(k string, v interface{}) LogEntry {
	return LogEntry{Key: k, Value: v}
}

type Logger interface {
	Debug(ctx context.Context, msg string, entries ...LogEntry)
	Info(ctx context.Context, msg string, entries ...LogEntry)
	Warning(ctx context.Context, msg string, entries ...LogEntry)
	Error(ctx context.Context, msg string, entries ...LogEntry)
}

type contextRequestID string

const contextRequestIDKey = contextRequestID("requestID")

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextRequestIDKey, requestID)
}

func RequestID(ctx context.Context) (requestID string, ok bool) {
	requestID, ok = ctx.Value(contextRequestIDKey).(string)
	return requestID, ok && requestID != ""
}
