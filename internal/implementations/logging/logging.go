package logging

import (
	"context"
	"fmt"
	"notesauth/internal/core/domain/logging"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewZapLogger builds a JSON logger writing records at level and above, level being one of
// debug, info, warn or error.
func NewZapLogger(level string) (*ZapLogger, error) {
	parsedLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parsedLevel)
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("could not create zap logger: %w", err)
	}
	return NewZapLoggerFromCore(logger), nil
}

func NewZapLoggerFromCore(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger, sugar: logger.Sugar()}
}

func (l *ZapLogger) Sync() {
	l.logger.Sync()
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Debugw(msg, prepareArgs(ctx, entries...)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Infow(msg, prepareArgs(ctx, entries...)...)
}

func (l *ZapLogger) Warning(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Warnw(msg, prepareArgs(ctx, entries...)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Errorw(msg, prepareArgs(ctx, entries...)...)
}

func prepareArgs(ctx context.Context, entries ...logging.LogEntry) []interface{} {
	args := make([]interface{}, 0, len(entries)*2+2)
	if requestID, ok := logging.RequestID(ctx); ok {
		args = append(args, "requestID", requestID)
	}
	for _, e := range entries {
		args = append(args, e.Key, e.Value)
	}
	return args
}
