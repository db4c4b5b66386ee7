package telemetry

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the global structured logger.
var Logger *slog.Logger

// InitLogger initializes the structured logger.
func InitLogger(level string, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			if a.Key == slog.LevelKey {
				a.Key = "level"
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}
			return a
		},
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// WithContext adds common context fields to the logger.
func WithContext(ctx context.Context) *slog.Logger {
	logger := Logger
	if logger == nil {
		logger = slog.Default()
	}

	if traceID := ctx.Value(ctxKeyTraceID); traceID != nil {
		logger = logger.With("trace_id", traceID)
	}
	if requestID := ctx.Value(ctxKeyRequestID); requestID != nil {
		logger = logger.With("request_id", requestID)
	}
	if nodeID := ctx.Value(ctxKeyNodeID); nodeID != nil {
		logger = logger.With("node_id", nodeID)
	}
	if ruleID := ctx.Value(ctxKeyRuleID); ruleID != nil {
		logger = logger.With("rule_id", ruleID)
	}

	return logger
}

type ctxKey string

const (
	ctxKeyTraceID   ctxKey = "trace_id"
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyNodeID    ctxKey = "node_id"
	ctxKeyRuleID    ctxKey = "rule_id"
)

// WithNodeID attaches a node id that WithContext will log under "node_id".
func WithNodeID(ctx context.Context, nodeID string) context.Context {
	return context.WithValue(ctx, ctxKeyNodeID, nodeID)
}

// WithRuleID attaches a rule id that WithContext will log under "rule_id".
func WithRuleID(ctx context.Context, ruleID string) context.Context {
	return context.WithValue(ctx, ctxKeyRuleID, ruleID)
}

// LogError logs an error with context.
func LogError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	logger := WithContext(ctx)
	args := make([]any, 0, len(attrs)*2+2)
	args = append(args, "error", err.Error())
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}
	logger.Error(msg, args...)
}

// LogInfo logs an info message with context.
func LogInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	logger := WithContext(ctx)
	args := make([]any, 0, len(attrs)*2)
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}
	logger.Info(msg, args...)
}

// LogWarn logs a warning message with context.
func LogWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	logger := WithContext(ctx)
	args := make([]any, 0, len(attrs)*2)
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}
	logger.Warn(msg, args...)
}
