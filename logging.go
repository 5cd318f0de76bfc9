package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

// ContextWithLogger returns a context carrying logger.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Log returns the logger carried by ctx, or a no-op logger.
func Log(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}
	return logger
}

// NewLogger builds a production JSON logger at the named level ("debug",
// "info", "warn", "error"). An empty level means info.
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(level); err != nil {
			return nil, err
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// RequestLogger returns middleware that puts a request scoped logger into the
// context and logs every completed request with its status and duration.
// Errors are logged and returned unchanged.
func RequestLogger(logger *zap.Logger) Middleware {
	return MiddlewareFunc(func(ctx context.Context, r Request, next Handler) (Response, error) {
		path := ""
		if u := r.URL(); u != nil {
			path = u.Path
		}
		logs := logger.With(zap.String("method", r.Method()), zap.String("path", path))
		if id, ok := r.AttributeString(RequestIDAttribute); ok {
			logs = logs.With(zap.String("request_id", id))
		}

		start := time.Now()
		resp, err := next.Handle(ContextWithLogger(ctx, logs), r)
		if err != nil {
			logs.Error("request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return resp, err
		}

		logs.Info("request completed",
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, nil
	})
}
