package logging

import "context"

type ctxKey int

const loggerCtxKey ctxKey = iota

func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerCtxKey).(Logger); ok {
		return logger
	}
	return New()
}
