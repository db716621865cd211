package pg

import "context"

// logger is satisfied by *slog.Logger. Migrate routes goose output through it.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
