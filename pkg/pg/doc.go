// Package pg connects to PostgreSQL through pgx/v5 and applies goose
// migrations.
//
// # Usage
//
//	import "github.com/dmitrymomot/uploadkit/pkg/pg"
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log, records.Migrations); err != nil {
//		return err
//	}
//
// Connect retries RetryAttempts times with a pause that grows with every
// attempt and honours context cancellation between attempts.
//
// Migrate resolves MigrationsPath inside the given fs.FS, so a package can
// embed its schema and the binary needs no migration files on disk. Pass a nil
// FS to read migrations from the working directory instead.
//
// # Error Handling
//
// IsDuplicateKeyError, IsForeignKeyViolationError, IsNotFoundError and
// IsTxClosedError classify errors returned by pgx.
package pg
