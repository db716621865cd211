package pg_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/pg"
)

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.False(t, pg.IsDuplicateKeyError(fk))
	assert.False(t, pg.IsDuplicateKeyError(nil))

	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.False(t, pg.IsForeignKeyViolationError(dup))

	assert.True(t, pg.IsNotFoundError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))

	assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))
	assert.False(t, pg.IsTxClosedError(nil))
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()
	assert.False(t, pg.Config{}.Enabled())
	assert.True(t, pg.Config{ConnectionString: "postgres://localhost/db"}.Enabled())
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ok := pg.Healthcheck(pingerFunc(func(context.Context) error { return nil }))
	require.NoError(t, ok(context.Background()))

	down := errors.New("connection refused")
	failing := pg.Healthcheck(pingerFunc(func(context.Context) error { return down }))
	err := failing(context.Background())
	assert.ErrorIs(t, err, pg.ErrHealthcheckFailed)
	assert.ErrorIs(t, err, down)
}

func TestMigrate_PathChecks(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.DiscardHandler)

	err := pg.Migrate(context.Background(), nil, pg.Config{}, log, nil)
	assert.ErrorIs(t, err, pg.ErrMigrationPathNotProvided)

	fsys := fstest.MapFS{"other/0001_x.sql": &fstest.MapFile{Data: []byte("-- +goose Up\n")}}
	err = pg.Migrate(context.Background(), nil, pg.Config{MigrationsPath: "migrations"}, log, fsys)
	assert.ErrorIs(t, err, pg.ErrMigrationsDirNotFound)

	err = pg.Migrate(context.Background(), nil, pg.Config{MigrationsPath: t.TempDir() + "/missing"}, log, nil)
	assert.ErrorIs(t, err, pg.ErrMigrationsDirNotFound)
}
