package records_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/records"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	mu      sync.Mutex
	execs   []execCall
	execErr error
	row     pgx.Row
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execs = append(db.execs, execCall{sql: sql, args: args})
	if db.execErr != nil {
		return pgconn.CommandTag{}, db.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (db *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return db.row
}

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func TestStore_Insert(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := records.NewStore(db, records.WithStorage("s3"), records.WithClock(func() time.Time { return now }))

	rec := &records.Record{Element: "avatar", OriginalName: "me.png", Filename: "me.png", Path: "a/me.png", Size: 10, MIMEType: "image/png"}
	require.NoError(t, store.Insert(context.Background(), rec))

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, now, rec.CreatedAt)
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "INSERT INTO uploads")
	assert.Equal(t, rec.ID, db.execs[0].args[0])
	assert.Equal(t, "a/me.png", db.execs[0].args[4])
}

func TestStore_InsertErrors(t *testing.T) {
	t.Parallel()

	dup := &fakeDB{execErr: &pgconn.PgError{Code: "23505"}}
	err := records.NewStore(dup).Insert(context.Background(), &records.Record{})
	assert.ErrorIs(t, err, records.ErrConflict)

	broken := &fakeDB{execErr: errors.New("connection reset")}
	err = records.NewStore(broken).Insert(context.Background(), &records.Record{})
	assert.ErrorIs(t, err, records.ErrInsertFailed)
}

func TestStore_Get(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	db := &fakeDB{row: rowFunc(func(dest ...any) error {
		*dest[0].(*uuid.UUID) = id
		*dest[1].(*string) = "docs.0"
		*dest[6].(*int64) = 42
		*dest[9].(*string) = "192.0.2.1"
		return nil
	})}
	rec, err := records.NewStore(db).Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "docs.0", rec.Element)
	assert.Equal(t, int64(42), rec.Size)
	assert.Equal(t, "192.0.2.1", rec.ClientIP)

	missing := &fakeDB{row: rowFunc(func(...any) error { return pgx.ErrNoRows })}
	_, err = records.NewStore(missing).Get(context.Background(), id)
	assert.ErrorIs(t, err, records.ErrNotFound)

	failing := &fakeDB{row: rowFunc(func(...any) error { return errors.New("boom") })}
	_, err = records.NewStore(failing).Get(context.Background(), id)
	assert.ErrorIs(t, err, records.ErrQueryFailed)
}

func newBatch(t *testing.T, dir string, hooks *upload.Hooks) *upload.Upload {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "part")
	require.NoError(t, os.WriteFile(tmp, []byte("hello world"), 0o600))

	cfg := upload.DefaultConfig()
	cfg.Path = dir
	u := upload.New(cfg, upload.WithHooks(hooks))
	u.Add(upload.Descriptor{Element: "doc", Name: "notes.txt", TmpPath: tmp, Size: 11})
	return u
}

func TestStore_AfterSave(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}
	store := records.NewStore(db,
		records.WithRequestID(func(context.Context) string { return "req-1" }),
		records.WithClientIP(func(context.Context) string { return "192.0.2.1" }),
	)

	hooks := upload.NewHooks()
	require.NoError(t, hooks.Register(upload.AfterSave, store.AfterSave()))

	dir := t.TempDir()
	u := newBatch(t, dir, hooks)
	u.Validate(context.Background())
	u.Save(context.Background())

	f := u.Files()[0]
	require.True(t, f.Saved())
	require.Len(t, db.execs, 1)
	args := db.execs[0].args
	assert.Equal(t, "doc", args[1])
	assert.Equal(t, "notes.txt", args[2])
	assert.Equal(t, filepath.Join(dir, "notes.txt"), args[4])
	assert.Equal(t, "local", args[5])
	assert.Equal(t, int64(11), args[6])
	assert.True(t, strings.HasPrefix(args[7].(string), "text/plain"))
	assert.Equal(t, "req-1", args[8])
	assert.Equal(t, "192.0.2.1", args[9])

	id, ok := f.Get("record_id")
	require.True(t, ok)
	assert.Equal(t, args[0].(uuid.UUID).String(), id)
}

func TestStore_AfterSaveInsertFailureKeepsFileValid(t *testing.T) {
	t.Parallel()
	db := &fakeDB{execErr: errors.New("db down")}
	hooks := upload.NewHooks()
	require.NoError(t, hooks.Register(upload.AfterSave, records.NewStore(db).AfterSave()))

	u := newBatch(t, t.TempDir(), hooks)
	u.Validate(context.Background())
	u.Save(context.Background())

	f := u.Files()[0]
	assert.True(t, f.Saved())
	assert.True(t, f.IsValid())
	_, ok := f.Get("record_id")
	assert.False(t, ok)
}

func TestMigrations_Embedded(t *testing.T) {
	t.Parallel()
	entries, err := fs.ReadDir(records.Migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(records.Migrations, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS uploads")
}
