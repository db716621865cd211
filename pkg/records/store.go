package records

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/pg"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

// Migrations holds the schema of the uploads table, for pg.Migrate with
// MigrationsPath "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// DB is implemented by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Record is one persisted file.
type Record struct {
	ID           uuid.UUID
	Element      string
	OriginalName string
	Filename     string
	Path         string
	Storage      string
	Size         int64
	MIMEType     string
	RequestID    string
	ClientIP     string
	CreatedAt    time.Time
}

// Store writes and reads upload records.
type Store struct {
	db        DB
	storage   string
	log       *slog.Logger
	now       func() time.Time
	requestID func(context.Context) string
	clientIP  func(context.Context) string
}

// Option configures Store.
type Option func(*Store)

// WithStorage sets the storage driver name written with every record.
func WithStorage(name string) Option {
	return func(s *Store) { s.storage = name }
}

// WithLogger sets the logger used for failures of the after_save hook.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRequestID sets how the request ID is read from the hook context.
func WithRequestID(fn func(context.Context) string) Option {
	return func(s *Store) { s.requestID = fn }
}

// WithClientIP sets how the client address is read from the hook context.
func WithClientIP(fn func(context.Context) string) Option {
	return func(s *Store) { s.clientIP = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store over db.
func NewStore(db DB, opts ...Option) *Store {
	s := &Store{
		db:      db,
		storage: "local",
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert stores rec, filling ID and CreatedAt when they are zero.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO uploads (id, element, original_name, filename, path, storage,
			size, mime_type, request_id, client_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Element, rec.OriginalName, rec.Filename, rec.Path, rec.Storage,
		rec.Size, rec.MIMEType, rec.RequestID, rec.ClientIP, rec.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrConflict, rec.ID)
		}
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec := &Record{}
	err := s.db.QueryRow(ctx, `
		SELECT id, element, original_name, filename, path, storage,
			size, mime_type, request_id, client_ip, created_at
		FROM uploads
		WHERE id = $1`, id,
	).Scan(
		&rec.ID, &rec.Element, &rec.OriginalName, &rec.Filename, &rec.Path, &rec.Storage,
		&rec.Size, &rec.MIMEType, &rec.RequestID, &rec.ClientIP, &rec.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return rec, nil
}

// FromFile builds the record of a saved file.
func (s *Store) FromFile(ctx context.Context, f *upload.File) *Record {
	rec := &Record{
		Element:      f.Element(),
		OriginalName: f.Name(),
		Filename:     f.Filename(),
		Path:         f.Destination(),
		Storage:      s.storage,
		Size:         f.Size(),
		MIMEType:     f.MIMEType(),
	}
	if s.requestID != nil {
		rec.RequestID = s.requestID(ctx)
	}
	if s.clientIP != nil {
		rec.ClientIP = s.clientIP(ctx)
	}
	return rec
}

// AfterSave returns an after_save hook that records every saved file. The
// file is already stored when the hook runs, so a failed insert is logged
// and never turns the file invalid.
func (s *Store) AfterSave() upload.Hook {
	return func(ctx context.Context, f *upload.File) []upload.FileError {
		if !f.Saved() {
			return nil
		}
		rec := s.FromFile(ctx, f)
		if err := s.Insert(ctx, rec); err != nil {
			s.log.ErrorContext(ctx, "failed to record upload",
				logger.Element(f.Element()),
				logger.Filename(f.Filename()),
				logger.Error(err),
			)
			return nil
		}
		f.Set("record_id", rec.ID.String())
		return nil
	}
}
