package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/uploadkit/pkg/httpserver"
	"github.com/dmitrymomot/uploadkit/pkg/pg"
	"github.com/dmitrymomot/uploadkit/pkg/redis"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

// Storage drivers.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageFTP   = "ftp"
)

var ErrUnknownStorage = errors.New("unknown storage driver")

// Config is the environment of the upload service.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Service  string `env:"SERVICE_NAME" envDefault:"uploadd"`
	LogLevel string `env:"LOG_LEVEL"`

	Storage      string `env:"STORAGE_DRIVER" envDefault:"local"`
	TmpDir       string `env:"TMP_DIR"`
	MaxBodySize  int64  `env:"MAX_BODY_SIZE" envDefault:"67108864"`
	MaxFileSize  int64  `env:"MAX_FILE_SIZE" envDefault:"33554432"`
	Translations string `env:"TRANSLATIONS_DIR"`

	HTTP   httpserver.Config
	Upload upload.Config    `envPrefix:"UPLOAD_"`
	S3     upload.S3Config  `envPrefix:"S3_"`
	FTP    upload.FTPConfig `envPrefix:"FTP_"`
	Redis  redis.Config
	PG     pg.Config
}

// Validate checks cross-field constraints the env tags cannot express.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageLocal:
		if c.Upload.Path == "" {
			return fmt.Errorf("%w: UPLOAD_PATH is required for local storage", upload.ErrInvalidConfig)
		}
	case StorageS3, StorageFTP:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
	}
	return nil
}

// newMover returns the mover of the configured driver, nil for local storage.
func newMover(ctx context.Context, c Config) (upload.Mover, error) {
	switch c.Storage {
	case StorageLocal:
		return nil, nil
	case StorageS3:
		m, err := upload.NewS3Mover(ctx, c.S3)
		if err != nil {
			return nil, err
		}
		return m, nil
	case StorageFTP:
		m, err := upload.NewFTPMover(c.FTP)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
	}
}

// ingestOptions maps the service limits to multipart ingestion options.
func ingestOptions(c Config) []upload.IngestOption {
	opts := []upload.IngestOption{upload.WithMaxFileSize(c.MaxFileSize)}
	if c.TmpDir != "" {
		opts = append(opts, upload.WithTempDir(c.TmpDir))
	}
	return opts
}
