// Command uploadd serves multipart uploads over HTTP, validating every file
// against the configured policy and storing it on disk, S3 or FTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/uploadkit/pkg/clientip"
	"github.com/dmitrymomot/uploadkit/pkg/config"
	"github.com/dmitrymomot/uploadkit/pkg/httpserver"
	"github.com/dmitrymomot/uploadkit/pkg/i18n"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/pg"
	"github.com/dmitrymomot/uploadkit/pkg/records"
	"github.com/dmitrymomot/uploadkit/pkg/redis"
	"github.com/dmitrymomot/uploadkit/pkg/requestid"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
	"github.com/dmitrymomot/uploadkit/pkg/uploadserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevelName(cfg.LogLevel))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	mover, err := newMover(ctx, cfg)
	if err != nil {
		return err
	}
	policy := cfg.Upload
	policy.Mover = mover

	translator, err := loadTranslator(ctx, cfg, log)
	if err != nil {
		return err
	}

	hooks := upload.NewHooks()
	opts := []uploadserver.Option{
		uploadserver.WithLogger(log),
		uploadserver.WithHooks(hooks),
		uploadserver.WithTranslator(translator),
		uploadserver.WithMaxBodySize(cfg.MaxBodySize),
		uploadserver.WithIngestOptions(ingestOptions(cfg)...),
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		opts = append(opts,
			uploadserver.WithLocker(redis.NewLocker(client, cfg.Redis)),
			uploadserver.WithReadinessChecks(httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)}),
		)
		log.InfoContext(ctx, "distributed destination locking enabled", logger.Component("redis"))
	}

	if cfg.PG.Enabled() {
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, cfg.PG, log, records.Migrations); err != nil {
			return err
		}

		store := records.NewStore(pool,
			records.WithStorage(cfg.Storage),
			records.WithLogger(log),
			records.WithRequestID(requestid.FromContext),
			records.WithClientIP(clientip.FromContext),
		)
		if err := hooks.Register(upload.AfterSave, store.AfterSave()); err != nil {
			return err
		}
		opts = append(opts, uploadserver.WithReadinessChecks(httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)}))
		log.InfoContext(ctx, "upload records enabled", logger.Component("postgres"))
	}

	srv := uploadserver.New(policy, opts...)
	log.InfoContext(ctx, "upload service configured",
		slog.String("storage", cfg.Storage),
		slog.String("path", policy.Path),
		slog.Any("languages", translator.SupportedLanguages()),
	)

	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, srv.Router())
}

// loadTranslator reads TRANSLATIONS_DIR when set, the built-in catalog otherwise.
func loadTranslator(ctx context.Context, cfg Config, log *slog.Logger) (*i18n.Translator, error) {
	opts := []i18n.Option{i18n.WithLogger(log)}
	if cfg.Translations == "" {
		return i18n.Default(ctx, opts...)
	}
	return i18n.NewTranslator(ctx, i18n.NewFSAdapter(os.DirFS(cfg.Translations), "."), opts...)
}
