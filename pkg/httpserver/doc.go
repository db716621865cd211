// Package httpserver runs an http.Handler with graceful shutdown and exposes
// liveness and readiness handlers.
//
// Server.Run blocks until its context is cancelled or SIGINT/SIGTERM arrives,
// then shuts down within the configured deadline. Options such as WithAddr
// and WithReadTimeout panic on invalid values so misconfiguration stops
// startup; NewFromConfig builds the same options from an env-tagged Config.
//
// # Usage
//
//	import (
//		"github.com/go-chi/chi/v5"
//		"github.com/dmitrymomot/uploadkit/pkg/httpserver"
//	)
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.LivenessHandler())
//	r.Get("/readyz", httpserver.ReadinessHandler(log,
//		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	))
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// # Errors
//
// Run wraps listen errors with ErrStart and Shutdown wraps shutdown errors
// with ErrShutdown; use errors.Is to tell them apart.
package httpserver
