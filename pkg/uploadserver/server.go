package uploadserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/uploadkit/pkg/clientip"
	"github.com/dmitrymomot/uploadkit/pkg/httpserver"
	"github.com/dmitrymomot/uploadkit/pkg/i18n"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/requestid"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

// DefaultMaxBodySize caps a whole upload request (64MB).
const DefaultMaxBodySize int64 = 64 << 20

// Server turns multipart requests into validated, stored files.
type Server struct {
	cfg         upload.Config
	hooks       *upload.Hooks
	log         *slog.Logger
	locker      upload.Locker
	translator  *i18n.Translator
	metrics     *Metrics
	ingest      []upload.IngestOption
	maxBodySize int64
	checks      []httpserver.Check
}

// Option configures Server.
type Option func(*Server)

// WithLogger sets the logger for the server and every processed file.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHooks shares a hook registry with every request's batch.
func WithHooks(h *upload.Hooks) Option {
	return func(s *Server) {
		if h != nil {
			s.hooks = h
		}
	}
}

// WithLocker sets the destination locker.
func WithLocker(l upload.Locker) Option {
	return func(s *Server) { s.locker = l }
}

// WithTranslator localizes error messages using the request language.
func WithTranslator(tr *i18n.Translator) Option {
	return func(s *Server) { s.translator = tr }
}

// WithMetrics replaces the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithIngestOptions passes options to multipart ingestion.
func WithIngestOptions(opts ...upload.IngestOption) Option {
	return func(s *Server) { s.ingest = append(s.ingest, opts...) }
}

// WithMaxBodySize caps the request body. Zero or less disables the cap.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) { s.maxBodySize = n }
}

// WithReadinessChecks adds dependencies probed by /readyz.
func WithReadinessChecks(checks ...httpserver.Check) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

// New creates a Server applying cfg to every uploaded file. The metrics
// after_save hook is registered on the shared registry.
func New(cfg upload.Config, opts ...Option) *Server {
	s := &Server{
		cfg:         cfg,
		hooks:       upload.NewHooks(),
		log:         slog.New(slog.DiscardHandler),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if err := s.hooks.Register(upload.AfterSave, s.metrics.AfterSave()); err != nil {
		panic("uploadserver: " + err.Error())
	}
	return s
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Router builds the HTTP routes:
//
//	POST /uploads  process a multipart upload
//	GET  /healthz  liveness
//	GET  /readyz   readiness of configured dependencies
//	GET  /metrics  Prometheus metrics
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(s.log, s.checks...))
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.translator != nil {
			r.Use(i18n.Middleware(s.translator.LangExtractor()))
		}
		r.Post("/uploads", s.HandleUpload)
	})
	return r
}

// HandleUpload validates and saves every file of a multipart request. It
// answers 201 when all files were stored, 422 when any file was rejected,
// 400 for malformed requests or requests without files and 413 when the
// body exceeds the configured cap.
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)
	}

	descs, err := upload.FromRequest(r, s.ingest...)
	if err != nil {
		s.rejectRequest(w, r, err)
		return
	}

	cfg := s.cfg
	if s.translator != nil && cfg.MessageResolver == nil {
		cfg.MessageResolver = s.translator.ResolverContext(ctx)
	}

	u := upload.New(cfg,
		upload.WithHooks(s.hooks),
		upload.WithLogger(s.log),
		upload.WithLocker(s.locker),
	)
	u.Add(descs...)
	defer func() {
		if err := u.Cleanup(); err != nil {
			s.log.WarnContext(ctx, "failed to remove temporary upload files", logger.Error(err))
		}
	}()

	u.Validate(ctx)
	u.Save(ctx)
	s.metrics.Observe(u)

	status := http.StatusCreated
	if !u.IsValid() {
		status = http.StatusUnprocessableEntity
	}
	if err := writeJSON(w, status, newResult(u)); err != nil {
		s.log.ErrorContext(ctx, "failed to write upload response", logger.Error(err))
	}
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status, code := http.StatusBadRequest, "bad_request"

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		status, code = http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, upload.ErrNoFiles):
		code = "no_files"
	}

	s.log.DebugContext(ctx, "upload request rejected", logger.Error(err))
	if err := writeJSON(w, status, ErrorBody{Error: ErrorDetail{
		Code:    code,
		Message: s.message(r, code),
	}}); err != nil {
		s.log.ErrorContext(ctx, "failed to write upload response", logger.Error(err))
	}
}

var requestMessages = map[string]string{
	"bad_request": "The request is not a valid multipart upload",
	"no_files":    "The request contains no files",
	"too_large":   "The request body is too large",
}

func (s *Server) message(r *http.Request, code string) string {
	fallback := requestMessages[code]
	if s.translator == nil {
		return fallback
	}
	return s.translator.Td(i18n.GetLocale(r.Context()), "response."+code, fallback)
}
