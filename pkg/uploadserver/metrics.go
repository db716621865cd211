package uploadserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

const namespace = "uploadkit"

// Metrics holds the upload counters. Each instance registers on its own
// registry so several servers can coexist in one process and in tests.
type Metrics struct {
	registry *prometheus.Registry

	filesValidated *prometheus.CounterVec
	filesSaved     *prometheus.CounterVec
	fileErrors     *prometheus.CounterVec
	savedBytes     prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		filesValidated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_validated_total",
			Help:      "Uploaded files that went through validation, by result.",
		}, []string{"result"}),
		filesSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_saved_total",
			Help:      "Valid files handed to the save pipeline, by result.",
		}, []string{"result"}),
		fileErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_errors_total",
			Help:      "Errors attached to uploaded files, by error code.",
		}, []string{"code"}),
		savedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_bytes_total",
			Help:      "Bytes of successfully saved files.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// AfterSave is an after_save hook counting stored bytes.
func (m *Metrics) AfterSave() upload.Hook {
	return func(_ context.Context, f *upload.File) []upload.FileError {
		if f.Saved() {
			m.savedBytes.Add(float64(f.Size()))
		}
		return nil
	}
}

// Observe counts the outcome of a processed batch. A file passed validation
// when its only errors, if any, were raised while saving.
func (m *Metrics) Observe(u *upload.Upload) {
	for _, f := range u.Files() {
		if passedValidation(f) {
			m.filesValidated.WithLabelValues("valid").Inc()
			if f.Saved() {
				m.filesSaved.WithLabelValues("saved").Inc()
			} else {
				m.filesSaved.WithLabelValues("failed").Inc()
			}
		} else {
			m.filesValidated.WithLabelValues("invalid").Inc()
		}
		for _, e := range f.Errors() {
			m.fileErrors.WithLabelValues(strconv.Itoa(e.Code)).Inc()
		}
	}
}

func passedValidation(f *upload.File) bool {
	if !f.IsValidated() {
		return false
	}
	for _, e := range f.Errors() {
		switch e.Code {
		case upload.CodeMoveFailed, upload.CodeDuplicateFile, upload.CodeMkdirFailed,
			upload.CodeExternalMoveFailed, upload.CodeNoPath:
		default:
			return false
		}
	}
	return true
}

// Middleware records request counts and durations. Routes are labelled by
// their chi pattern to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
