package i18n_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/uploadkit/pkg/i18n"
)

func TestLocaleContext(t *testing.T) {
	t.Parallel()
	assert.Equal(t, i18n.DefaultLanguage, i18n.GetLocale(context.Background()))
	assert.Equal(t, "de", i18n.GetLocale(i18n.SetLocale(context.Background(), "de")))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		opts    []i18n.ExtractorOption
		want    string
	}{
		{"no hints", func(*http.Request) {}, nil, "en"},
		{"accept-language", func(r *http.Request) { r.Header.Set("Accept-Language", "de-DE,de;q=0.9") }, nil, "de"},
		{"query beats header", func(r *http.Request) {
			r.URL.RawQuery = "lang=en"
			r.Header.Set("Accept-Language", "de")
		}, nil, "en"},
		{"cookie beats query", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "lang", Value: "de"})
			r.URL.RawQuery = "lang=en"
		}, nil, "de"},
		{"unsupported cookie falls back", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "lang", Value: "ja"})
		}, nil, "en"},
		{"custom cookie name", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "locale", Value: "de"})
		}, []i18n.ExtractorOption{i18n.WithCookieName("locale")}, "de"},
		{"query disabled", func(r *http.Request) { r.URL.RawQuery = "lang=de" },
			[]i18n.ExtractorOption{i18n.WithQueryParamName("")}, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got string
			h := i18n.Middleware(tr.LangExtractor(tt.opts...))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = i18n.GetLocale(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMiddleware_NilExtractor(t *testing.T) {
	t.Parallel()
	var got string
	h := i18n.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.GetLocale(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, i18n.DefaultLanguage, got)
}
