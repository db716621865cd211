package i18n

import (
	"context"
	"net/http"
	"strings"
)

// maxAcceptLanguageLength bounds the header size handed to the parser.
const maxAcceptLanguageLength = 4096

type localeContextKey struct{}

// SetLocale stores the locale in ctx.
func SetLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// GetLocale returns the locale stored in ctx, or DefaultLanguage.
func GetLocale(ctx context.Context) string {
	if locale, _ := ctx.Value(localeContextKey{}).(string); locale != "" {
		return locale
	}
	return DefaultLanguage
}

// LangExtractor determines the language of a request.
type LangExtractor func(r *http.Request) string

type extractorConfig struct {
	cookieName     string
	queryParamName string
}

// ExtractorOption configures the language extractor.
type ExtractorOption func(*extractorConfig)

// WithCookieName sets the cookie checked for a language preference. Empty disables it.
func WithCookieName(name string) ExtractorOption {
	return func(c *extractorConfig) { c.cookieName = name }
}

// WithQueryParamName sets the query parameter checked for a language. Empty disables it.
func WithQueryParamName(name string) ExtractorOption {
	return func(c *extractorConfig) { c.queryParamName = name }
}

// LangExtractor returns an extractor that checks, in order, the "lang"
// cookie, the "lang" query parameter and the Accept-Language header. Every
// candidate is matched against the loaded languages, so "de-AT" resolves to
// "de" when only "de" exists.
func (t *Translator) LangExtractor(opts ...ExtractorOption) LangExtractor {
	cfg := &extractorConfig{cookieName: "lang", queryParamName: "lang"}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(r *http.Request) string {
		if cfg.cookieName != "" {
			if c, err := r.Cookie(cfg.cookieName); err == nil {
				if v := strings.TrimSpace(c.Value); v != "" {
					return t.Match(v)
				}
			}
		}
		if cfg.queryParamName != "" {
			if v := strings.TrimSpace(r.URL.Query().Get(cfg.queryParamName)); v != "" {
				return t.Match(v)
			}
		}
		return t.Match(r.Header.Get("Accept-Language"))
	}
}

// Middleware stores the request language in the request context.
func Middleware(extr LangExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if extr != nil {
				lang = extr(r)
			}
			if lang == "" {
				lang = DefaultLanguage
			}
			next.ServeHTTP(w, r.WithContext(SetLocale(r.Context(), lang)))
		})
	}
}
