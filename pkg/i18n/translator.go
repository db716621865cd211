package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

// DefaultLanguage is used when no language is requested or matched.
const DefaultLanguage = "en"

// Translator resolves dot-separated keys to messages in a given language.
// It is safe for concurrent use.
type Translator struct {
	mu             sync.RWMutex
	translations   map[string]map[string]any
	defaultLang    string
	fallbackToKey  bool
	missingLogMode bool
	logger         *slog.Logger

	langs   []string
	matcher language.Matcher
}

// Option configures a Translator.
type Option func(*Translator)

// WithDefaultLanguage sets the language used when matching fails.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = lang
		}
	}
}

// WithFallbackToKey returns the key itself for missing translations. Default is true.
func WithFallbackToKey(fallback bool) Option {
	return func(t *Translator) { t.fallbackToKey = fallback }
}

// WithLogger sets the logger. A discard logger is used by default.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMissingTranslationsLogging logs every missing translation at warn level.
func WithMissingTranslationsLogging(enabled bool) Option {
	return func(t *Translator) { t.missingLogMode = enabled }
}

// NewTranslator loads translations through adapter.
func NewTranslator(ctx context.Context, adapter TranslationAdapter, options ...Option) (*Translator, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}

	t := &Translator{
		defaultLang:   DefaultLanguage,
		fallbackToKey: true,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(t)
	}

	translations, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	for lang, messages := range translations {
		if lang == "" {
			return nil, ErrEmptyLanguageCode
		}
		if messages == nil {
			return nil, fmt.Errorf("%w: nil messages for %q", ErrInvalidStructure, lang)
		}
	}

	t.translations = translations
	t.buildMatcher()
	t.logger.InfoContext(ctx, "translations loaded", slog.Any("languages", t.langs))
	return t, nil
}

// buildMatcher puts the default language first, which makes it the
// matcher's fallback.
func (t *Translator) buildMatcher() {
	langs := make([]string, 0, len(t.translations)+1)
	for lang := range t.translations {
		if lang != t.defaultLang {
			langs = append(langs, lang)
		}
	}
	slices.Sort(langs)
	langs = append([]string{t.defaultLang}, langs...)

	tags := make([]language.Tag, 0, len(langs))
	kept := langs[:0]
	for _, lang := range langs {
		tag, err := language.Parse(lang)
		if err != nil {
			t.logger.Warn("skipping unparsable language code", slog.String("lang", lang))
			continue
		}
		tags = append(tags, tag)
		kept = append(kept, lang)
	}
	t.langs = kept
	t.matcher = language.NewMatcher(tags)
}

// SupportedLanguages returns the loaded language codes, default first.
func (t *Translator) SupportedLanguages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.langs)
}

// DefaultLanguage returns the fallback language.
func (t *Translator) DefaultLanguage() string { return t.defaultLang }

// Match picks the best supported language for an Accept-Language style list
// such as "de-CH, fr;q=0.8". It returns the default language when nothing
// matches or the input is malformed.
func (t *Translator) Match(accept string) string {
	if accept == "" || len(accept) > maxAcceptLanguageLength {
		return t.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return t.defaultLang
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(t.langs) {
		return t.defaultLang
	}
	return t.langs[idx]
}

// HasTranslation reports whether key exists for lang.
func (t *Translator) HasTranslation(lang, key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.lookup(lang, key)
	return ok
}

// T translates key. Args are name/value pairs substituted into "%{name}"
// placeholders. Missing translations yield the key, or an empty string when
// WithFallbackToKey(false) is set.
//
// Example:
//
//	// "greeting": "Hello, %{name}!"
//	msg := tr.T("en", "greeting", "name", "John") // "Hello, John!"
func (t *Translator) T(lang, key string, args ...string) string {
	fallback := ""
	if t.fallbackToKey {
		fallback = key
	}
	return t.Td(lang, key, fallback, args...)
}

// Td translates key, returning defaultValue when it is missing.
func (t *Translator) Td(lang, key, defaultValue string, args ...string) string {
	t.mu.RLock()
	msg, ok := t.lookup(lang, key)
	t.mu.RUnlock()

	if !ok {
		if t.missingLogMode {
			t.logger.Warn("translation not found", slog.String("lang", lang), slog.String("key", key))
		}
		return substitute(defaultValue, args)
	}
	return substitute(msg, args)
}

// Tc translates key in the language stored in ctx by Middleware.
func (t *Translator) Tc(ctx context.Context, key string, args ...string) string {
	return t.T(GetLocale(ctx), key, args...)
}

// Resolver returns an upload.MessageResolver reading "upload.<code>" keys in
// lang. Codes without a translation resolve to an empty string, which makes
// the upload package use its English message.
func (t *Translator) Resolver(lang string) upload.MessageResolver {
	return func(code int) string {
		return t.Td(lang, "upload."+strconv.Itoa(code), "")
	}
}

// ResolverContext is Resolver for the language stored in ctx.
func (t *Translator) ResolverContext(ctx context.Context) upload.MessageResolver {
	return t.Resolver(GetLocale(ctx))
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	current, ok := t.translations[lang]
	if !ok {
		return "", false
	}

	parts := strings.Split(key, ".")
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			switch v := val.(type) {
			case string:
				return v, true
			case fmt.Stringer:
				return v.String(), true
			default:
				return "", false
			}
		}
		if current, ok = stringMap(val); !ok {
			return "", false
		}
	}
	return "", false
}

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// substitute replaces "%{name}" placeholders; unknown names stay as is.
func substitute(tmpl string, args []string) string {
	if len(args) < 2 {
		return tmpl
	}
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		if val, ok := params[match[2:len(match)-1]]; ok {
			return val
		}
		return match
	})
}
