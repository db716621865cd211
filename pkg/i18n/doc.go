// Package i18n translates upload error messages and negotiates the request
// language.
//
// Translations are nested maps keyed by language code and loaded through a
// TranslationAdapter: MapAdapter for in-memory data, FSAdapter for JSON and
// YAML files in any fs.FS. Default loads the built-in catalog of upload
// error messages (en, de, fr).
//
// # Usage
//
//	tr, err := i18n.Default(ctx, i18n.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	r.Use(i18n.Middleware(tr.LangExtractor()))
//
//	cfg.MessageResolver = tr.ResolverContext(r.Context())
//
// # Keys
//
// Keys are dot-separated paths. Upload errors live under "upload.<code>",
// for example "upload.101". Placeholders use the "%{name}" form:
//
//	tr.T("en", "greeting", "name", "John")
//
// # Language Matching
//
// Match and the extractor returned by LangExtractor use golang.org/x/text
// language matching, so "de-CH" selects "de" and unknown languages fall back
// to the default language.
package i18n
