package i18n_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/i18n"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

func newTranslator(t *testing.T, opts ...i18n.Option) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(context.Background(), &i18n.MapAdapter{Data: map[string]map[string]any{
		"en": {
			"greeting": "Hello, %{name}!",
			"nested":   map[string]any{"deep": map[string]any{"key": "found"}},
			"upload":   map[string]any{"101": "Too big"},
		},
		"de": {
			"greeting": "Hallo, %{name}!",
		},
	}}, opts...)
	require.NoError(t, err)
	return tr
}

func TestNewTranslator_Errors(t *testing.T) {
	t.Parallel()

	_, err := i18n.NewTranslator(context.Background(), nil)
	assert.ErrorIs(t, err, i18n.ErrNilAdapter)

	_, err = i18n.NewTranslator(context.Background(), &i18n.MapAdapter{Data: map[string]map[string]any{"": {}}})
	assert.ErrorIs(t, err, i18n.ErrEmptyLanguageCode)

	_, err = i18n.NewTranslator(context.Background(), &i18n.MapAdapter{Data: map[string]map[string]any{"en": nil}})
	assert.ErrorIs(t, err, i18n.ErrInvalidStructure)
}

func TestTranslator_T(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	tests := []struct {
		name string
		lang string
		key  string
		args []string
		want string
	}{
		{"substitution", "en", "greeting", []string{"name", "John"}, "Hello, John!"},
		{"other language", "de", "greeting", []string{"name", "Anna"}, "Hallo, Anna!"},
		{"unknown placeholder kept", "en", "greeting", nil, "Hello, %{name}!"},
		{"nested key", "en", "nested.deep.key", nil, "found"},
		{"missing key falls back to key", "en", "missing.key", nil, "missing.key"},
		{"missing language falls back to key", "xx", "greeting", nil, "greeting"},
		{"map is not a message", "en", "nested", nil, "nested"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tr.T(tt.lang, tt.key, tt.args...))
		})
	}
}

func TestTranslator_NoFallbackToKey(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t, i18n.WithFallbackToKey(false))
	assert.Empty(t, tr.T("en", "missing"))
	assert.Equal(t, "default", tr.Td("en", "missing", "default"))
	assert.True(t, tr.HasTranslation("en", "nested.deep.key"))
	assert.False(t, tr.HasTranslation("de", "nested.deep.key"))
}

func TestTranslator_Match(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	assert.Equal(t, []string{"en", "de"}, tr.SupportedLanguages())

	tests := []struct {
		accept string
		want   string
	}{
		{"", "en"},
		{"de", "de"},
		{"de-CH, en;q=0.5", "de"},
		{"fr-FR, de;q=0.7", "de"},
		{"ja", "en"},
		{"en-GB", "en"},
		{";;;", "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.Match(tt.accept), "accept %q", tt.accept)
	}
}

func TestTranslator_Resolver(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	resolve := tr.Resolver("en")
	assert.Equal(t, "Too big", resolve(upload.CodeMaxSize))
	assert.Empty(t, resolve(upload.CodeNoPath))

	fe := upload.NewFileError(upload.CodeNoPath, tr.Resolver("de"))
	assert.Equal(t, upload.DefaultMessage(upload.CodeNoPath), fe.Message)

	ctx := i18n.SetLocale(context.Background(), "en")
	assert.Equal(t, "Too big", tr.ResolverContext(ctx)(upload.CodeMaxSize))
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	tr, err := i18n.Default(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "de", "fr"}, tr.SupportedLanguages())

	codes := []int{
		upload.CodeIniSize, upload.CodeFormSize, upload.CodePartial, upload.CodeNoFile,
		upload.CodeNoTmpDir, upload.CodeCantWrite, upload.CodeExtension,
		upload.CodeMaxSize, upload.CodeExtBlacklisted, upload.CodeExtNotWhitelisted,
		upload.CodeTypeBlacklisted, upload.CodeTypeNotWhitelisted, upload.CodeMIMEBlacklisted,
		upload.CodeMIMENotWhitelisted, upload.CodeMaxFilenameLength, upload.CodeMoveFailed,
		upload.CodeDuplicateFile, upload.CodeMkdirFailed, upload.CodeExternalMoveFailed,
		upload.CodeNoPath,
	}
	for _, lang := range tr.SupportedLanguages() {
		resolve := tr.Resolver(lang)
		for _, code := range codes {
			assert.NotEmpty(t, resolve(code), "lang %s code %d", lang, code)
		}
	}

	en := tr.Resolver("en")
	for _, code := range codes {
		assert.Equal(t, upload.DefaultMessage(code), en(code), "code %d", code)
	}
	assert.Equal(t, "Es wurde keine Datei hochgeladen", tr.Resolver("de")(upload.CodeNoFile))
}

func TestFSAdapter(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"tr/a.yaml":     {Data: []byte("en:\n  upload:\n    101: \"from yaml\"\n  a: \"A\"\n")},
		"tr/b.json":     {Data: []byte(`{"en": {"a": "overridden"}, "es": {"a": "Á"}}`)},
		"tr/skip.md":    {Data: []byte("# not a translation")},
		"tr/sub/c.yaml": {Data: []byte("en:\n  c: \"C\"\n")},
	}
	tr, err := i18n.NewTranslator(context.Background(), i18n.NewFSAdapter(fsys, "tr"))
	require.NoError(t, err)

	assert.Equal(t, "from yaml", tr.Resolver("en")(upload.CodeMaxSize), "unquoted numeric keys are normalized")
	assert.Equal(t, "overridden", tr.T("en", "a"))
	assert.Equal(t, "Á", tr.T("es", "a"))
	assert.False(t, tr.HasTranslation("en", "c"), "subdirectories are not read")
}

func TestFSAdapter_Errors(t *testing.T) {
	t.Parallel()

	_, err := i18n.NewFSAdapter(fstest.MapFS{}, "missing").Load(context.Background())
	assert.ErrorIs(t, err, i18n.ErrFailedToReadDir)

	_, err = i18n.NewFSAdapter(fstest.MapFS{"d/x.txt": {Data: []byte("x")}}, "d").Load(context.Background())
	assert.ErrorIs(t, err, i18n.ErrNoTranslationFiles)

	_, err = i18n.NewFSAdapter(fstest.MapFS{"d/x.yaml": {Data: []byte("en: [1, 2]")}}, "d").Load(context.Background())
	assert.ErrorIs(t, err, i18n.ErrInvalidStructure)

	_, err = i18n.NewFSAdapter(fstest.MapFS{"d/x.json": {Data: []byte("{")}}, "d").Load(context.Background())
	assert.ErrorIs(t, err, i18n.ErrFailedToParseJSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = i18n.NewFSAdapter(fstest.MapFS{"d/x.json": {Data: []byte("{}")}}, "d").Load(ctx)
	assert.ErrorIs(t, err, i18n.ErrLoadingCancelled)
}

func TestParserForFile(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, i18n.ParserForFile("a.JSON"))
	assert.NotNil(t, i18n.ParserForFile("a.yml"))
	assert.NotNil(t, i18n.ParserForFile("dir/a.yaml"))
	assert.Nil(t, i18n.ParserForFile("a.toml"))
	assert.Nil(t, i18n.ParserForFile("noext"))
}
