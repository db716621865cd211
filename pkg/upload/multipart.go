package upload

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// DefaultMaxMemory is the multipart memory budget used by FromRequest (10MB).
const DefaultMaxMemory = 10 << 20

type ingestConfig struct {
	tmpDir      string
	maxMemory   int64
	maxFileSize int64
}

// IngestOption configures multipart ingestion.
type IngestOption func(*ingestConfig)

// WithTempDir sets the directory received files are spooled into.
func WithTempDir(dir string) IngestOption {
	return func(c *ingestConfig) { c.tmpDir = dir }
}

// WithMaxMemory sets the memory budget for parsing the multipart body.
func WithMaxMemory(n int64) IngestOption {
	return func(c *ingestConfig) {
		if n > 0 {
			c.maxMemory = n
		}
	}
}

// WithMaxFileSize rejects parts larger than n bytes with CodeIniSize before
// they are spooled. This is the server-wide limit, unlike Config.MaxSize.
func WithMaxFileSize(n int64) IngestOption {
	return func(c *ingestConfig) { c.maxFileSize = n }
}

// FromRequest parses a multipart/form-data request and flattens its files
// into descriptors. See FromForm.
func FromRequest(r *http.Request, opts ...IngestOption) ([]Descriptor, error) {
	cfg := newIngestConfig(opts)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, ErrNotMultipart
	}
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(cfg.maxMemory); err != nil {
			return nil, errors.Join(ErrFailedToParseForm, err)
		}
	}
	return FromForm(r.MultipartForm, opts...)
}

// FromForm flattens the files of a parsed multipart form into descriptors,
// copying every part into its own temp file. Field names in bracket form
// become dot paths: "docs[a][b]" is "docs.a.b", and "gallery[]" or a
// repeated field yields "gallery.0", "gallery.1", ...
//
// Transport problems are reported through Descriptor.Error rather than as
// an error, so one broken part never hides the others. The caller owns the
// temp files; Upload.Cleanup removes the ones that were not moved.
func FromForm(form *multipart.Form, opts ...IngestOption) ([]Descriptor, error) {
	if form == nil || len(form.File) == 0 {
		return nil, ErrNoFiles
	}
	cfg := newIngestConfig(opts)
	formLimit := formMaxFileSize(form)

	keys := make([]string, 0, len(form.File))
	for k := range form.File {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var descs []Descriptor
	for _, key := range keys {
		headers := form.File[key]
		for i, fh := range headers {
			if fh == nil {
				continue
			}
			d := Descriptor{
				Element: elementName(key, i, len(headers)),
				Type:    fh.Header.Get("Content-Type"),
				Size:    fh.Size,
			}
			if fh.Filename != "" {
				d.Name = SanitizeFilename(fh.Filename)
			}
			d.Error = spool(fh, &d, cfg, formLimit)
			descs = append(descs, d)
		}
	}

	if len(descs) == 0 {
		return nil, ErrNoFiles
	}
	return descs, nil
}

func newIngestConfig(opts []IngestOption) *ingestConfig {
	cfg := &ingestConfig{
		tmpDir:    os.TempDir(),
		maxMemory: DefaultMaxMemory,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// spool copies one part into a temp file and returns the transport error code.
func spool(fh *multipart.FileHeader, d *Descriptor, cfg *ingestConfig, formLimit int64) int {
	if fh.Filename == "" {
		return CodeNoFile
	}
	if cfg.maxFileSize > 0 && fh.Size > cfg.maxFileSize {
		return CodeIniSize
	}
	if formLimit > 0 && fh.Size > formLimit {
		return CodeFormSize
	}

	src, err := fh.Open()
	if err != nil {
		return CodePartial
	}
	defer func() { _ = src.Close() }()

	dst, err := os.CreateTemp(cfg.tmpDir, "upload-*")
	if err != nil {
		return CodeNoTmpDir
	}

	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err != nil || closeErr != nil {
		_ = os.Remove(dst.Name())
		return CodeCantWrite
	}
	if written != fh.Size {
		_ = os.Remove(dst.Name())
		return CodePartial
	}

	d.TmpPath = dst.Name()
	return CodeOK
}

func elementName(key string, index, count int) string {
	if base, ok := strings.CutSuffix(key, "[]"); ok {
		return ElementPath(base) + "." + strconv.Itoa(index)
	}
	if count > 1 {
		return ElementPath(key) + "." + strconv.Itoa(index)
	}
	return ElementPath(key)
}

// formMaxFileSize reads the conventional MAX_FILE_SIZE form field.
func formMaxFileSize(form *multipart.Form) int64 {
	values := form.Value["MAX_FILE_SIZE"]
	if len(values) == 0 {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SanitizeFilename removes any path components and dangerous characters from a filename
// to prevent path traversal attacks and other security issues.
// Returns "unnamed" for empty or special directory references.
//
// Example:
//
//	safe := upload.SanitizeFilename("../../../etc/passwd") // Returns "passwd"
//	safe = upload.SanitizeFilename("C:\\Windows\\file.txt") // Returns "file.txt"
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}
