package upload

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrymomot/uploadkit/pkg/logger"
)

// File is one uploaded file moving through validation and persistence.
//
// A File is not safe for concurrent use. Configure it, call Validate, then
// Save while IsValid reports true. Hooks receive the *File and may use the
// setters to steer the pipeline.
type File struct {
	desc   Descriptor
	hooks  *Hooks
	cfg    Config
	log    *slog.Logger
	locker Locker

	extension string
	basename  string
	mimetype  string
	filename  string
	path      string
	attrs     map[string]any

	errors      []FileError
	isValid     bool
	isValidated bool
	saved       bool
}

// FileOption configures a File.
type FileOption func(*File)

// WithFileLogger sets the logger used for pipeline diagnostics.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(f *File) {
		if l != nil {
			f.log = l
		}
	}
}

// WithFileLocker serializes collision handling and the move through l.
func WithFileLocker(l Locker) FileOption {
	return func(f *File) { f.locker = l }
}

// NewFile wraps a descriptor. hooks may be nil; it is only read.
func NewFile(desc Descriptor, hooks *Hooks, opts ...FileOption) *File {
	f := &File{
		desc:  desc,
		hooks: hooks,
		cfg:   DefaultConfig(),
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetConfig replaces the file's policy. Changing it once Save started is not supported.
func (f *File) SetConfig(cfg Config) {
	f.cfg = cfg
}

// Configure applies named options on top of the current policy.
func (f *File) Configure(opts map[string]any) error {
	return f.cfg.Apply(opts)
}

// Config returns a copy of the file's policy.
func (f *File) Config() Config { return f.cfg }

func (f *File) Descriptor() Descriptor { return f.desc }
func (f *File) Element() string        { return f.desc.Element }
func (f *File) Name() string           { return f.desc.Name }
func (f *File) Size() int64            { return f.desc.Size }

// Extension is the client filename's extension without the dot, case preserved.
func (f *File) Extension() string { return f.extension }

// Basename is the client filename without its extension.
func (f *File) Basename() string { return f.basename }

// MIMEType is the type sniffed from the file content.
func (f *File) MIMEType() string { return f.mimetype }

// Filename is the final stored filename once Save has composed it.
func (f *File) Filename() string { return f.filename }

// Path is the destination directory, with a trailing separator once resolved.
func (f *File) Path() string { return f.path }

// Destination joins Path and Filename.
func (f *File) Destination() string {
	if f.filename == "" {
		return ""
	}
	if f.cfg.Mover != nil {
		return joinRemote(f.path, f.filename)
	}
	return filepath.Join(f.path, f.filename)
}

func (f *File) IsValid() bool     { return f.isValid }
func (f *File) IsValidated() bool { return f.isValidated }

// Saved reports whether the last Save call persisted the file.
func (f *File) Saved() bool { return f.saved }

// Errors returns the collected errors, or nil before the first validation.
func (f *File) Errors() []FileError {
	if !f.isValidated {
		return nil
	}
	return slices.Clone(f.errors)
}

// SetPath overrides the configured destination directory for this file.
func (f *File) SetPath(path string) { f.path = path }

// SetFilename presets the base filename, skipping randomization and normalization.
func (f *File) SetFilename(name string) { f.filename = name }

// SetExtension overrides the derived extension.
func (f *File) SetExtension(ext string) { f.extension = strings.TrimPrefix(ext, ".") }

// Set stores an enrichment value for hooks and callers.
func (f *File) Set(key string, value any) {
	if f.attrs == nil {
		f.attrs = make(map[string]any)
	}
	f.attrs[key] = value
}

// Get returns an enrichment value stored with Set.
func (f *File) Get(key string) (any, bool) {
	v, ok := f.attrs[key]
	return v, ok
}

// NewError builds a FileError using this file's message resolver.
func (f *File) NewError(code int) FileError {
	return NewFileError(code, f.cfg.MessageResolver)
}

// Validate runs the validation pipeline and reports the resulting validity.
// Calling it again resets errors and validates from scratch. All checks run;
// errors accumulate rather than short-circuit.
func (f *File) Validate(ctx context.Context) bool {
	f.errors = nil
	f.isValid = true
	f.saved = false

	f.runHooks(ctx, BeforeValidation)

	if f.desc.Error == CodeOK {
		f.extension, f.basename = splitName(f.desc.Name)

		if f.cfg.MaxSize > 0 && f.desc.Size > f.cfg.MaxSize {
			f.addError(CodeMaxSize)
		}

		mimetype, err := DetectMIMEType(f.desc.TmpPath)
		if err != nil {
			f.log.WarnContext(ctx, "mime detection failed, using fallback",
				logger.Element(f.desc.Element), logger.Error(err))
		}
		f.mimetype = mimetype
		class := mimeClass(mimetype)

		// extension policy: blacklist wins over whitelist
		ext := strings.ToLower(f.extension)
		if containsFold(f.cfg.ExtBlacklist, ext) {
			f.addError(CodeExtBlacklisted)
		} else if len(f.cfg.ExtWhitelist) > 0 && !containsFold(f.cfg.ExtWhitelist, ext) {
			f.addError(CodeExtNotWhitelisted)
		}

		// type class policy: both lists are checked independently, so a
		// class that is blacklisted and not whitelisted reports two errors
		if containsFold(f.cfg.TypeBlacklist, class) {
			f.addError(CodeTypeBlacklisted)
		}
		if len(f.cfg.TypeWhitelist) > 0 && !containsFold(f.cfg.TypeWhitelist, class) {
			f.addError(CodeTypeNotWhitelisted)
		}

		if containsFold(f.cfg.MIMEBlacklist, mimetype) {
			f.addError(CodeMIMEBlacklisted)
		} else if len(f.cfg.MIMEWhitelist) > 0 && !containsFold(f.cfg.MIMEWhitelist, mimetype) {
			f.addError(CodeMIMENotWhitelisted)
		}

		f.runHooks(ctx, AfterValidation)
	} else {
		f.addError(f.desc.Error)
	}

	f.isValidated = true

	if !f.isValid {
		f.log.DebugContext(ctx, "upload rejected",
			logger.Element(f.desc.Element),
			logger.Filename(f.desc.Name),
			logger.ErrorCodes(f.codes()...),
		)
	}
	return f.isValid
}

func (f *File) runHooks(ctx context.Context, event Event) {
	for _, hook := range f.hooks.snapshot(event) {
		f.errors = append(f.errors, hook(ctx, f)...)
		f.isValid = len(f.errors) == 0
	}
}

func (f *File) addError(code int) {
	f.errors = append(f.errors, f.NewError(code))
	f.isValid = false
}

func (f *File) codes() []int {
	codes := make([]int, len(f.errors))
	for i, e := range f.errors {
		codes[i] = e.Code
	}
	return codes
}

// splitName derives extension and basename from a client filename.
// Leading dots do not start an extension, so ".htaccess" has none.
func splitName(name string) (ext, base string) {
	trimmed := strings.TrimLeft(name, ".")
	if i := strings.LastIndex(trimmed, "."); i >= 0 {
		ext = trimmed[i+1:]
	}
	if ext == "" {
		return "", name
	}
	return ext, name[:len(name)-len(ext)-1]
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), v)
	})
}
