package upload

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
)

// Upload is a batch of uploaded files sharing a default policy and a hook registry.
// Each file runs its own pipeline; a failing file never stops its siblings.
type Upload struct {
	cfg    Config
	hooks  *Hooks
	log    *slog.Logger
	locker Locker
	files  []*File
}

// Option configures an Upload.
type Option func(*Upload)

// WithHooks shares an existing hook registry, typically one per service.
func WithHooks(h *Hooks) Option {
	return func(u *Upload) {
		if h != nil {
			u.hooks = h
		}
	}
}

// WithLogger sets the logger passed down to every file.
func WithLogger(l *slog.Logger) Option {
	return func(u *Upload) {
		if l != nil {
			u.log = l
		}
	}
}

// WithLocker sets the destination locker passed down to every file.
func WithLocker(l Locker) Option {
	return func(u *Upload) { u.locker = l }
}

// New creates an empty batch using cfg as the default policy of added files.
//
// Example:
//
//	descs, err := upload.FromRequest(r)
//	if err != nil {
//		return err
//	}
//	u := upload.New(cfg, upload.WithLogger(log))
//	defer u.Cleanup()
//	u.Add(descs...)
//	u.Validate(ctx)
//	u.Save(ctx)
//	for _, f := range u.InvalidFiles() {
//		log.Info("rejected", "element", f.Element(), "errors", f.Errors())
//	}
func New(cfg Config, opts ...Option) *Upload {
	u := &Upload{
		cfg:   cfg,
		hooks: NewHooks(),
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Hooks returns the registry shared by the batch's files.
func (u *Upload) Hooks() *Hooks { return u.hooks }

// Register adds a hook for event to the shared registry.
func (u *Upload) Register(event Event, hook Hook) error {
	return u.hooks.Register(event, hook)
}

// SetConfig replaces the default policy and pushes it to every file.
func (u *Upload) SetConfig(cfg Config) {
	u.cfg = cfg
	for _, f := range u.files {
		f.SetConfig(cfg)
	}
}

// Configure applies named options to the default policy and to every file.
func (u *Upload) Configure(opts map[string]any) error {
	if err := u.cfg.Apply(opts); err != nil {
		return err
	}
	for _, f := range u.files {
		if err := f.Configure(opts); err != nil {
			return err
		}
	}
	return nil
}

// Add wraps descriptors into files configured with the default policy.
func (u *Upload) Add(descs ...Descriptor) {
	for _, d := range descs {
		f := NewFile(d, u.hooks, WithFileLogger(u.log), WithFileLocker(u.locker))
		f.SetConfig(u.cfg)
		u.files = append(u.files, f)
	}
}

// Len returns the number of files in the batch.
func (u *Upload) Len() int { return len(u.files) }

// Files returns all files in the order they were added.
func (u *Upload) Files() []*File {
	return append([]*File(nil), u.files...)
}

// Get returns the files whose element starts with element.
// Bracket notation is accepted: "docs[a][0]" matches "docs.a.0".
func (u *Upload) Get(element string) []*File {
	element = ElementPath(element)
	var found []*File
	for _, f := range u.files {
		if strings.HasPrefix(f.Element(), element) {
			found = append(found, f)
		}
	}
	return found
}

// Validate validates the selected files, or all files when no selector is given.
func (u *Upload) Validate(ctx context.Context, sel ...Selector) {
	for _, f := range u.selected(sel) {
		f.Validate(ctx)
	}
}

// Save saves the selected files, or all files when no selector is given.
func (u *Upload) Save(ctx context.Context, sel ...Selector) {
	for _, f := range u.selected(sel) {
		f.Save(ctx)
	}
}

// IsValid reports whether the batch is non-empty and every file is valid.
func (u *Upload) IsValid() bool {
	if len(u.files) == 0 {
		return false
	}
	for _, f := range u.files {
		if !f.IsValid() {
			return false
		}
	}
	return true
}

// ValidFiles returns the files currently marked valid.
func (u *Upload) ValidFiles() []*File {
	return u.filter(func(f *File) bool { return f.IsValid() })
}

// InvalidFiles returns the files currently marked invalid.
func (u *Upload) InvalidFiles() []*File {
	return u.filter(func(f *File) bool { return !f.IsValid() })
}

// Cleanup removes the temp files of files that were not saved locally.
// Errors other than a missing file are joined and returned.
func (u *Upload) Cleanup() error {
	var errs []error
	for _, f := range u.files {
		tmp := f.Descriptor().TmpPath
		if tmp == "" || (f.Saved() && f.Config().Mover == nil) {
			continue
		}
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (u *Upload) selected(sel []Selector) []*File {
	if len(sel) == 0 {
		return u.files
	}
	var out []*File
	for i, f := range u.files {
		for _, s := range sel {
			if s != nil && s(i, f) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (u *Upload) filter(keep func(*File) bool) []*File {
	var out []*File
	for _, f := range u.files {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// Selector picks files of a batch by position or content.
type Selector func(index int, f *File) bool

// ByIndex selects the file at position i.
func ByIndex(i int) Selector {
	return func(index int, _ *File) bool { return index == i }
}

// ByElement selects files whose element starts with element, bracket notation allowed.
func ByElement(element string) Selector {
	element = ElementPath(element)
	return func(_ int, f *File) bool { return strings.HasPrefix(f.Element(), element) }
}

// Match selects files for which fn returns true.
func Match(fn func(*File) bool) Selector {
	return func(_ int, f *File) bool { return fn(f) }
}

var bracketReplacer = strings.NewReplacer("][", ".", "[", ".", "]", "")

// ElementPath converts form bracket notation to dot notation.
func ElementPath(name string) string {
	return bracketReplacer.Replace(name)
}
