package upload

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrymomot/uploadkit/pkg/logger"
)

// Save persists a valid file and reports whether it is still valid afterwards.
// It is a no-op returning false for invalid files. Every failure is recorded
// as a FileError; a collision claim created along the way is removed again
// when the save fails.
func (f *File) Save(ctx context.Context) bool {
	f.saved = false
	if !f.isValid {
		return false
	}

	claim := f.persist(ctx)

	if f.isValid {
		f.runHooks(ctx, AfterSave)
	} else if claim != "" {
		if err := os.Remove(claim); err != nil && !os.IsNotExist(err) {
			f.log.WarnContext(ctx, "failed to remove collision claim",
				logger.Filename(claim), logger.Error(err))
		}
	}

	if f.saved {
		f.log.InfoContext(ctx, "upload saved",
			logger.Element(f.desc.Element),
			logger.Filename(f.Destination()),
			logger.Size(f.desc.Size),
		)
	} else {
		f.log.WarnContext(ctx, "upload not saved",
			logger.Element(f.desc.Element),
			logger.Filename(f.desc.Name),
			logger.ErrorCodes(f.codes()...),
		)
	}
	return f.isValid
}

// persist runs the save steps up to and including the move. It returns the
// path of the empty placeholder it created to claim a free name, if any.
func (f *File) persist(ctx context.Context) (claim string) {
	remote := f.cfg.Mover != nil

	if !f.prepareDir(remote) {
		return ""
	}

	f.composeBaseName()
	parts := f.nameParts()

	if f.locker != nil {
		unlock, err := f.locker.Lock(ctx, filepath.ToSlash(filepath.Join(f.path, parts.String())))
		if err != nil {
			f.log.WarnContext(ctx, "destination lock failed", logger.Element(f.desc.Element), logger.Error(err))
			f.addError(CodeMoveFailed)
			return ""
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				f.log.WarnContext(ctx, "destination unlock failed", logger.Error(err))
			}
		}()
	}

	if !remote {
		claim = f.resolveCollision(ctx, &parts)
	}
	f.filename = parts.String()

	if f.cfg.MaxLength > 0 && len(f.filename) > f.cfg.MaxLength {
		f.addError(CodeMaxFilenameLength)
	}
	if !f.isValid {
		return claim
	}

	f.runHooks(ctx, BeforeSave)

	// a hook may have pointed the file somewhere else
	if f.isValid && !remote && !isDir(f.path) && f.cfg.CreatePath {
		f.mkdir()
	}
	if !f.isValid {
		return claim
	}

	dst := f.Destination()
	if remote {
		if err := f.cfg.Mover.Move(ctx, f.desc.TmpPath, dst); err != nil {
			f.log.WarnContext(ctx, "remote move failed", logger.Filename(dst), logger.Error(err))
			f.addError(CodeExternalMoveFailed)
			return claim
		}
	} else {
		perm := f.cfg.FileChmod.FileMode()
		if err := moveLocal(f.desc.TmpPath, dst, perm); err != nil {
			f.log.WarnContext(ctx, "move failed", logger.Filename(dst), logger.Error(err))
			f.addError(CodeMoveFailed)
			return claim
		}
		_ = os.Chmod(dst, perm)

		// the claim was replaced by the file unless a hook renamed it
		if claim != "" && claim != dst {
			_ = os.Remove(claim)
		}
		claim = ""
	}

	f.saved = true
	return claim
}

// prepareDir resolves the destination directory, creating it when allowed.
func (f *File) prepareDir(remote bool) bool {
	if f.path == "" {
		f.path = f.cfg.Path
	}

	if remote {
		if f.path != "" {
			f.path = filepath.ToSlash(filepath.Clean(f.path))
		}
		return true
	}

	if f.path == "" {
		f.addError(CodeNoPath)
		return false
	}
	f.path = withTrailingSep(f.path)

	if !isDir(f.path) {
		if !f.cfg.CreatePath {
			f.addError(CodeNoPath)
			return false
		}
		if !f.mkdir() {
			return false
		}
	}

	abs, err := filepath.Abs(f.path)
	if err == nil {
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			abs = real
		}
		f.path = withTrailingSep(abs)
	}
	return true
}

// mkdir creates the destination directory. A concurrent creator winning the
// race is not an error.
func (f *File) mkdir() bool {
	err := os.MkdirAll(f.path, f.cfg.PathChmod.FileMode())
	if isDir(f.path) {
		return true
	}
	f.log.Warn("failed to create destination directory", logger.Filename(f.path), logger.Error(err))
	f.addError(CodeMkdirFailed)
	return false
}

// composeBaseName picks the filename stem unless a caller or hook preset it,
// then applies a configured new_name override.
func (f *File) composeBaseName() {
	if f.filename == "" {
		if f.cfg.Randomize {
			f.filename = f.randomName()
		} else {
			f.filename = f.basename
			if f.cfg.Normalize {
				f.filename = Normalize(f.filename, f.cfg.NormalizeSeparator)
			}
		}
	}

	if f.cfg.NewName != "" {
		base := filepath.Base(f.cfg.NewName)
		ext := filepath.Ext(base)
		if stem := strings.TrimSuffix(base, ext); stem != "" {
			f.filename = stem
		}
		if ext = strings.TrimPrefix(ext, "."); ext != "" {
			f.extension = ext
		}
	}
}

// randomName derives a hex name from the descriptor, whose temp path is unique per upload.
func (f *File) randomName() string {
	d := f.desc
	sum := md5.Sum(fmt.Appendf(nil, "%s\x00%s\x00%s\x00%s\x00%d\x00%d",
		d.Element, d.Name, d.Type, d.TmpPath, d.Error, d.Size))
	return hex.EncodeToString(sum[:])
}

// nameParts are the components of a stored filename, in order.
type nameParts struct {
	prefix  string
	name    string
	suffix  string
	counter string
	ext     string
}

func (p nameParts) String() string {
	s := p.prefix + p.name + p.suffix + p.counter
	if p.ext != "" {
		s += "." + p.ext
	}
	return s
}

func (f *File) nameParts() nameParts {
	ext := f.extension
	if f.cfg.Extension != "" {
		ext = strings.TrimPrefix(f.cfg.Extension, ".")
	}
	p := nameParts{
		prefix: f.cfg.Prefix,
		name:   f.filename,
		suffix: f.cfg.Suffix,
		ext:    ext,
	}

	var transform func(string) string
	switch f.cfg.ChangeCase {
	case CaseUpper:
		transform = strings.ToUpper
	case CaseLower:
		transform = strings.ToLower
	default:
		return p
	}
	p.prefix = transform(p.prefix)
	p.name = transform(p.name)
	p.suffix = transform(p.suffix)
	p.ext = transform(p.ext)
	return p
}

// resolveCollision handles an existing file at the target name. With
// auto-rename it appends the smallest free "_n" and claims that name by
// creating an empty file exclusively, returning its path.
func (f *File) resolveCollision(ctx context.Context, parts *nameParts) string {
	if !exists(filepath.Join(f.path, parts.String())) {
		return ""
	}

	if !f.cfg.AutoRename {
		if !f.cfg.Overwrite {
			f.addError(CodeDuplicateFile)
		}
		return ""
	}

	for n := 1; ; n++ {
		parts.counter = "_" + strconv.Itoa(n)
		candidate := filepath.Join(f.path, parts.String())

		fh, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, f.cfg.FileChmod.FileMode())
		if err == nil {
			_ = fh.Close()
			return candidate
		}
		if !os.IsExist(err) {
			// leave the name unclaimed; the move reports the real failure
			f.log.WarnContext(ctx, "failed to claim filename", logger.Filename(candidate), logger.Error(err))
			return ""
		}
	}
}

func withTrailingSep(p string) string {
	return strings.TrimRight(p, `/\`) + string(filepath.Separator)
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
