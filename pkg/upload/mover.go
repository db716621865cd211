package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"syscall"
)

// Mover persists a received file somewhere other than the local filesystem.
// A non-nil error marks the file with CodeExternalMoveFailed.
type Mover interface {
	Move(ctx context.Context, src, dst string) error
}

// MoverFunc adapts a function to the Mover interface.
type MoverFunc func(ctx context.Context, src, dst string) error

func (fn MoverFunc) Move(ctx context.Context, src, dst string) error {
	return fn(ctx, src, dst)
}

// boolMover adapts callbacks that only report success.
type boolMover func(src, dst string) bool

func (fn boolMover) Move(_ context.Context, src, dst string) error {
	if !fn(src, dst) {
		return fmt.Errorf("move %s to %s reported failure", src, dst)
	}
	return nil
}

// moveLocal renames src to dst, copying when they live on different devices.
func moveLocal(src, dst string, perm os.FileMode) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := copyInto(src, dst, perm); err != nil {
		return err
	}
	_ = os.Remove(src)
	return nil
}

// copyInto writes src to a temp file next to dst, syncs it, and renames it
// over dst so readers never observe a partial file.
func copyInto(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	_ = os.Chmod(tmpName, perm)

	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// joinRemote joins a remote directory and name with forward slashes.
func joinRemote(dir, name string) string {
	return path.Join(filepath.ToSlash(dir), name)
}
