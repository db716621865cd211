package upload_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

func TestUpload_Batch(t *testing.T) {
	t.Parallel()

	newBatch := func(t *testing.T) (*upload.Upload, string) {
		dir := t.TempDir()
		cfg := localConfig(dir)
		cfg.ExtWhitelist = []string{"txt"}

		u := upload.New(cfg)
		u.Add(
			receivedFile(t, "docs.0", "a.txt", []byte("first")),
			receivedFile(t, "docs.1", "b.exe", []byte("second")),
			receivedFile(t, "avatar", "me.txt", []byte("third")),
		)
		return u, dir
	}

	t.Run("empty batch is not valid", func(t *testing.T) {
		t.Parallel()
		u := upload.New(upload.DefaultConfig())
		u.Validate(context.Background())
		assert.False(t, u.IsValid())
		assert.Equal(t, 0, u.Len())
	})

	t.Run("validate splits valid and invalid", func(t *testing.T) {
		t.Parallel()
		u, _ := newBatch(t)
		u.Validate(context.Background())

		assert.False(t, u.IsValid())
		assert.Len(t, u.ValidFiles(), 2)
		require.Len(t, u.InvalidFiles(), 1)
		assert.Equal(t, "docs.1", u.InvalidFiles()[0].Element())
	})

	t.Run("save persists valid files only", func(t *testing.T) {
		t.Parallel()
		u, dir := newBatch(t)
		u.Validate(context.Background())
		u.Save(context.Background())

		assert.FileExists(t, dir+"/a.txt")
		assert.FileExists(t, dir+"/me.txt")
		assert.NoFileExists(t, dir+"/b.exe")
	})

	t.Run("get by element prefix", func(t *testing.T) {
		t.Parallel()
		u, _ := newBatch(t)

		assert.Len(t, u.Get("docs"), 2)
		assert.Len(t, u.Get("docs[1]"), 1)
		assert.Len(t, u.Get("avatar"), 1)
		assert.Empty(t, u.Get("missing"))
	})

	t.Run("selectors", func(t *testing.T) {
		t.Parallel()
		u, _ := newBatch(t)
		u.Validate(context.Background(), upload.ByIndex(0), upload.ByElement("avatar"))

		files := u.Files()
		assert.True(t, files[0].IsValidated())
		assert.False(t, files[1].IsValidated())
		assert.True(t, files[2].IsValidated())

		u.Validate(context.Background(), upload.Match(func(f *upload.File) bool { return !f.IsValidated() }))
		assert.True(t, u.Files()[1].IsValidated())
	})

	t.Run("configure propagates to files", func(t *testing.T) {
		t.Parallel()
		u, _ := newBatch(t)
		require.NoError(t, u.Configure(map[string]any{"ext_whitelist": "txt,exe"}))
		u.Validate(context.Background())
		assert.True(t, u.IsValid())
	})

	t.Run("configure rejects bad value", func(t *testing.T) {
		t.Parallel()
		u, _ := newBatch(t)
		err := u.Configure(map[string]any{"max_size": []int{1}})
		assert.True(t, errors.Is(err, upload.ErrInvalidOption))
	})

	t.Run("shared hooks", func(t *testing.T) {
		t.Parallel()
		hooks := upload.NewHooks()
		u := upload.New(upload.DefaultConfig(), upload.WithHooks(hooks))
		require.NoError(t, u.Register(upload.AfterValidation, func(context.Context, *upload.File) []upload.FileError {
			return nil
		}))
		assert.Same(t, hooks, u.Hooks())
		assert.Equal(t, 1, hooks.Len(upload.AfterValidation))
	})

	t.Run("cleanup removes unsaved temp files", func(t *testing.T) {
		t.Parallel()
		u, _ := newBatch(t)
		u.Validate(context.Background())
		u.Save(context.Background())

		invalid := u.InvalidFiles()[0].Descriptor().TmpPath
		require.FileExists(t, invalid)

		require.NoError(t, u.Cleanup())
		_, err := os.Stat(invalid)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestElementPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"avatar":       "avatar",
		"docs[a]":      "docs.a",
		"docs[a][b]":   "docs.a.b",
		"docs[0][img]": "docs.0.img",
		"docs.a":       "docs.a",
	}
	for in, want := range tests {
		assert.Equal(t, want, upload.ElementPath(in), in)
	}
}
