package upload_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// receivedFile writes content to a temp file the way ingestion would and
// returns its descriptor.
func receivedFile(t *testing.T, element, name string, content []byte) upload.Descriptor {
	t.Helper()

	tmp, err := os.CreateTemp(t.TempDir(), "upload-*")
	require.NoError(t, err)
	_, err = tmp.Write(content)
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	return upload.Descriptor{
		Element: element,
		Name:    name,
		Type:    "application/octet-stream",
		TmpPath: tmp.Name(),
		Size:    int64(len(content)),
	}
}

func localConfig(dir string) upload.Config {
	cfg := upload.DefaultConfig()
	cfg.Path = dir
	return cfg
}

func validatedFile(t *testing.T, desc upload.Descriptor, cfg upload.Config, hooks *upload.Hooks) *upload.File {
	t.Helper()
	f := upload.NewFile(desc, hooks)
	f.SetConfig(cfg)
	f.Validate(context.Background())
	return f
}

func codesOf(errs []upload.FileError) []int {
	codes := make([]int, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	return codes
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}
