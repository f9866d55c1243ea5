package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates the base directory", func(t *testing.T) {
		t.Parallel()
		base := filepath.Join(t.TempDir(), "archive")

		_, err := New(Config{BaseDir: base})
		require.NoError(t, err)

		info, err := os.Stat(base)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	})

	t.Run("rejects empty base directory", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{BaseDir: "  "})
		require.Error(t, err)
	})

	t.Run("rejects a file as base directory", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

		_, err := New(Config{BaseDir: file})
		require.Error(t, err)
	})
}

func TestBlobStore_PutObject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("writes the blob and returns a file uri", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		store, err := New(Config{BaseDir: base})
		require.NoError(t, err)

		uri, err := store.PutObject(ctx, "listings/7/page.html", "text/html", []byte("<html/>"))
		require.NoError(t, err)
		require.Equal(t, "file://"+filepath.Join(base, "listings/7/page.html"), uri)

		data, err := os.ReadFile(filepath.Join(base, "listings/7/page.html"))
		require.NoError(t, err)
		require.Equal(t, []byte("<html/>"), data)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{BaseDir: t.TempDir()})
		require.NoError(t, err)

		_, err = store.PutObject(ctx, "../escape.html", "text/html", []byte("x"))
		require.ErrorContains(t, err, "path traversal")
	})

	t.Run("rejects empty path", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{BaseDir: t.TempDir()})
		require.NoError(t, err)

		_, err = store.PutObject(ctx, "", "text/html", []byte("x"))
		require.Error(t, err)
	})
}
