package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

func TestNew_EmptyPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestReadWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "posts.json")

	b, err := New(path)
	require.NoError(t, err)

	_, err = b.Read(ctx)
	require.ErrorIs(t, err, storage.ErrDocumentNotFound)

	require.NoError(t, b.Write(ctx, []byte(`[{"id":1}]`)))
	got, err := b.Read(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":1}]`, string(got))

	// Полная замена, а не дописывание.
	require.NoError(t, b.Write(ctx, []byte(`[]`)))
	got, err = b.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	// Временных файлов не остаётся.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, b.Close(ctx))
}

func TestRead_NotAFile(t *testing.T) {
	b, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = b.Read(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := New(filepath.Join(t.TempDir(), "posts.json"))
	require.NoError(t, err)

	require.ErrorIs(t, b.Write(ctx, []byte(`[]`)), context.Canceled)
	_, err = b.Read(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
