package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

func newBackend(t *testing.T, path, name string) *Backend {
	t.Helper()

	b, err := New(context.Background(), path, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })

	return b
}

func TestReadWrite(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, filepath.Join(t.TempDir(), "forum.db"), "posts")

	_, err := b.Read(ctx)
	require.ErrorIs(t, err, storage.ErrDocumentNotFound)

	require.NoError(t, b.Write(ctx, []byte(`[{"id":1}]`)))
	require.NoError(t, b.Write(ctx, []byte(`[{"id":2}]`)))

	got, err := b.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, `[{"id":2}]`, string(got))

	var rows int
	require.NoError(t, b.db.GetContext(ctx, &rows, `SELECT count(*) FROM forest_documents`))
	require.Equal(t, 1, rows)
}

func TestDocumentsAreIsolatedByName(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "forum.db")

	a := newBackend(t, path, "a")
	require.NoError(t, a.Write(ctx, []byte(`["a"]`)))

	b := newBackend(t, path, "b")
	_, err := b.Read(ctx)
	require.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "forum.db")

	first, err := New(ctx, path, "posts")
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, []byte(`[]`)))
	require.NoError(t, first.Close(ctx))

	second := newBackend(t, path, "posts")
	got, err := second.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))
}
