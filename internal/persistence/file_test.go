package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDocumentMissing(t *testing.T) {
	doc := NewFileDocument(filepath.Join(t.TempDir(), "tickets.json"))

	_, err := doc.Read(context.Background())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFileDocumentWriteReplaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc := NewFileDocument(filepath.Join(dir, "nested", "tickets.json"))

	require.NoError(t, doc.Write(ctx, []byte(`{"counter":1}`)))
	require.NoError(t, doc.Write(ctx, []byte(`{"counter":2}`)))

	data, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"counter":2}`, string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "staging files must not be left behind")
	assert.Equal(t, "tickets.json", entries[0].Name())
	assert.NoError(t, doc.Ping(ctx))
}

func TestMemoryDocumentFailures(t *testing.T) {
	ctx := context.Background()
	doc := NewMemoryDocument()

	_, err := doc.Read(ctx)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, doc.Write(ctx, []byte("a")))
	doc.SetFailures(nil, assert.AnError)
	assert.ErrorIs(t, doc.Write(ctx, []byte("b")), assert.AnError)

	data, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, 1, doc.Writes())
}
