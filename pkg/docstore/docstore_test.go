package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	risks := b.Document("risks")
	memory := b.Document("memory")

	_, err := risks.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, risks.Save(ctx, []byte(`[1]`)))
	require.NoError(t, risks.Save(ctx, []byte(`[1,2]`)))
	require.NoError(t, memory.Save(ctx, []byte(`{}`)))

	got, err := risks.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	got, err = b.Document("memory").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()
	exerciseBackend(t, b)
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	exerciseBackend(t, b)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"risks.json", "memory.json"}, names)
}

func TestFileBackendSaveFailure(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	doc := b.Document("risks")
	require.NoError(t, os.RemoveAll(dir))

	err = doc.Save(context.Background(), []byte(`[]`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteBackend(t *testing.T) {
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "bizpulse.db"))
	require.NoError(t, err)
	defer b.Close()
	exerciseBackend(t, b)
}

func TestRedisBackend(t *testing.T) {
	host := os.Getenv("BIZPULSE_TEST_REDIS")
	if host == "" {
		t.Skip("BIZPULSE_TEST_REDIS not set")
	}
	b, err := NewRedisBackend(WithRedisHost(host), WithRedisPrefix("bizpulse-test-"+t.Name()))
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	for _, name := range []string{"risks", "memory"} {
		require.NoError(t, b.client.Del(ctx, b.prefix+":"+name).Err())
	}
	exerciseBackend(t, b)
}
