package remote_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"go.trai.ch/twine/internal/adapters/remote"
	"go.trai.ch/twine/internal/core/domain"
)

func newStore(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":        "remote index",
		"partials/nav.html": "remote nav",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir, "file://" + filepath.ToSlash(dir)
}

func TestLoader_Source(t *testing.T) {
	_, baseURL := newStore(t)
	l := remote.NewLoader(afs.New(), baseURL+"/")
	ctx := context.Background()

	assert.Equal(t, baseURL, l.BaseURL())

	src, err := l.Source(ctx, "index.html")
	require.NoError(t, err)
	assert.Equal(t, "remote index", src.Code)
	assert.Equal(t, "index.html", src.Name)
	assert.Equal(t, baseURL+"/index.html", src.Path)

	src, err = l.Source(ctx, "partials/nav.html")
	require.NoError(t, err)
	assert.Equal(t, "remote nav", src.Code)
}

func TestLoader_Exists(t *testing.T) {
	_, baseURL := newStore(t)
	l := remote.NewLoader(afs.New(), baseURL)
	ctx := context.Background()

	assert.True(t, l.Exists(ctx, "index.html"))
	assert.False(t, l.Exists(ctx, "missing.html"))
	assert.False(t, l.Exists(ctx, "../index.html"))
}

func TestLoader_Source_Missing(t *testing.T) {
	_, baseURL := newStore(t)
	l := remote.NewLoader(afs.New(), baseURL)

	_, err := l.Source(context.Background(), "missing.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download template")
}

func TestLoader_InvalidName(t *testing.T) {
	_, baseURL := newStore(t)
	l := remote.NewLoader(afs.New(), baseURL)

	_, err := l.CacheKey(context.Background(), "a/../../etc/passwd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTemplateName))
}

func TestLoader_CacheKey(t *testing.T) {
	_, baseURL := newStore(t)
	l := remote.NewLoader(afs.New(), baseURL)

	key, err := l.CacheKey(context.Background(), "partials/nav.html")
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/partials/nav.html", key)
}

func TestLoader_IsFresh(t *testing.T) {
	dir, baseURL := newStore(t)
	l := remote.NewLoader(afs.New(), baseURL)
	ctx := context.Background()

	modTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "index.html"), modTime, modTime))

	fresh, err := l.IsFresh(ctx, "index.html", modTime.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = l.IsFresh(ctx, "index.html", modTime.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, fresh)

	_, err = l.IsFresh(ctx, "missing.html", modTime)
	require.Error(t, err)
}

func TestLoader_String(t *testing.T) {
	l := remote.NewLoader(afs.New(), "mem://localhost/templates")
	assert.Equal(t, "url(mem://localhost/templates)", l.String())
}
