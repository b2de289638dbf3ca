// Package remote implements a template loader reading from any storage afs supports
// (local files, mem://, s3://, gs:// and others registered with afs).
package remote

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Loader = (*Loader)(nil)

// Loader serves templates stored under a base URL. A template name is
// joined to the base URL to form the template's location.
type Loader struct {
	fs      afs.Service
	baseURL string
}

// NewLoader creates a Loader reading templates below baseURL.
func NewLoader(fs afs.Service, baseURL string) *Loader {
	return &Loader{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the URL templates are resolved against.
func (l *Loader) BaseURL() string {
	return l.baseURL
}

// Exists reports whether an object is stored under name. Storage errors are
// reported as absence.
func (l *Loader) Exists(ctx context.Context, name string) bool {
	location, err := l.location(name)
	if err != nil {
		return false
	}
	ok, err := l.fs.Exists(ctx, location)
	return err == nil && ok
}

// Source downloads the template stored under name.
func (l *Loader) Source(ctx context.Context, name string) (*domain.Source, error) {
	location, err := l.location(name)
	if err != nil {
		return nil, err
	}

	data, err := l.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to download template"), "url", location)
	}
	return domain.NewSource(string(data), name, location), nil
}

// CacheKey returns the template's URL.
func (l *Loader) CacheKey(_ context.Context, name string) (string, error) {
	return l.location(name)
}

// IsFresh reports whether the stored object has not been modified after t.
func (l *Loader) IsFresh(ctx context.Context, name string, t time.Time) (bool, error) {
	location, err := l.location(name)
	if err != nil {
		return false, err
	}

	object, err := l.fs.Object(ctx, location)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to stat template"), "url", location)
	}
	return !object.ModTime().After(t), nil
}

func (l *Loader) location(name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidTemplateName, "name contains a NUL byte"), "name", name)
	}

	parts := strings.Split(strings.Trim(name, "/"), "/")
	if slices.Contains(parts, "..") {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidTemplateName, "name must not contain '..'"), "name", name)
	}
	return url.Join(l.baseURL, parts...), nil
}

// String identifies the loader in chain failure reports.
func (l *Loader) String() string {
	return "url(" + l.baseURL + ")"
}
