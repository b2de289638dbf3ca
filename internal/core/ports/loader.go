package ports

import (
	"context"
	"time"

	"go.trai.ch/twine/internal/core/domain"
)

// Loader resolves logical template names to their source.
//
//go:generate go run go.uber.org/mock/mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type Loader interface {
	// Exists reports whether the loader has a template with the given name.
	// It must be free of side effects and cheap enough to call repeatedly.
	Exists(ctx context.Context, name string) bool

	// Source returns the raw source of the named template.
	Source(ctx context.Context, name string) (*domain.Source, error)

	// CacheKey returns a key that uniquely identifies the named template's content origin.
	CacheKey(ctx context.Context, name string) (string, error)

	// IsFresh reports whether the named template is unchanged since t.
	IsFresh(ctx context.Context, name string, t time.Time) (bool, error)
}
