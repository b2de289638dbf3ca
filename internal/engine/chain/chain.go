// Package chain implements a loader that resolves templates against an ordered chain of loaders.
package chain

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
)

var _ ports.Loader = (*Chain)(nil)

// Chain resolves template names against an ordered sequence of loaders.
// The first loader, in insertion order, that claims a template and serves it wins.
//
// Exists results are memoized per name. The memo is dropped whenever a loader is
// added. Source, CacheKey and IsFresh never read the memo; they ask each loader
// for existence again on every call.
//
// A Chain is safe for concurrent use.
type Chain struct {
	mu      sync.RWMutex
	loaders []ports.Loader

	cacheMu sync.Mutex
	exists  map[string]bool
}

// NewChain creates a Chain consulting loaders in the given order.
func NewChain(loaders ...ports.Loader) *Chain {
	c := &Chain{exists: make(map[string]bool)}
	for _, l := range loaders {
		c.AddLoader(l)
	}
	return c
}

// AddLoader appends l to the end of the chain and clears the existence cache.
func (c *Chain) AddLoader(l ports.Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaders = append(c.loaders, l)

	c.cacheMu.Lock()
	clear(c.exists)
	c.cacheMu.Unlock()
}

// Loaders returns a copy of the loaders in chain order.
func (c *Chain) Loaders() []ports.Loader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.loaders)
}

// Exists reports whether any loader in the chain has the named template.
func (c *Chain) Exists(ctx context.Context, name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.cacheMu.Lock()
	found, ok := c.exists[name]
	c.cacheMu.Unlock()
	if ok {
		return found
	}

	for _, l := range c.loaders {
		if l.Exists(ctx, name) {
			found = true
			break
		}
	}

	// Holding the read lock keeps AddLoader from clearing the cache between
	// the lookup above and this write.
	c.cacheMu.Lock()
	c.exists[name] = found
	c.cacheMu.Unlock()

	return found
}

// Source returns the source of the named template from the first loader that serves it.
func (c *Chain) Source(ctx context.Context, name string) (*domain.Source, error) {
	return resolve(ctx, c, name, func(l ports.Loader) (*domain.Source, error) {
		return l.Source(ctx, name)
	})
}

// CacheKey returns the cache key of the named template from the first loader that serves it.
func (c *Chain) CacheKey(ctx context.Context, name string) (string, error) {
	return resolve(ctx, c, name, func(l ports.Loader) (string, error) {
		return l.CacheKey(ctx, name)
	})
}

// IsFresh reports freshness of the named template from the first loader that serves it.
func (c *Chain) IsFresh(ctx context.Context, name string, t time.Time) (bool, error) {
	return resolve(ctx, c, name, func(l ports.Loader) (bool, error) {
		return l.IsFresh(ctx, name, t)
	})
}

// resolve walks the chain in order, skipping loaders that do not claim name.
// Failures of loaders that claim name are collected in chain order and returned
// as a *domain.ResolutionError once the chain is exhausted.
func resolve[T any](ctx context.Context, c *Chain, name string, fetch func(ports.Loader) (T, error)) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var failures []domain.LoaderFailure
	for _, l := range c.loaders {
		if !l.Exists(ctx, name) {
			continue
		}

		v, err := fetch(l)
		if err == nil {
			return v, nil
		}
		failures = append(failures, domain.LoaderFailure{
			Loader:  loaderName(l),
			Message: err.Error(),
		})
	}

	var zero T
	return zero, domain.NewResolutionError(name, failures)
}

// loaderName identifies a loader in failure reports.
func loaderName(l ports.Loader) string {
	if s, ok := l.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", l)
}
