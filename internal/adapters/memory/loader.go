// Package memory implements a template loader backed by an in-memory map.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Loader = (*Loader)(nil)

// Loader serves templates held in memory. Templates never go stale.
type Loader struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewLoader creates a Loader seeded with templates keyed by name.
func NewLoader(templates map[string]string) *Loader {
	l := &Loader{templates: make(map[string]string, len(templates))}
	for name, code := range templates {
		l.templates[name] = code
	}
	return l
}

// Set adds or replaces a template.
func (l *Loader) Set(name, code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[name] = code
}

// List returns the names of all held templates, sorted.
func (l *Loader) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Exists reports whether a template is held under name.
func (l *Loader) Exists(_ context.Context, name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.templates[name]
	return ok
}

// Source returns the template held under name.
func (l *Loader) Source(_ context.Context, name string) (*domain.Source, error) {
	code, err := l.lookup(name)
	if err != nil {
		return nil, err
	}
	return domain.NewSource(code, name, ""), nil
}

// CacheKey returns name and content joined by a colon, so edits yield a new key.
func (l *Loader) CacheKey(_ context.Context, name string) (string, error) {
	code, err := l.lookup(name)
	if err != nil {
		return "", err
	}
	return name + ":" + code, nil
}

// IsFresh always reports true for a known template.
func (l *Loader) IsFresh(_ context.Context, name string, _ time.Time) (bool, error) {
	if _, err := l.lookup(name); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Loader) lookup(name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	code, ok := l.templates[name]
	if !ok {
		return "", zerr.With(zerr.Wrap(domain.ErrTemplateNotFound, "template is not defined"), "name", name)
	}
	return code, nil
}

// String identifies the loader in chain failure reports.
func (l *Loader) String() string {
	return "memory"
}
