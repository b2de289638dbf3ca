package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Loader = (*Loader)(nil)

// Loader serves templates from directories on disk.
//
// Directories are grouped into namespaces. A name of the form "@admin/page.html"
// is looked up in the "admin" namespace; any other name is looked up in the
// main namespace. Within a namespace, directories are searched in order.
type Loader struct {
	root   string
	walker *Walker

	mu         sync.RWMutex
	paths      map[string][]string
	cache      map[string]string
	errorCache map[string]error
}

// NewLoader creates a Loader. Relative directories are resolved against root;
// an empty root means the current working directory. paths are added to the
// main namespace.
func NewLoader(root string, walker *Walker, paths ...string) (*Loader, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		root = wd
	}

	l := &Loader{
		root:       filepath.Clean(root),
		walker:     walker,
		paths:      make(map[string][]string),
		cache:      make(map[string]string),
		errorCache: make(map[string]error),
	}
	for _, p := range paths {
		if err := l.AddPath(p, domain.MainNamespace); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Namespaces returns the registered namespaces in sorted order.
func (l *Loader) Namespaces() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.paths))
	for ns := range l.paths {
		names = append(names, ns)
	}
	slices.Sort(names)
	return names
}

// Paths returns the directories registered for namespace.
func (l *Loader) Paths(namespace string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.paths[namespace])
}

// AddPath appends dir to the search path of namespace.
func (l *Loader) AddPath(dir, namespace string) error {
	abs, err := l.checkDir(dir)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths[namespace] = append(l.paths[namespace], abs)
	l.resetCaches()
	return nil
}

// PrependPath inserts dir at the front of the search path of namespace.
func (l *Loader) PrependPath(dir, namespace string) error {
	abs, err := l.checkDir(dir)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths[namespace] = append([]string{abs}, l.paths[namespace]...)
	l.resetCaches()
	return nil
}

func (l *Loader) checkDir(dir string) (string, error) {
	abs := dir
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(l.root, dir)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", zerr.With(zerr.New("template directory does not exist"), "path", abs)
	}
	return abs, nil
}

// Dirs returns every registered directory across all namespaces, sorted and deduplicated.
func (l *Loader) Dirs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var dirs []string
	for _, p := range l.paths {
		dirs = append(dirs, p...)
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// Reset forgets every resolved name, so files created or removed since the
// last lookup are seen.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetCaches()
}

// resetCaches must be called with mu held for writing.
func (l *Loader) resetCaches() {
	clear(l.cache)
	clear(l.errorCache)
}

// Exists reports whether name resolves to a file in one of the search paths.
func (l *Loader) Exists(_ context.Context, name string) bool {
	_, err := l.find(name)
	return err == nil
}

// Source reads the template file name resolves to.
func (l *Loader) Source(_ context.Context, name string) (*domain.Source, error) {
	path, err := l.find(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is confined to a configured directory
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read template"), "path", path)
	}
	return domain.NewSource(string(data), name, path), nil
}

// CacheKey returns a hash of the resolved file path.
func (l *Loader) CacheKey(_ context.Context, name string) (string, error) {
	path, err := l.find(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(path)), nil
}

// IsFresh reports whether the resolved file has not been modified after t.
func (l *Loader) IsFresh(_ context.Context, name string, t time.Time) (bool, error) {
	path, err := l.find(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to stat template"), "path", path)
	}
	return !info.ModTime().After(t), nil
}

// List returns the names of all templates reachable through the search paths,
// sorted. Names in namespaces other than the main one carry an "@namespace/" prefix.
func (l *Loader) List() []string {
	l.mu.RLock()
	paths := make(map[string][]string, len(l.paths))
	for ns, dirs := range l.paths {
		paths[ns] = slices.Clone(dirs)
	}
	l.mu.RUnlock()

	seen := make(map[string]bool)
	for ns, dirs := range paths {
		for _, dir := range dirs {
			for rel := range l.walker.WalkFiles(dir, nil) {
				name := rel
				if ns != domain.MainNamespace {
					name = "@" + ns + "/" + rel
				}
				seen[name] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// find resolves name to a file path. Results, including failures, are cached
// until the search paths change.
func (l *Loader) find(name string) (string, error) {
	name = normalizeName(name)

	l.mu.RLock()
	if path, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return path, nil
	}
	if err, ok := l.errorCache[name]; ok {
		l.mu.RUnlock()
		return "", err
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	path, err := l.lookup(name)
	if err != nil {
		l.errorCache[name] = err
		return "", err
	}
	l.cache[name] = path
	return path, nil
}

// lookup must be called with mu held.
func (l *Loader) lookup(name string) (string, error) {
	namespace, shortName, err := parseName(name)
	if err != nil {
		return "", err
	}

	if err := validateName(name, shortName); err != nil {
		return "", err
	}

	dirs, ok := l.paths[namespace]
	if !ok {
		return "", zerr.With(
			zerr.With(zerr.Wrap(domain.ErrUnknownNamespace, "no template directories registered"), "namespace", namespace),
			"name", name,
		)
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, filepath.FromSlash(shortName))
		if info, statErr := os.Stat(candidate); statErr == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	return "", zerr.With(
		zerr.With(zerr.Wrap(domain.ErrTemplateNotFound, "unable to find template"), "name", name),
		"paths", strings.Join(dirs, ", "),
	)
}

func normalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	for strings.Contains(name, "//") {
		name = strings.ReplaceAll(name, "//", "/")
	}
	return name
}

// validateName rejects names containing NUL bytes or whose path within the
// namespace climbs above its directory.
func validateName(name, shortName string) error {
	if strings.ContainsRune(name, 0) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTemplateName, "name contains a NUL byte"), "name", name)
	}

	level := 0
	for _, part := range strings.Split(strings.TrimLeft(shortName, "/"), "/") {
		switch part {
		case "", ".":
		case "..":
			level--
		default:
			level++
		}
		if level < 0 {
			return zerr.With(
				zerr.Wrap(domain.ErrInvalidTemplateName, "name points outside the configured directories"),
				"name", name,
			)
		}
	}
	return nil
}

func parseName(name string) (string, string, error) {
	if !strings.HasPrefix(name, "@") {
		return domain.MainNamespace, strings.TrimLeft(name, "/"), nil
	}

	pos := strings.Index(name, "/")
	if pos < 0 {
		return "", "", zerr.With(
			zerr.Wrap(domain.ErrInvalidTemplateName, "malformed namespaced template name"),
			"name", name,
		)
	}
	return name[1:pos], name[pos+1:], nil
}

// String identifies the loader in chain failure reports.
func (l *Loader) String() string {
	return "filesystem"
}
