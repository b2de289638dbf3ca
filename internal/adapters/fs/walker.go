// Package fs provides a filesystem template loader.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// Walker yields template files below a directory.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the paths of all files below root, relative to root and
// slash-separated. Hidden directories (.git, .jj, ...) and entries matching
// one of the ignore patterns are skipped.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}

			if d.IsDir() {
				if w.skipDir(d.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}

			if matchesAny(d.Name(), ignores) {
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			if !yield(filepath.ToSlash(rel)) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) skipDir(name string, ignores []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return matchesAny(name, ignores)
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
