// Package index implements the render record store.
package index

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPath is where the store lives relative to the configuration root.
const DefaultPath = ".twine/index.json"

var _ ports.RecordStore = (*Store)(nil)

// Store implements ports.RecordStore using a flat JSON file.
type Store struct {
	path    string
	mu      sync.RWMutex
	records map[string]domain.RenderRecord
}

// NewStore creates a new RecordStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    filepath.Clean(path),
		records: make(map[string]domain.RenderRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read render index"), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal render index"), "path", s.path)
	}
	return nil
}

// save must be called with mu held.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal render index")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory for render index"), "path", s.path)
	}

	// Write to a sibling file first so a crash never leaves a truncated index.
	tmp := s.path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write render index"), "path", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace render index"), "path", s.path)
	}
	return nil
}

// Get retrieves the record for a given template name.
func (s *Store) Get(name string) (*domain.RenderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[name]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record and persists the index.
func (s *Store) Put(record domain.RenderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.records[record.Name]
	s.records[record.Name] = record
	if err := s.save(); err != nil {
		if existed {
			s.records[record.Name] = prev
		} else {
			delete(s.records, record.Name)
		}
		return err
	}
	return nil
}

// Anchor moves the store to DefaultPath below root and loads the records kept there.
func (s *Store) Anchor(root string) error {
	s.mu.Lock()
	s.path = filepath.Join(root, DefaultPath)
	s.records = make(map[string]domain.RenderRecord)
	s.mu.Unlock()
	return s.load()
}
