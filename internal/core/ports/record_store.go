package ports

import "go.trai.ch/twine/internal/core/domain"

// RecordStore defines the interface for storing and retrieving render records.
//
//go:generate go run go.uber.org/mock/mockgen -source=record_store.go -destination=mocks/mock_record_store.go -package=mocks
type RecordStore interface {
	// Get retrieves the record for a given template name.
	// Returns nil, nil if not found.
	Get(name string) (*domain.RenderRecord, error)

	// Put stores the record.
	Put(record domain.RenderRecord) error
}
