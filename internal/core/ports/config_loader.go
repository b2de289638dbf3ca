package ports

import "go.trai.ch/twine/internal/core/domain"

// ConfigLoader defines the interface for loading the chain configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration at path. An empty path discovers the
	// configuration file in cwd.
	Load(cwd, path string) (*domain.ChainConfig, error)
}
