package app

import (
	"slices"

	"github.com/viant/afs"
	"go.trai.ch/twine/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/memory" //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/remote" //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/twine/internal/engine/chain"
	"go.trai.ch/zerr"
)

// BuildChain creates a chain holding one loader per configuration entry, in order.
func BuildChain(cfg *domain.ChainConfig, walker *fs.Walker, storage afs.Service) (*chain.Chain, error) {
	if len(cfg.Loaders) == 0 {
		return nil, domain.ErrNoLoadersConfigured
	}

	c := chain.NewChain()
	for i, lc := range cfg.Loaders {
		l, err := newLoader(cfg.Root, lc, walker, storage)
		if err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(err, "failed to create loader"), "index", i), "type", lc.Type)
		}
		c.AddLoader(l)
	}
	return c, nil
}

func newLoader(root string, lc domain.LoaderConfig, walker *fs.Walker, storage afs.Service) (ports.Loader, error) {
	switch lc.Type {
	case domain.LoaderTypeMemory:
		return memory.NewLoader(lc.Templates), nil

	case domain.LoaderTypeFilesystem:
		l, err := fs.NewLoader(root, walker, lc.Paths...)
		if err != nil {
			return nil, err
		}

		namespaces := make([]string, 0, len(lc.Namespaces))
		for ns := range lc.Namespaces {
			namespaces = append(namespaces, ns)
		}
		slices.Sort(namespaces)

		for _, ns := range namespaces {
			for _, dir := range lc.Namespaces[ns] {
				if err := l.AddPath(dir, ns); err != nil {
					return nil, err
				}
			}
		}
		return l, nil

	case domain.LoaderTypeURL:
		return remote.NewLoader(storage, lc.BaseURL), nil

	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownLoaderType, "invalid loader"), "type", lc.Type)
	}
}
