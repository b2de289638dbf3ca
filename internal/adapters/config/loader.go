// Package config provides the chain configuration loader for twine.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Filenames lists the configuration files looked for during discovery, in order of preference.
var Filenames = []string{"twine.yaml", "twine.yml", "twine.jsonc", "twine.json"}

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader for YAML and JSONC files.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the configuration at path, or discovers it starting from cwd
// and walking up to the filesystem root when path is empty.
func (l *Loader) Load(cwd, path string) (*domain.ChainConfig, error) {
	if path == "" {
		found, err := Discover(cwd)
		if err != nil {
			return nil, err
		}
		path = found
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.logger.Info("loaded configuration from " + path)
	return cfg, nil
}

// Discover finds the nearest configuration file in dir or one of its parents.
func Discover(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve directory")
	}

	for current := abs; ; {
		for _, name := range Filenames {
			candidate := filepath.Join(current, name)
			if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no configuration in directory tree"), "dir", abs)
		}
		current = parent
	}
}

// Load reads a configuration file from the given path and returns a domain.ChainConfig.
func Load(path string) (*domain.ChainConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jsonc" || ext == ".json" {
		// JSON is a subset of YAML, so the stripped document goes through the same decoder.
		data = jsonc.ToJSON(data)
	}

	var twinefile Twinefile
	if err := yaml.Unmarshal(data, &twinefile); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}

	return build(twinefile, filepath.Dir(path))
}

func build(twinefile Twinefile, root string) (*domain.ChainConfig, error) {
	if len(twinefile.Loaders) == 0 {
		return nil, domain.ErrNoLoadersConfigured
	}

	cfg := &domain.ChainConfig{
		Root:    root,
		Loaders: make([]domain.LoaderConfig, 0, len(twinefile.Loaders)),
	}

	for i, dto := range twinefile.Loaders {
		lc := domain.LoaderConfig{Type: strings.ToLower(strings.TrimSpace(dto.Type))}

		switch lc.Type {
		case domain.LoaderTypeMemory:
			lc.Templates = dto.Templates
		case domain.LoaderTypeFilesystem:
			if len(dto.Paths) == 0 && len(dto.Namespaces) == 0 {
				return nil, zerr.With(zerr.New("filesystem loader needs at least one path"), "index", i)
			}
			lc.Paths = dto.Paths
			lc.Namespaces = dto.Namespaces
		case domain.LoaderTypeURL:
			if dto.Base == "" {
				return nil, zerr.With(zerr.New("url loader needs a base"), "index", i)
			}
			lc.BaseURL = dto.Base
		default:
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnknownLoaderType, "invalid loader"), "type", dto.Type), "index", i)
		}

		cfg.Loaders = append(cfg.Loaders, lc)
	}

	return cfg, nil
}
