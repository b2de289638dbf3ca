package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twine/internal/adapters/config"
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	content := `
version: "1"
loaders:
  - type: memory
    templates:
      base.html: "{% block content %}{% endblock %}"
  - type: filesystem
    paths: ["templates", "theme"]
    namespaces:
      admin: ["admin/templates"]
  - type: URL
    base: "mem://localhost/templates"
`
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, "twine.yaml", content)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, tmpDir, cfg.Root)
	require.Len(t, cfg.Loaders, 3)

	assert.Equal(t, domain.LoaderTypeMemory, cfg.Loaders[0].Type)
	assert.Equal(t, "{% block content %}{% endblock %}", cfg.Loaders[0].Templates["base.html"])

	assert.Equal(t, domain.LoaderTypeFilesystem, cfg.Loaders[1].Type)
	assert.Equal(t, []string{"templates", "theme"}, cfg.Loaders[1].Paths)
	assert.Equal(t, []string{"admin/templates"}, cfg.Loaders[1].Namespaces["admin"])

	assert.Equal(t, domain.LoaderTypeURL, cfg.Loaders[2].Type)
	assert.Equal(t, "mem://localhost/templates", cfg.Loaders[2].BaseURL)
}

func TestLoad_JSONC(t *testing.T) {
	content := `{
  // templates shipped with the binary
  "version": "1",
  "loaders": [
    {"type": "memory", "templates": {"a.html": "A"}},
    /* local overrides */
    {"type": "filesystem", "paths": ["templates"],},
  ],
}`
	path := writeConfig(t, t.TempDir(), "twine.jsonc", content)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Loaders, 2)
	assert.Equal(t, "A", cfg.Loaders[0].Templates["a.html"])
	assert.Equal(t, []string{"templates"}, cfg.Loaders[1].Paths)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
		is       error
		meta     map[string]any
	}{
		{
			name:    "no loaders",
			content: `version: "1"`,
			is:      domain.ErrNoLoadersConfigured,
		},
		{
			name: "unknown type",
			content: `
loaders:
  - type: memory
  - type: database
`,
			is:   domain.ErrUnknownLoaderType,
			meta: map[string]any{"type": "database", "index": 1},
		},
		{
			name: "filesystem without paths",
			content: `
loaders:
  - type: filesystem
`,
			contains: "filesystem loader needs at least one path",
		},
		{
			name: "url without base",
			content: `
loaders:
  - type: url
`,
			contains: "url loader needs a base",
		},
		{
			name:     "malformed yaml",
			content:  "loaders: [",
			contains: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "twine.yaml", tt.content)

			_, err := config.Load(path)
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "expected %v, got %v", tt.is, err)
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
			if tt.meta != nil {
				zErr, ok := err.(*zerr.Error)
				require.True(t, ok, "expected *zerr.Error, got %T", err)
				for k, v := range tt.meta {
					assert.Equal(t, v, zErr.Metadata()[k])
				}
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "twine.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "twine.yaml", "loaders: [{type: memory}]")
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o750))

	found, err := config.Discover(deep)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestDiscover_PrefersYAML(t *testing.T) {
	root := t.TempDir()
	yamlPath := writeConfig(t, root, "twine.yaml", "loaders: [{type: memory}]")
	writeConfig(t, root, "twine.jsonc", `{"loaders": [{"type": "memory"}]}`)

	found, err := config.Discover(root)
	require.NoError(t, err)
	assert.Equal(t, yamlPath, found)
}

func TestLoader_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	root := t.TempDir()
	writeConfig(t, root, "twine.yaml", "loaders: [{type: memory, templates: {a: b}}]")
	writeConfig(t, root, "other.yaml", "loaders: [{type: url, base: 'file:///tmp'}]")

	loader := config.NewLoader(mockLogger)

	cfg, err := loader.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, domain.LoaderTypeMemory, cfg.Loaders[0].Type)

	cfg, err = loader.Load(root, "other.yaml")
	require.NoError(t, err)
	assert.Equal(t, domain.LoaderTypeURL, cfg.Loaders[0].Type)
}

func TestLoader_Load_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl))

	// t.TempDir lives below the system temp dir, which is not expected to hold a twine.yaml.
	_, err := loader.Load(t.TempDir(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigNotFound))
}
