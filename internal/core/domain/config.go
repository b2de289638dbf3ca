package domain

// Loader types understood by the chain configuration.
const (
	LoaderTypeMemory     = "memory"
	LoaderTypeFilesystem = "filesystem"
	LoaderTypeURL        = "url"
)

// MainNamespace is the namespace used for names without an "@namespace/" prefix.
const MainNamespace = "__main__"

// ChainConfig describes an ordered chain of loaders.
type ChainConfig struct {
	// Root is the directory of the configuration file. Relative filesystem paths resolve against it.
	Root    string
	Loaders []LoaderConfig
}

// LoaderConfig describes a single loader in the chain.
// Only the fields relevant to Type are populated.
type LoaderConfig struct {
	Type string

	// memory
	Templates map[string]string

	// filesystem
	Paths      []string
	Namespaces map[string][]string

	// url
	BaseURL string
}
