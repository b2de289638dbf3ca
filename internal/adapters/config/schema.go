package config

// Twinefile represents the structure of the twine.yaml configuration file.
type Twinefile struct {
	Version string      `yaml:"version"`
	Loaders []LoaderDTO `yaml:"loaders"`
}

// LoaderDTO represents a single loader in the configuration.
type LoaderDTO struct {
	Type       string              `yaml:"type"`
	Templates  map[string]string   `yaml:"templates"`
	Paths      []string            `yaml:"paths"`
	Namespaces map[string][]string `yaml:"namespaces"`
	Base       string              `yaml:"base"`
}
