package domain

// Source is the raw text of a template together with where it came from.
// It is produced per lookup and owned by the caller.
type Source struct {
	// Name is the logical template name that was requested.
	Name string
	// Code is the unparsed template text.
	Code string
	// Path records provenance: a file path, a URL, or empty for in-memory templates.
	Path string
}

// NewSource creates a Source.
func NewSource(code, name, path string) *Source {
	return &Source{Name: name, Code: code, Path: path}
}
