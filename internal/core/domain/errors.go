package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrTemplateNotFound is returned by a single loader that has no template under the requested name.
	ErrTemplateNotFound = zerr.New("template not found")

	// ErrTemplateNotDefined is matched by every ResolutionError returned from a chain.
	ErrTemplateNotDefined = zerr.New("template not defined")

	// ErrInvalidTemplateName is returned when a template name is malformed or escapes its root.
	ErrInvalidTemplateName = zerr.New("invalid template name")

	// ErrUnknownNamespace is returned when a name references a namespace without registered paths.
	ErrUnknownNamespace = zerr.New("unknown namespace")

	// ErrUnknownLoaderType is returned when the configuration names a loader type that does not exist.
	ErrUnknownLoaderType = zerr.New("unknown loader type")

	// ErrNoLoadersConfigured is returned when the configuration declares an empty chain.
	ErrNoLoadersConfigured = zerr.New("no loaders configured")

	// ErrConfigNotFound is returned when no configuration file could be discovered.
	ErrConfigNotFound = zerr.New("configuration file not found")

	// ErrNoTemplatesSpecified is returned when a command requires template names but none were given.
	ErrNoTemplatesSpecified = zerr.New("no templates specified")

	// ErrNothingToWatch is returned when watching a chain without any filesystem loader.
	ErrNothingToWatch = zerr.New("no template directories to watch")
)

// LoaderFailure is a single loader's failure recorded while walking a chain.
type LoaderFailure struct {
	// Loader identifies the loader that failed, e.g. "*memory.Loader".
	Loader string
	// Message is the loader's error message.
	Message string
}

// ResolutionError is returned by a chain when no loader satisfied a request.
// Failures holds one entry per loader that claimed the template but then failed,
// in chain order. It is empty when no loader claimed the template at all.
type ResolutionError struct {
	Name     string
	Failures []LoaderFailure
}

// NewResolutionError creates a ResolutionError for name.
func NewResolutionError(name string, failures []LoaderFailure) *ResolutionError {
	return &ResolutionError{Name: name, Failures: failures}
}

// Messages returns the failure messages in chain order.
func (e *ResolutionError) Messages() []string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Message
	}
	return msgs
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString(`template "`)
	b.WriteString(e.Name)
	b.WriteString(`" is not defined`)
	if len(e.Failures) == 0 {
		return b.String()
	}

	b.WriteString(" (")
	for i, f := range e.Failures {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.Loader != "" {
			b.WriteString(f.Loader)
			b.WriteString(": ")
		}
		b.WriteString(f.Message)
	}
	b.WriteString(")")
	return b.String()
}

// Is reports whether target is ErrTemplateNotDefined.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrTemplateNotDefined
}
