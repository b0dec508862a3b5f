// Package render turns a filtered project tree into one of the supported documents.
package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/tjgokken/solmap/internal/annotator"
	"github.com/tjgokken/solmap/internal/exclusion"
	"github.com/tjgokken/solmap/internal/types"
)

// AnnotationErrorPolicy selects how a file whose annotation failed is rendered.
type AnnotationErrorPolicy string

const (
	// AnnotationErrorsDefault uses the format's own default.
	AnnotationErrorsDefault AnnotationErrorPolicy = "default"
	// AnnotationErrorsMark renders a visible error marker for the file.
	AnnotationErrorsMark AnnotationErrorPolicy = "mark"
	// AnnotationErrorsOmit renders the file as if code details were unavailable.
	AnnotationErrorsOmit AnnotationErrorPolicy = "omit"
)

const (
	errorExportFormat            = "export %s as %s: %w"
	errorUnsupportedFormatFormat = "%w: %q"
	errorAnnotationPolicyFormat  = "unsupported annotation error policy %q"
)

// ErrUnsupportedFormat reports an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Request describes one export.
type Request struct {
	// Filesystem defaults to the operating system filesystem.
	Filesystem billy.Filesystem
	Root       string
	Format     string
	// IncludeCodeDetails interleaves declared types and methods of source files.
	IncludeCodeDetails bool
	// Policy defaults to the default exclusion policy.
	Policy *exclusion.Policy
	// Annotators resolves the annotator of a source file; nil disables code details.
	Annotators       annotator.Lookup
	AnnotationErrors AnnotationErrorPolicy
	// Warn receives every per-file annotation failure. It may be nil.
	Warn func(path string, err error)
}

// renderer produces one document from a session. Implementations keep all mutable
// state inside render, so a renderer value may be reused.
type renderer interface {
	render(exportSession *session) (string, error)
	// marksAnnotationErrors is the format default for AnnotationErrorsDefault.
	marksAnnotationErrors() bool
}

func newRenderer(format string) (renderer, error) {
	switch format {
	case types.FormatOutline:
		return outlineRenderer{}, nil
	case types.FormatMarkdown:
		return markdownRenderer{}, nil
	case types.FormatHTML:
		return htmlRenderer{}, nil
	case types.FormatJSON:
		return jsonRenderer{}, nil
	case types.FormatYAML:
		return yamlRenderer{}, nil
	case types.FormatMermaid:
		return mermaidRenderer{}, nil
	default:
		return nil, fmt.Errorf(errorUnsupportedFormatFormat, ErrUnsupportedFormat, format)
	}
}

// IsSupportedFormat reports whether format, or one of its aliases, can be exported.
func IsSupportedFormat(format string) bool {
	_, known := types.FormatExtension(types.CanonicalFormat(strings.ToLower(format)))
	return known
}

// ParseAnnotationErrorPolicy validates a policy name; empty means default.
func ParseAnnotationErrorPolicy(value string) (AnnotationErrorPolicy, error) {
	switch AnnotationErrorPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", AnnotationErrorsDefault:
		return AnnotationErrorsDefault, nil
	case AnnotationErrorsMark:
		return AnnotationErrorsMark, nil
	case AnnotationErrorsOmit:
		return AnnotationErrorsOmit, nil
	default:
		return "", fmt.Errorf(errorAnnotationPolicyFormat, value)
	}
}

// Export renders the tree under request.Root. Every call builds its own session and
// accumulator, so concurrent exports never share mutable state.
func Export(request Request) (string, error) {
	format := types.CanonicalFormat(strings.ToLower(strings.TrimSpace(request.Format)))
	selectedRenderer, rendererError := newRenderer(format)
	if rendererError != nil {
		return "", rendererError
	}
	if request.Filesystem == nil {
		request.Filesystem = osfs.New(string(filepath.Separator))
		absoluteRoot, absoluteError := filepath.Abs(request.Root)
		if absoluteError != nil {
			return "", fmt.Errorf(errorExportFormat, request.Root, format, absoluteError)
		}
		request.Root = absoluteRoot
	}
	if request.Policy == nil {
		request.Policy = exclusion.NewDefaultPolicy()
	}
	exportSession := newSession(request, selectedRenderer.marksAnnotationErrors())
	document, renderError := selectedRenderer.render(exportSession)
	if renderError != nil {
		return "", fmt.Errorf(errorExportFormat, request.Root, format, renderError)
	}
	return document, nil
}
