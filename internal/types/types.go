// Package types defines every cross-package data structure used by the solmap CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	FormatOutline  = "outline"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMermaid  = "mermaid"

	// FormatAll selects every format at once; it is understood by the CLI only.
	FormatAll = "all"
)

// Formats lists the output formats in their canonical order.
var Formats = []string{
	FormatOutline,
	FormatMarkdown,
	FormatHTML,
	FormatJSON,
	FormatYAML,
	FormatMermaid,
}

var formatExtensions = map[string]string{
	FormatOutline:  ".txt",
	FormatMarkdown: ".md",
	FormatHTML:     ".html",
	FormatJSON:     ".json",
	FormatYAML:     ".yaml",
	FormatMermaid:  ".mmd",
}

var formatAliases = map[string]string{
	"txt":  FormatOutline,
	"text": FormatOutline,
	"md":   FormatMarkdown,
	"htm":  FormatHTML,
	"yml":  FormatYAML,
	"mmd":  FormatMermaid,
}

// FormatExtension returns the file extension, including the dot, used when saving a format.
func FormatExtension(format string) (string, bool) {
	extension, known := formatExtensions[format]
	return extension, known
}

// CanonicalFormat resolves aliases to a canonical format identifier.
// Unknown values are returned unchanged.
func CanonicalFormat(format string) string {
	if canonical, isAlias := formatAliases[format]; isAlias {
		return canonical
	}
	return format
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// FileEntry is one file of a directory listing.
type FileEntry struct {
	Name      string
	Extension string
	Path      string
}

// DirectoryNode is a materialized directory with its retained subdirectories and files
// in traversal order.
type DirectoryNode struct {
	Name        string
	Path        string
	Directories []*DirectoryNode
	Files       []FileEntry
}

// CodeUnit is one declared type and its methods in declaration order.
type CodeUnit struct {
	TypeName string
	Methods  []string
}
