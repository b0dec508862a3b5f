// Package exclusion decides which directories and files are left out of every export.
package exclusion

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

const (
	extensionSeparator = "."
	gitIgnoreSeparator = "/"
	gitIgnoreNegation  = "!"
	gitIgnoreComment   = "#"
	gitIgnoreEscape    = `\`
)

// DefaultDirectoryNames are skipped by name at any depth: build output, IDE state,
// dependency caches and version control metadata.
var DefaultDirectoryNames = []string{
	"bin",
	"obj",
	"debug",
	"release",
	"packages",
	"node_modules",
	".vs",
	".vscode",
	".idea",
	".git",
	".svn",
	".hg",
}

// DefaultFileExtensions are project and solution manifests plus per-user IDE state.
var DefaultFileExtensions = []string{
	".sln",
	".csproj",
	".vbproj",
	".fsproj",
	".vcxproj",
	".user",
	".suo",
}

// Policy holds the fixed exclusion sets of one export. It is never mutated after
// construction and may be shared by concurrent exports.
type Policy struct {
	directoryNames map[string]struct{}
	fileExtensions map[string]struct{}
	gitIgnore      *ignore.GitIgnore
}

// Options extends the default sets.
type Options struct {
	ExtraDirectoryNames []string
	ExtraExtensions     []string
	// GitIgnoreLines are compiled with gitignore semantics and matched against
	// paths relative to the export root.
	GitIgnoreLines []string
}

// NewDefaultPolicy returns the policy built from the default sets only.
func NewDefaultPolicy() *Policy {
	return NewPolicy(Options{})
}

// NewPolicy returns a policy containing the default sets plus the provided extras.
func NewPolicy(options Options) *Policy {
	policy := &Policy{
		directoryNames: make(map[string]struct{}, len(DefaultDirectoryNames)+len(options.ExtraDirectoryNames)),
		fileExtensions: make(map[string]struct{}, len(DefaultFileExtensions)+len(options.ExtraExtensions)),
	}
	for _, directoryName := range append(append([]string{}, DefaultDirectoryNames...), options.ExtraDirectoryNames...) {
		trimmedName := strings.TrimSpace(directoryName)
		if trimmedName == "" {
			continue
		}
		policy.directoryNames[strings.ToLower(trimmedName)] = struct{}{}
	}
	for _, extension := range append(append([]string{}, DefaultFileExtensions...), options.ExtraExtensions...) {
		normalizedExtension := normalizeExtension(extension)
		if normalizedExtension == "" {
			continue
		}
		policy.fileExtensions[normalizedExtension] = struct{}{}
	}
	if len(options.GitIgnoreLines) > 0 {
		anchoredLines := make([]string, 0, len(options.GitIgnoreLines))
		for _, line := range options.GitIgnoreLines {
			anchoredLines = append(anchoredLines, anchorGitIgnoreLine(line))
		}
		policy.gitIgnore = ignore.CompileIgnoreLines(anchoredLines...)
	}
	return policy
}

// ShouldSkipDirectory reports whether a directory with the given name is excluded.
func (policy *Policy) ShouldSkipDirectory(name string) bool {
	if policy == nil {
		return false
	}
	_, excluded := policy.directoryNames[strings.ToLower(strings.TrimSpace(name))]
	return excluded
}

// ShouldSkipFile reports whether a file with the given extension is excluded.
// The leading dot is optional; an empty extension is never excluded.
func (policy *Policy) ShouldSkipFile(extension string) bool {
	if policy == nil {
		return false
	}
	normalizedExtension := normalizeExtension(extension)
	if normalizedExtension == "" {
		return false
	}
	_, excluded := policy.fileExtensions[normalizedExtension]
	return excluded
}

// SkipDirectoryEntry combines the name check with the optional gitignore rules.
func (policy *Policy) SkipDirectoryEntry(relativePath string, name string) bool {
	if policy.ShouldSkipDirectory(name) {
		return true
	}
	return policy.ignoredByGit(relativePath + "/")
}

// SkipFileEntry combines the extension check with the optional gitignore rules.
func (policy *Policy) SkipFileEntry(relativePath string, name string) bool {
	if policy.ShouldSkipFile(filepath.Ext(name)) {
		return true
	}
	return policy.ignoredByGit(relativePath)
}

func (policy *Policy) ignoredByGit(relativePath string) bool {
	if policy == nil || policy.gitIgnore == nil {
		return false
	}
	return policy.gitIgnore.MatchesPath(filepath.ToSlash(relativePath))
}

// anchorGitIgnoreLine roots patterns with a slash before their last character at the
// export root, as git does. go-gitignore would otherwise match them at any depth.
func anchorGitIgnoreLine(line string) string {
	pattern := strings.TrimSpace(line)
	negation := ""
	if strings.HasPrefix(pattern, gitIgnoreNegation) {
		negation = gitIgnoreNegation
		pattern = strings.TrimPrefix(pattern, gitIgnoreNegation)
	}
	if pattern == "" || strings.HasPrefix(pattern, gitIgnoreSeparator) || strings.HasPrefix(pattern, gitIgnoreComment) || strings.HasPrefix(pattern, gitIgnoreEscape) {
		return line
	}
	if !strings.Contains(strings.TrimSuffix(pattern, gitIgnoreSeparator), gitIgnoreSeparator) {
		return line
	}
	return negation + gitIgnoreSeparator + pattern
}

func normalizeExtension(extension string) string {
	trimmedExtension := strings.ToLower(strings.TrimSpace(extension))
	if trimmedExtension == "" || trimmedExtension == extensionSeparator {
		return ""
	}
	if !strings.HasPrefix(trimmedExtension, extensionSeparator) {
		trimmedExtension = extensionSeparator + trimmedExtension
	}
	return trimmedExtension
}
