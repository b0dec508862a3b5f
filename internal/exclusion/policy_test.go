package exclusion_test

import (
	"path"
	"testing"

	"github.com/tjgokken/solmap/internal/exclusion"
)

func TestShouldSkipDirectory(t *testing.T) {
	policy := exclusion.NewDefaultPolicy()
	testCases := []struct {
		name          string
		directoryName string
		expected      bool
	}{
		{name: "build_output", directoryName: "bin", expected: true},
		{name: "mixed_case", directoryName: "OBJ", expected: true},
		{name: "ide_metadata", directoryName: ".vs", expected: true},
		{name: "version_control", directoryName: ".git", expected: true},
		{name: "dependency_cache", directoryName: "node_modules", expected: true},
		{name: "source_directory", directoryName: "Src", expected: false},
		{name: "prefix_only", directoryName: "binaries", expected: false},
		{name: "empty", directoryName: "", expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := policy.ShouldSkipDirectory(testCase.directoryName); actual != testCase.expected {
				t.Fatalf("ShouldSkipDirectory(%q) = %v, want %v", testCase.directoryName, actual, testCase.expected)
			}
		})
	}
}

func TestShouldSkipFile(t *testing.T) {
	policy := exclusion.NewDefaultPolicy()
	testCases := []struct {
		name      string
		extension string
		expected  bool
	}{
		{name: "solution", extension: ".sln", expected: true},
		{name: "project_upper", extension: ".CSPROJ", expected: true},
		{name: "without_dot", extension: "suo", expected: true},
		{name: "user_state", extension: ".user", expected: true},
		{name: "source", extension: ".cs", expected: false},
		{name: "empty", extension: "", expected: false},
		{name: "dot_only", extension: ".", expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := policy.ShouldSkipFile(testCase.extension); actual != testCase.expected {
				t.Fatalf("ShouldSkipFile(%q) = %v, want %v", testCase.extension, actual, testCase.expected)
			}
		})
	}
}

func TestNewPolicyExtras(t *testing.T) {
	policy := exclusion.NewPolicy(exclusion.Options{
		ExtraDirectoryNames: []string{"  Generated ", ""},
		ExtraExtensions:     []string{"log"},
	})
	if !policy.ShouldSkipDirectory("generated") {
		t.Fatalf("extra directory name was not applied")
	}
	if !policy.ShouldSkipFile(".LOG") {
		t.Fatalf("extra extension was not applied")
	}
	if !policy.ShouldSkipDirectory("bin") {
		t.Fatalf("defaults must remain when extras are provided")
	}
}

func TestGitIgnoreLines(t *testing.T) {
	policy := exclusion.NewPolicy(exclusion.Options{GitIgnoreLines: []string{"*.tmp", "scratch/"}})
	if !policy.SkipFileEntry("Src/cache.tmp", "cache.tmp") {
		t.Fatalf("expected gitignore file pattern to match")
	}
	if !policy.SkipDirectoryEntry("scratch", "scratch") {
		t.Fatalf("expected gitignore directory pattern to match")
	}
	if policy.SkipFileEntry("Src/A.cs", "A.cs") {
		t.Fatalf("unexpected match for a regular source file")
	}
	if !policy.SkipFileEntry("Readme.sln", "Readme.sln") {
		t.Fatalf("extension exclusion must apply alongside gitignore rules")
	}
}

func TestGitIgnoreLinesWithInnerSlashAreRooted(t *testing.T) {
	policy := exclusion.NewPolicy(exclusion.Options{GitIgnoreLines: []string{"gen/out", "docs/*.md", "!docs/keep.md", "logs/"}})
	testCases := []struct {
		name         string
		relativePath string
		directory    bool
		expected     bool
	}{
		{name: "rooted_directory", relativePath: "gen/out", directory: true, expected: true},
		{name: "nested_directory_not_matched", relativePath: "x/gen/out", directory: true, expected: false},
		{name: "file_below_rooted_directory", relativePath: "gen/out/a.cs", expected: true},
		{name: "rooted_glob", relativePath: "docs/guide.md", expected: true},
		{name: "negated_rooted_file", relativePath: "docs/keep.md", expected: false},
		{name: "nested_glob_not_matched", relativePath: "src/docs/guide.md", expected: false},
		{name: "trailing_slash_matches_any_depth", relativePath: "src/logs", directory: true, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			name := path.Base(testCase.relativePath)
			var actual bool
			if testCase.directory {
				actual = policy.SkipDirectoryEntry(testCase.relativePath, name)
			} else {
				actual = policy.SkipFileEntry(testCase.relativePath, name)
			}
			if actual != testCase.expected {
				t.Fatalf("skip(%q) = %v, want %v", testCase.relativePath, actual, testCase.expected)
			}
		})
	}
}

func TestNilPolicyExcludesNothing(t *testing.T) {
	var policy *exclusion.Policy
	if policy.ShouldSkipDirectory("bin") || policy.ShouldSkipFile(".sln") {
		t.Fatalf("nil policy must not exclude entries")
	}
}
