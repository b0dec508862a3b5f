package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tjgokken/solmap/internal/utils"
)

type configTestCase struct {
	name                   string
	globalContent          string
	localContent           string
	explicitPath           string
	explicitContent        string
	environment            map[string]string
	dotenvContent          string
	expectFormat           string
	expectCodeDetails      *bool
	expectAnnotationErrors string
	expectModel            string
	expectDirectories      []string
	expectGitignore        *bool
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func writeTestFile(t *testing.T, filePath string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(filePath), err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", filePath, err)
	}
}

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, found := values[key]
		return value, found
	}
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:              "local_overrides_global",
			globalContent:     "export:\n  format: html\n  code: true\n  exclude:\n    directories: [dist]\n",
			localContent:      "export:\n  format: markdown\n  tokens:\n    model: gpt-4\n  exclude:\n    directories: [build, dist]\n    use_gitignore: true\n",
			expectFormat:      "markdown",
			expectCodeDetails: boolPointer(true),
			expectModel:       "gpt-4",
			expectDirectories: []string{"dist", "build"},
			expectGitignore:   boolPointer(true),
		},
		{
			name:                   "explicit_path_replaces_local",
			localContent:           "export:\n  format: markdown\n",
			explicitPath:           "custom.yaml",
			explicitContent:        "export:\n  format: mermaid\n  annotation_errors: mark\n",
			expectFormat:           "mermaid",
			expectDirectories:      []string{},
			expectAnnotationErrors: "mark",
		},
		{
			name:              "environment_overrides_files",
			localContent:      "export:\n  format: markdown\n  code: true\n",
			environment:       map[string]string{EnvironmentFormat: "yaml", EnvironmentCodeDetails: "false", EnvironmentExclude: "vendor, dist"},
			expectFormat:      "yaml",
			expectCodeDetails: boolPointer(false),
			expectDirectories: []string{"vendor", "dist"},
		},
		{
			name:              "environment_accepts_flag_literals",
			localContent:      "export:\n  format: markdown\n",
			environment:       map[string]string{EnvironmentCodeDetails: "Yes"},
			expectFormat:      "markdown",
			expectCodeDetails: boolPointer(true),
			expectDirectories: []string{},
		},
		{
			name:              "environment_off_literal",
			dotenvContent:     "SOLMAP_CODE_DETAILS=off\n",
			expectCodeDetails: boolPointer(false),
			expectDirectories: []string{},
		},
		{
			name:                   "dotenv_applies_below_process_environment",
			dotenvContent:          "SOLMAP_FORMAT=json\nSOLMAP_ANNOTATION_ERRORS=omit\nUNRELATED=1\n",
			environment:            map[string]string{EnvironmentFormat: "html"},
			expectFormat:           "html",
			expectAnnotationErrors: "omit",
			expectDirectories:      []string{},
		},
		{
			name:              "empty",
			expectDirectories: []string{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			if testCase.globalContent != "" {
				writeTestFile(t, filepath.Join(homeDir, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName), testCase.globalContent)
			}
			if testCase.localContent != "" {
				writeTestFile(t, filepath.Join(workingDir, utils.LocalConfigFileName), testCase.localContent)
			}
			if testCase.explicitPath != "" {
				writeTestFile(t, filepath.Join(workingDir, testCase.explicitPath), testCase.explicitContent)
			}
			if testCase.dotenvContent != "" {
				writeTestFile(t, filepath.Join(workingDir, utils.EnvironmentFileName), testCase.dotenvContent)
			}

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory:  workingDir,
				ExplicitFilePath:  testCase.explicitPath,
				HomeDirectory:     homeDir,
				LookupEnvironment: lookupFrom(testCase.environment),
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			export := loadedConfig.Export
			if export.Format != testCase.expectFormat {
				t.Fatalf("expected format %q, got %q", testCase.expectFormat, export.Format)
			}
			if !reflect.DeepEqual(export.CodeDetails, testCase.expectCodeDetails) {
				t.Fatalf("unexpected code details value %v", export.CodeDetails)
			}
			if export.AnnotationErrors != testCase.expectAnnotationErrors {
				t.Fatalf("expected annotation errors %q, got %q", testCase.expectAnnotationErrors, export.AnnotationErrors)
			}
			if export.Tokens.Model != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, export.Tokens.Model)
			}
			if !reflect.DeepEqual(export.Exclude.Directories, testCase.expectDirectories) {
				t.Fatalf("expected directories %v, got %v", testCase.expectDirectories, export.Exclude.Directories)
			}
			if !reflect.DeepEqual(export.Exclude.UseGitignore, testCase.expectGitignore) {
				t.Fatalf("unexpected use_gitignore value %v", export.Exclude.UseGitignore)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsInvalidInput(t *testing.T) {
	t.Run("missing_explicit_file", func(t *testing.T) {
		_, err := LoadApplicationConfiguration(LoadOptions{
			WorkingDirectory:  t.TempDir(),
			HomeDirectory:     t.TempDir(),
			ExplicitFilePath:  "absent.yaml",
			LookupEnvironment: lookupFrom(nil),
		})
		if err == nil {
			t.Fatalf("expected error for a missing explicit configuration")
		}
	})
	t.Run("invalid_boolean_environment", func(t *testing.T) {
		_, err := LoadApplicationConfiguration(LoadOptions{
			WorkingDirectory:  t.TempDir(),
			HomeDirectory:     t.TempDir(),
			LookupEnvironment: lookupFrom(map[string]string{EnvironmentCodeDetails: "sometimes"}),
		})
		if err == nil {
			t.Fatalf("expected error for an invalid %s", EnvironmentCodeDetails)
		}
	})
	t.Run("configuration_directory", func(t *testing.T) {
		workingDir := t.TempDir()
		if err := os.Mkdir(filepath.Join(workingDir, utils.LocalConfigFileName), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		_, err := LoadApplicationConfiguration(LoadOptions{
			WorkingDirectory:  workingDir,
			HomeDirectory:     t.TempDir(),
			LookupEnvironment: lookupFrom(nil),
		})
		if err == nil {
			t.Fatalf("expected error when the configuration path is a directory")
		}
	})
}

func TestExportMergeKeepsBaseWhenOverrideEmpty(t *testing.T) {
	cacheSize := 64
	base := ExportConfiguration{
		Format:      "html",
		CodeDetails: boolPointer(true),
		CacheSize:   &cacheSize,
		Clipboard:   boolPointer(true),
		Tokens:      TokenConfiguration{Enabled: boolPointer(true), Model: "gpt-4o"},
	}
	merged := base.merge(ExportConfiguration{})
	if !reflect.DeepEqual(merged, ExportConfiguration{
		Format:      "html",
		CodeDetails: boolPointer(true),
		CacheSize:   &cacheSize,
		Clipboard:   boolPointer(true),
		Tokens:      TokenConfiguration{Enabled: boolPointer(true), Model: "gpt-4o"},
		Exclude:     ExclusionConfiguration{Directories: []string{}, Extensions: []string{}},
	}) {
		t.Fatalf("unexpected merge result %+v", merged)
	}
	override := ExportConfiguration{CodeDetails: boolPointer(false)}
	merged = base.merge(override)
	if merged.CodeDetails == override.CodeDetails || *merged.CodeDetails {
		t.Fatalf("expected a cloned false code details override")
	}
}
