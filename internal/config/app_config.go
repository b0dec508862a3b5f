// Package config loads solmap defaults from configuration files, a dotenv file and the
// process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tjgokken/solmap/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides the user's home directory; empty means os.UserHomeDir.
	HomeDirectory string
	// LookupEnvironment overrides os.LookupEnv.
	LookupEnvironment func(key string) (string, bool)
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Export ExportConfiguration `mapstructure:"export"`
}

// ExportConfiguration defines the defaults of the export command.
type ExportConfiguration struct {
	Format           string                 `mapstructure:"format"`
	CodeDetails      *bool                  `mapstructure:"code"`
	AnnotationErrors string                 `mapstructure:"annotation_errors"`
	Output           string                 `mapstructure:"output"`
	CacheSize        *int                   `mapstructure:"cache_size"`
	Clipboard        *bool                  `mapstructure:"clipboard"`
	Tokens           TokenConfiguration     `mapstructure:"tokens"`
	Exclude          ExclusionConfiguration `mapstructure:"exclude"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// ExclusionConfiguration extends the built-in exclusion sets.
type ExclusionConfiguration struct {
	Directories  []string `mapstructure:"directories"`
	Extensions   []string `mapstructure:"extensions"`
	UseGitignore *bool    `mapstructure:"use_gitignore"`
}

// LoadApplicationConfiguration loads configuration from the global file, the local or
// explicit file, and finally the environment, each layer overriding the previous one.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	environment, environmentErr := loadEnvironment(workingDirectory, options.LookupEnvironment)
	if environmentErr != nil {
		return ApplicationConfiguration{}, environmentErr
	}
	environmentConfig, overlayErr := environment.configuration()
	if overlayErr != nil {
		return ApplicationConfiguration{}, overlayErr
	}
	merged = merged.Merge(environmentConfig)

	merged.Export.Exclude.Directories = utils.SplitList(merged.Export.Exclude.Directories)
	merged.Export.Exclude.Extensions = utils.SplitList(merged.Export.Exclude.Extensions)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.LocalConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Export = result.Export.merge(override.Export)
	return result
}

func (config ExportConfiguration) merge(override ExportConfiguration) ExportConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.CodeDetails != nil {
		result.CodeDetails = cloneBool(override.CodeDetails)
	}
	if override.AnnotationErrors != "" {
		result.AnnotationErrors = override.AnnotationErrors
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.CacheSize != nil {
		result.CacheSize = cloneInt(override.CacheSize)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Exclude = result.Exclude.merge(override.Exclude)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// Exclusion lists accumulate across layers rather than replace each other.
func (config ExclusionConfiguration) merge(override ExclusionConfiguration) ExclusionConfiguration {
	result := config
	result.Directories = utils.DeduplicatePatterns(append(append([]string{}, config.Directories...), override.Directories...))
	result.Extensions = utils.DeduplicatePatterns(append(append([]string{}, config.Extensions...), override.Extensions...))
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
