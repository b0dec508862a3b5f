package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tjgokken/solmap/internal/annotator"
	"github.com/tjgokken/solmap/internal/config"
	"github.com/tjgokken/solmap/internal/exclusion"
	"github.com/tjgokken/solmap/internal/render"
	"github.com/tjgokken/solmap/internal/tokenizer"
	"github.com/tjgokken/solmap/internal/types"
	"github.com/tjgokken/solmap/internal/utils"
)

const (
	exportUse              = "export [path]"
	exportAlias            = "x"
	exportShortDescription = "export a directory map (" + exportAlias + ")"
	exportLongDescription  = `Export the directory tree rooted at path (default ".") in one format, or in all
formats at once with --format all. Without --output the document is written to
standard output; an existing directory as --output receives <root name><extension>.`
	exportUsageExample = `  # Outline of the current directory
  solmap export

  # Markdown with classes and methods, saved next to the project
  solmap export ./MyApp --format md --code -o ./docs

  # Every format into ./maps, skipping a custom build directory
  solmap export . -f all -o ./maps -e dist`

	formatFlagName           = "format"
	codeFlagName             = "code"
	outputFlagName           = "output"
	annotationErrorsFlagName = "annotation-errors"
	excludeFlagName          = "e"
	excludeExtensionFlagName = "exclude-ext"
	gitignoreFlagName        = "gitignore"
	copyFlagName             = "copy"
	tokensFlagName           = "tokens"
	modelFlagName            = "model"
	watchFlagName            = "watch"

	formatFlagDescription           = "output format: "
	codeFlagDescription             = "annotate source files with declared classes and methods"
	outputFlagDescription           = "output file, or directory receiving <root name><extension>"
	annotationErrorsFlagDescription = "rendering of files that fail to annotate: default|mark|omit"
	excludeFlagDescription          = "additional directory name to exclude (repeatable)"
	excludeExtensionFlagDescription = "additional file extension to exclude (repeatable)"
	gitignoreFlagDescription        = "also exclude paths matched by the root .gitignore"
	copyFlagDescription             = "copy the exported document to the clipboard"
	tokensFlagDescription           = "log the token count of each exported document"
	modelFlagDescription            = "tokenizer model used by --tokens"
	watchFlagDescription            = "re-export whenever the tree changes"

	defaultPath          = "."
	defaultAllOutput     = "."
	defaultCacheSize     = 512
	outputDirectoryMode  = 0o755
	outputFileMode       = 0o644
	annotationWarning    = "annotation failed"
	documentWrittenLog   = "document written"
	documentCopiedLog    = "document copied to clipboard"
	tokenCountLog        = "document tokens"
	tokenSkippedLog      = "document tokens not counted"
	invalidFormatMessage = "invalid format value %q; expected one of %s"

	errorAbsolutePathFormat   = "abs failed for '%s': %w"
	errorPathMissingFormat    = "path '%s' does not exist"
	errorStatFormat           = "stat failed for '%s': %w"
	errorPathNotDirectory     = "path '%s' is not a directory"
	errorWriteOutputFormat    = "write %s: %w"
	errorCopyRequiresSingle   = "--copy needs a single format, not --format " + types.FormatAll
	errorLoadGitIgnoreFormat  = "load .gitignore of %s: %w"
	errorCreateAnnotatorCache = "create annotation cache: %w"
)

// exportFlags are the raw flag values; settings resolves them against configuration.
type exportFlags struct {
	format           string
	codeDetails      bool
	output           string
	annotationErrors string
	excludeNames     []string
	excludeExts      []string
	gitignore        bool
	copy             bool
	tokens           bool
	model            string
	watch            bool
}

// exportSettings are the effective options of one export run.
type exportSettings struct {
	root             types.ValidatedPath
	formats          []string
	all              bool
	codeDetails      bool
	output           string
	annotationErrors render.AnnotationErrorPolicy
	policy           *exclusion.Policy
	copy             bool
	tokens           bool
	model            string
	watch            bool
	cacheSize        int
}

// exportedDocument is one rendered format and where it was written.
type exportedDocument struct {
	format   string
	document string
	path     string
}

func createExportCommand(app *application) *cobra.Command {
	var flags exportFlags

	exportCommand := &cobra.Command{
		Use:     exportUse,
		Aliases: []string{exportAlias},
		Short:   exportShortDescription,
		Long:    exportLongDescription,
		Example: exportUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			settings, settingsError := app.resolveSettings(command, flags, rootPath)
			if settingsError != nil {
				return settingsError
			}
			return app.runExport(command.Context(), settings)
		},
	}

	exportFlagSet := exportCommand.Flags()
	exportFlagSet.StringVarP(&flags.format, formatFlagName, "f", types.FormatOutline, formatFlagDescription+joinedFormats())
	registerToggleFlag(exportFlagSet, &flags.codeDetails, codeFlagName, "c", codeFlagDescription)
	exportFlagSet.StringVarP(&flags.output, outputFlagName, "o", "", outputFlagDescription)
	exportFlagSet.StringVar(&flags.annotationErrors, annotationErrorsFlagName, string(render.AnnotationErrorsDefault), annotationErrorsFlagDescription)
	exportFlagSet.StringArrayVarP(&flags.excludeNames, excludeFlagName, excludeFlagName, nil, excludeFlagDescription)
	exportFlagSet.StringArrayVar(&flags.excludeExts, excludeExtensionFlagName, nil, excludeExtensionFlagDescription)
	registerToggleFlag(exportFlagSet, &flags.gitignore, gitignoreFlagName, "", gitignoreFlagDescription)
	registerToggleFlag(exportFlagSet, &flags.copy, copyFlagName, "", copyFlagDescription)
	registerToggleFlag(exportFlagSet, &flags.tokens, tokensFlagName, "", tokensFlagDescription)
	exportFlagSet.StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	registerToggleFlag(exportFlagSet, &flags.watch, watchFlagName, "w", watchFlagDescription)
	return exportCommand
}

// resolveSettings applies explicitly set flags over configuration over built-in defaults.
func (app *application) resolveSettings(command *cobra.Command, flags exportFlags, rootPath string) (exportSettings, error) {
	configured := app.configuration.Export
	changed := command.Flags().Changed

	root, rootError := resolveRootPath(rootPath)
	if rootError != nil {
		return exportSettings{}, rootError
	}
	settings := exportSettings{root: root, output: configured.Output, cacheSize: defaultCacheSize}

	format := configured.Format
	if changed(formatFlagName) || format == "" {
		format = flags.format
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch {
	case format == types.FormatAll:
		settings.all = true
		settings.formats = append([]string{}, types.Formats...)
	case render.IsSupportedFormat(format):
		settings.formats = []string{types.CanonicalFormat(format)}
	default:
		return exportSettings{}, fmt.Errorf(invalidFormatMessage, format, joinedFormats())
	}

	settings.codeDetails = pickToggle(changed(codeFlagName), flags.codeDetails, configured.CodeDetails)
	settings.copy = pickToggle(changed(copyFlagName), flags.copy, configured.Clipboard)
	settings.tokens = pickToggle(changed(tokensFlagName), flags.tokens, configured.Tokens.Enabled)
	settings.watch = flags.watch
	if settings.copy && settings.all {
		return exportSettings{}, errors.New(errorCopyRequiresSingle)
	}

	if changed(outputFlagName) {
		settings.output = flags.output
	}
	if settings.all && settings.output == "" {
		settings.output = defaultAllOutput
	}

	annotationErrors := configured.AnnotationErrors
	if changed(annotationErrorsFlagName) || annotationErrors == "" {
		annotationErrors = flags.annotationErrors
	}
	policy, policyError := render.ParseAnnotationErrorPolicy(annotationErrors)
	if policyError != nil {
		return exportSettings{}, policyError
	}
	settings.annotationErrors = policy

	settings.model = configured.Tokens.Model
	if changed(modelFlagName) || settings.model == "" {
		settings.model = flags.model
	}
	if configured.CacheSize != nil && *configured.CacheSize > 0 {
		settings.cacheSize = *configured.CacheSize
	}

	exclusionOptions := exclusion.Options{
		ExtraDirectoryNames: utils.SplitList(append(append([]string{}, configured.Exclude.Directories...), flags.excludeNames...)),
		ExtraExtensions:     utils.SplitList(append(append([]string{}, configured.Exclude.Extensions...), flags.excludeExts...)),
	}
	if pickToggle(changed(gitignoreFlagName), flags.gitignore, configured.Exclude.UseGitignore) {
		gitIgnoreLines, gitIgnoreError := config.LoadGitIgnoreLines(root.AbsolutePath)
		if gitIgnoreError != nil {
			return exportSettings{}, fmt.Errorf(errorLoadGitIgnoreFormat, root.AbsolutePath, gitIgnoreError)
		}
		exclusionOptions.GitIgnoreLines = gitIgnoreLines
	}
	settings.policy = exclusion.NewPolicy(exclusionOptions)
	return settings, nil
}

func pickToggle(flagChanged bool, flagValue bool, configured *bool) bool {
	if flagChanged || configured == nil {
		return flagValue
	}
	return *configured
}

// runExport exports once and, with --watch, keeps re-exporting until ctx ends.
func (app *application) runExport(ctx context.Context, settings exportSettings) error {
	var annotators annotator.Lookup
	if settings.codeDetails {
		cachedRegistry, cacheError := app.annotators().Cached(settings.cacheSize)
		if cacheError != nil {
			return fmt.Errorf(errorCreateAnnotatorCache, cacheError)
		}
		annotators = cachedRegistry
	}

	documents, exportError := app.exportOnce(ctx, settings, annotators)
	if exportError != nil {
		return exportError
	}
	if !settings.watch {
		return nil
	}
	return app.watch(ctx, settings, documents, func() ([]exportedDocument, error) {
		return app.exportOnce(ctx, settings, annotators)
	})
}

// exportOnce renders every selected format concurrently, then writes, copies and
// counts the documents in format order.
func (app *application) exportOnce(ctx context.Context, settings exportSettings, annotators annotator.Lookup) ([]exportedDocument, error) {
	documents := make([]exportedDocument, len(settings.formats))
	warn := app.annotationWarner()
	group, _ := errgroup.WithContext(ctx)
	for index, format := range settings.formats {
		group.Go(func() error {
			document, err := render.Export(render.Request{
				Root:               settings.root.AbsolutePath,
				Format:             format,
				IncludeCodeDetails: settings.codeDetails,
				Policy:             settings.policy,
				Annotators:         annotators,
				AnnotationErrors:   settings.annotationErrors,
				Warn:               warn,
			})
			if err != nil {
				return err
			}
			documents[index] = exportedDocument{format: format, document: document}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for index := range documents {
		writtenPath, writeError := app.writeDocument(settings, documents[index])
		if writeError != nil {
			return nil, writeError
		}
		documents[index].path = writtenPath
		if settings.tokens {
			app.logTokens(settings.model, documents[index])
		}
	}
	if settings.copy {
		if err := app.copier.Copy(documents[0].document); err != nil {
			return nil, err
		}
		app.logger.Info(documentCopiedLog, zap.String("format", documents[0].format))
	}
	return documents, nil
}

// annotationWarner logs each failing file once, however many formats render it.
func (app *application) annotationWarner() func(path string, err error) {
	var mutex sync.Mutex
	warned := map[string]struct{}{}
	return func(path string, err error) {
		mutex.Lock()
		_, seen := warned[path]
		warned[path] = struct{}{}
		mutex.Unlock()
		if !seen {
			app.logger.Warn(annotationWarning, zap.String("path", path), zap.Error(err))
		}
	}
}

// writeDocument writes to standard output when no output is configured and returns
// the written file path otherwise.
func (app *application) writeDocument(settings exportSettings, exported exportedDocument) (string, error) {
	if settings.output == "" {
		_, err := fmt.Fprint(app.output, exported.document)
		return "", err
	}
	targetPath, targetError := outputPath(settings, exported.format)
	if targetError != nil {
		return "", targetError
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), outputDirectoryMode); err != nil {
		return "", fmt.Errorf(errorWriteOutputFormat, targetPath, err)
	}
	if err := os.WriteFile(targetPath, []byte(exported.document), outputFileMode); err != nil {
		return "", fmt.Errorf(errorWriteOutputFormat, targetPath, err)
	}
	app.logger.Info(documentWrittenLog, zap.String("format", exported.format), zap.String("path", targetPath))
	return targetPath, nil
}

// outputPath treats the output as a directory for --format all or when it already is
// one; otherwise it is the document's file path.
func outputPath(settings exportSettings, format string) (string, error) {
	absoluteOutput, absoluteError := filepath.Abs(settings.output)
	if absoluteError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, settings.output, absoluteError)
	}
	isDirectory := settings.all
	if !isDirectory {
		if info, statError := os.Stat(absoluteOutput); statError == nil && info.IsDir() {
			isDirectory = true
		}
	}
	if !isDirectory {
		return absoluteOutput, nil
	}
	extension, _ := types.FormatExtension(format)
	return filepath.Join(absoluteOutput, utils.OutputFileName(settings.root.AbsolutePath, extension)), nil
}

func (app *application) logTokens(model string, exported exportedDocument) {
	counter, encodingName, counterError := app.newCounter(model)
	if counterError != nil {
		app.logger.Warn(tokenSkippedLog, zap.String("format", exported.format), zap.Error(counterError))
		return
	}
	result, countError := tokenizer.CountDocument(counter, exported.document)
	if countError != nil || !result.Counted {
		app.logger.Warn(tokenSkippedLog, zap.String("format", exported.format), zap.Error(countError))
		return
	}
	app.logger.Info(tokenCountLog,
		zap.String("format", exported.format),
		zap.Int("tokens", result.Tokens),
		zap.String("encoding", encodingName),
	)
}

// resolveRootPath converts the export root to an absolute directory path.
func resolveRootPath(inputPath string) (types.ValidatedPath, error) {
	absolutePath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)
	info, fileStatusError := os.Stat(cleanPath)
	if fileStatusError != nil {
		if os.IsNotExist(fileStatusError) {
			return types.ValidatedPath{}, fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf(errorPathNotDirectory, inputPath)
	}
	return types.ValidatedPath{AbsolutePath: cleanPath, IsDir: true}, nil
}
