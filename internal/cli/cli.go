// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tjgokken/solmap/internal/annotator"
	"github.com/tjgokken/solmap/internal/config"
	"github.com/tjgokken/solmap/internal/services/clipboard"
	"github.com/tjgokken/solmap/internal/tokenizer"
	"github.com/tjgokken/solmap/internal/types"
	"github.com/tjgokken/solmap/internal/utils"
)

const (
	versionFlagName      = "version"
	configFlagName       = "config"
	verboseFlagName      = "verbose"
	versionTemplate      = "solmap version: %s\n"
	rootUse              = "solmap"
	rootShortDescription = "solmap exports project directory maps"
	rootLongDescription  = `solmap walks a project directory and exports its structure as an outline,
Markdown, collapsible HTML, JSON, YAML or a Mermaid diagram.
Build output, IDE state, dependency caches and version control directories are left out.
Use --code to annotate source files with the classes and methods they declare.`
	versionFlagDescription = "display application version"
	configFlagDescription  = "configuration file to use instead of ./" + utils.LocalConfigFileName
	verboseFlagDescription = "enable debug logging"

	formatsUse              = "formats"
	formatsShortDescription = "list export formats and their file extensions"

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initGlobalFlagName   = "global"
	initForceFlagName    = "force"
	initGlobalUsage      = "write ~/" + utils.GlobalConfigDirectoryName + "/" + utils.GlobalConfigFileName + " instead of ./" + utils.LocalConfigFileName
	initForceUsage       = "overwrite an existing configuration file"
	initWrittenMessage   = "configuration written"
)

// errVersionShown ends a run after --version printed the version.
var errVersionShown = errors.New("version shown")

// dependencies are the collaborators of one CLI run. Zero values select the production
// implementations.
type dependencies struct {
	logger     *zap.Logger
	output     io.Writer
	copier     clipboard.Copier
	newCounter func(model string) (tokenizer.Counter, string, error)
	annotators func() *annotator.Registry
	// workingDirectory and homeDirectory override configuration discovery.
	workingDirectory string
	homeDirectory    string
	lookupEnv        func(string) (string, bool)
}

// application is the state shared by the subcommands once the root command ran its
// persistent pre-run.
type application struct {
	dependencies
	configuration config.ApplicationConfiguration
	configPath    string
	verbose       bool
}

// Execute runs the solmap application.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCommand := newRootCommand(dependencies{})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	err := rootCommand.ExecuteContext(ctx)
	if errors.Is(err, errVersionShown) {
		return nil
	}
	return err
}

func newRootCommand(injected dependencies) *cobra.Command {
	app := &application{dependencies: injected}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return errVersionShown
			}
			return app.prepare(command)
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().BoolVarP(&app.verbose, verboseFlagName, "v", false, verboseFlagDescription)
	rootCommand.AddCommand(
		createExportCommand(app),
		createFormatsCommand(),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// prepare fills the production defaults and loads configuration.
func (app *application) prepare(command *cobra.Command) error {
	if app.logger == nil {
		logger, loggerError := utils.NewApplicationLogger(app.verbose)
		if loggerError != nil {
			return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
		}
		app.logger = logger
	}
	if app.output == nil {
		app.output = command.OutOrStdout()
	}
	if app.copier == nil {
		app.copier = clipboard.NewService()
	}
	if app.newCounter == nil {
		app.newCounter = tokenizer.NewCounter
	}
	if app.annotators == nil {
		app.annotators = annotator.NewDefaultRegistry
	}
	loadedConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory:  app.workingDirectory,
		ExplicitFilePath:  app.configPath,
		HomeDirectory:     app.homeDirectory,
		LookupEnvironment: app.lookupEnv,
	})
	if loadError != nil {
		return loadError
	}
	app.configuration = loadedConfiguration
	app.logger.Debug("configuration loaded", zap.Any("export", loadedConfiguration.Export))
	return nil
}

func createFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   formatsUse,
		Short: formatsShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, format := range types.Formats {
				extension, _ := types.FormatExtension(format)
				fmt.Fprintf(writer, "%s\t%s\n", format, extension)
			}
			return writer.Flush()
		},
	}
}

func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.workingDirectory,
				HomeDirectory:    app.homeDirectory,
			})
			if err != nil {
				return err
			}
			app.logger.Info(initWrittenMessage, zap.String("path", path))
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, initGlobalFlagName, false, initGlobalUsage)
	initCommand.Flags().BoolVar(&force, initForceFlagName, false, initForceUsage)
	return initCommand
}

func joinedFormats() string {
	return strings.Join(append(append([]string{}, types.Formats...), types.FormatAll), "|")
}
