// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/secomind/colint/internal/config"
	"github.com/secomind/colint/internal/services/clipboard"
	"github.com/secomind/colint/internal/types"
	"github.com/secomind/colint/internal/utils"
)

const (
	configFlagName       = "config"
	checkFlagName        = "check"
	clipboardFlagName    = "clipboard"
	noGitignoreFlagName  = "no-gitignore"
	versionFlagName      = "version"
	versionTemplate      = "colint version: %s\n"
	defaultPath          = "."
	rootUse              = "colint"
	rootShortDescription = "colint command line interface"
	rootLongDescription  = `colint keeps Python codebases tidy.
It reflows docstrings and comments, sorts imports, formats code, checks style,
repairs trailing newlines, and strips notebook outputs.
Use --check to report without rewriting files and --version to print the application version.`

	cleanNotebooksFlagName = "clean-notebooks"

	configFlagDescription         = "path to the configuration file"
	checkFlagDescription          = "report issues without modifying files"
	clipboardFlagDescription      = "copy the run report to the clipboard"
	noGitignoreFlagDescription    = "do not use .gitignore"
	versionFlagDescription        = "display application version"
	cleanNotebooksFlagDescription = "also strip notebook outputs before linting"

	sortLibrariesUse    = "sort-libraries [path]"
	codeFormatUse       = "code-format [path]"
	grammarCheckUse     = "grammar-check [path]"
	newlineFixUse       = "newline-fix [path]"
	cleanNotebooksUse   = "clean-jupyter [path]"
	docformatUse        = "docformat [path]"
	lintUse             = "lint [path]"
	sortLibrariesShort  = "sort import blocks with isort"
	codeFormatShort     = "format code with black"
	grammarCheckShort   = "check style with flake8"
	newlineFixShort     = "ensure files end with a newline"
	cleanNotebooksShort = "strip notebook outputs and execution counts"
	docformatShort      = "reflow docstrings and comments"
	lintShort           = "run the lint sequence"

	docformatLongDescription = `Reflow docstrings into Google style and rewrap hash comments.
Applies to Python files and to the code cells of Jupyter notebooks.`
	docformatUsageExample = `  # Reflow a package in place
  colint docformat ./src

  # Report files whose docstrings need reflowing
  colint docformat --check ./src`
	lintLongDescription = `Run import sorting, code formatting, the style check, and newline repair
over one path. With --clean-notebooks the sequence starts by stripping
notebook outputs.`
	lintUsageExample = `  # Lint the current directory
  colint lint

  # Check a project without rewriting files
  colint lint --check ./src`
)

// ErrIssuesFound reports that at least one operation flagged a file. The
// process maps it to a non-zero exit status.
var ErrIssuesFound = errors.New("issues found")

// Execute runs the colint application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// persistentOptions stores flags shared by every subcommand.
type persistentOptions struct {
	configFilePath  string
	onlyCheck       bool
	copyToClipboard bool
	noGitignore     bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool
	var options persistentOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&options.onlyCheck, checkFlagName, false, checkFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&options.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&options.noGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)

	rootCommand.AddCommand(
		createOperationCommand(logger, &options, sortLibrariesUse, sortLibrariesShort, "", "", types.OperationSortLibraries),
		createOperationCommand(logger, &options, codeFormatUse, codeFormatShort, "", "", types.OperationCodeFormat),
		createOperationCommand(logger, &options, grammarCheckUse, grammarCheckShort, "", "", types.OperationGrammarCheck),
		createOperationCommand(logger, &options, newlineFixUse, newlineFixShort, "", "", types.OperationNewlineFix),
		createOperationCommand(logger, &options, cleanNotebooksUse, cleanNotebooksShort, "", "", types.OperationCleanNotebooks),
		createOperationCommand(logger, &options, docformatUse, docformatShort, docformatLongDescription, docformatUsageExample, types.OperationDocformat),
		createLintCommand(logger, &options),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createOperationCommand returns one operation subcommand.
func createOperationCommand(
	logger *zap.Logger,
	options *persistentOptions,
	use string,
	shortDescription string,
	longDescription string,
	usageExample string,
	operationName string,
) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   shortDescription,
		Long:    longDescription,
		Example: usageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runOperation(command, logger, *options, false, operationName, rootPath)
		},
	}
}

// createLintCommand returns the lint subcommand, which additionally accepts
// --clean-notebooks to prepend notebook cleaning to the sequence.
func createLintCommand(logger *zap.Logger, options *persistentOptions) *cobra.Command {
	var includeCleanNotebooks bool

	lintCommand := &cobra.Command{
		Use:     lintUse,
		Short:   lintShort,
		Long:    lintLongDescription,
		Example: lintUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runOperation(command, logger, *options, includeCleanNotebooks, types.OperationLint, rootPath)
		},
	}
	lintCommand.Flags().BoolVar(&includeCleanNotebooks, cleanNotebooksFlagName, false, cleanNotebooksFlagDescription)
	return lintCommand
}

// runOperation loads configuration, executes the named operation, and renders
// the run report.
func runOperation(
	command *cobra.Command,
	logger *zap.Logger,
	options persistentOptions,
	includeCleanNotebooks bool,
	operationName string,
	rootPath string,
) error {
	parameters, configurationError := config.Load(config.LoadOptions{ExplicitFilePath: options.configFilePath})
	if configurationError != nil {
		return configurationError
	}

	operationRunner := newRunner(logger, parameters, runnerOptions{
		onlyCheck:             options.onlyCheck,
		useGitignore:          !options.noGitignore,
		includeCleanNotebooks: includeCleanNotebooks,
	})

	results, runError := operationRunner.run(command.Context(), operationName, rootPath)
	if runError != nil {
		return runError
	}

	renderRunReport(command.OutOrStdout(), results)
	if options.copyToClipboard {
		if copyError := clipboard.NewService().CopyReport(renderPlainReport(results)); copyError != nil {
			logger.Warn("failed to copy report to clipboard", zap.Error(copyError))
		}
	}

	for _, operationResult := range results {
		if operationResult.HasIssues() && (options.onlyCheck || operationResult.Operation == types.OperationGrammarCheck) {
			return ErrIssuesFound
		}
	}
	return nil
}
