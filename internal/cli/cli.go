// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/fuse/internal/commands"
	"github.com/temirov/fuse/internal/config"
	"github.com/temirov/fuse/internal/ignore"
	"github.com/temirov/fuse/internal/output"
	"github.com/temirov/fuse/internal/services/clipboard"
	"github.com/temirov/fuse/internal/tokenizer"
	"github.com/temirov/fuse/internal/types"
	"github.com/temirov/fuse/internal/utils"
)

const (
	extensionFlagName       = "extension"
	includeHiddenFlagName   = "include-hidden"
	ignoreFilesOnlyFlagName = "ignore-files-only"
	ignoreGitignoreFlagName = "ignore-gitignore"
	ignoreFlagName          = "ignore"
	cxmlFlagName            = "cxml"
	markdownFlagName        = "markdown"
	formatFlagName          = "format"
	lineNumbersFlagName     = "line-numbers"
	outputFlagName          = "output"
	tocFlagName             = "toc"
	tocDirsOnlyFlagName     = "toc-dirs-only"
	tocFilesFlagName        = "toc-files"
	nullFlagName            = "null"
	absolutePathsFlagName   = "absolute-paths"
	followSymlinksFlagName  = "follow-symlinks"
	includeGitFlagName      = "include-git"
	copyFlagName            = "copy"
	summaryFlagName         = "summary"
	tokensFlagName          = "tokens"
	modelFlagName           = "model"
	configFlagName          = "config"
	initConfigFlagName      = "init-config"
	forceFlagName           = "force"
	verboseFlagName         = "verbose"
	versionFlagName         = "version"

	extensionFlagDescription       = "only include files with this extension (repeatable)"
	includeHiddenFlagDescription   = "include files and directories whose names start with a dot"
	ignoreFilesOnlyFlagDescription = "apply --ignore patterns to files only"
	ignoreGitignoreFlagDescription = "do not honour .gitignore and .ignore files"
	ignoreFlagDescription          = "ignore paths matching this gitignore-style pattern (repeatable)"
	cxmlFlagDescription            = "render the XML document format"
	markdownFlagDescription        = "render fenced Markdown code blocks"
	formatFlagDescription          = "output format: default, markdown or xml"
	lineNumbersFlagDescription     = "prefix every content line with its number"
	outputFlagDescription          = "write the document to this file instead of stdout"
	tocFlagDescription             = "prepend a directory tree of the selected files"
	tocDirsOnlyFlagDescription     = "prepend a directory tree showing directories only"
	tocFilesFlagDescription        = "prepend a directory tree including empty directories"
	nullFlagDescription            = "read NUL separated paths from stdin"
	absolutePathsFlagDescription   = "show absolute file paths in the document"
	followSymlinksFlagDescription  = "follow symbolic links while walking"
	includeGitFlagDescription      = "walk into .git directories"
	copyFlagDescription            = "copy the document to the system clipboard"
	summaryFlagDescription         = "print a summary of the document to stderr"
	tokensFlagDescription          = "count document tokens (implies --summary)"
	modelFlagDescription           = "tokenizer model used by --tokens"
	configFlagDescription          = "read configuration from this file instead of ./" + utils.ConfigFileName
	initConfigFlagDescription      = "write a configuration template (local or global) and exit"
	forceFlagDescription           = "overwrite an existing configuration with --init-config"
	verboseFlagDescription         = "enable debug logging"
	versionFlagDescription         = "display application version"

	rootUse              = "fuse [paths...]"
	rootShortDescription = "Concatenate a directory tree of files into a single prompt"
	rootLongDescription  = `fuse walks the given files and directories and prints every selected file
in one document, ready to paste into a language model prompt.
Hidden entries and paths matched by .gitignore or .ignore files are skipped.
Paths are read from stdin when none are given.`
	rootUsageExample = `  # Render a project as Markdown with a tree header
  fuse -m --toc ./project

  # Only Go files, ignoring generated code, into a file
  fuse -e go --ignore '*_gen.go' -o prompt.txt .

  # Paths from another command
  git ls-files -z | fuse -0 -c`

	versionTemplate          = "fuse version: %s\n"
	configWrittenTemplate    = "Wrote configuration to %s\n"
	tokenCountWarningFormat  = "Unable to count tokens: %v"
	tocModeConflictMessage   = "--toc-dirs-only cannot be combined with --toc-files"
	writeOutputErrorFormat   = "write output: %w"
	clipboardErrorFormat     = "copy output to clipboard: %w"
	writeSummaryErrorFormat  = "write summary: %w"
	writeWarningsErrorFormat = "write warnings: %w"
)

// counterFactory builds a token counter for a model.
type counterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// environment carries the process facing dependencies of one invocation.
type environment struct {
	stdin            io.Reader
	stdout           io.Writer
	stderr           io.Writer
	stdinIsTerminal  bool
	stderrIsTerminal bool
	// workingDirectory and homeDirectory default to the process values when empty.
	workingDirectory string
	homeDirectory    string
	copier           clipboard.Copier
	newCounter       counterFactory
	logger           *zap.Logger
	level            zap.AtomicLevel
}

// Execute runs the fuse application with the process arguments.
func Execute(logger *zap.Logger, level zap.AtomicLevel) error {
	processEnvironment := environment{
		stdin:            os.Stdin,
		stdout:           os.Stdout,
		stderr:           os.Stderr,
		stdinIsTerminal:  isTerminal(os.Stdin),
		stderrIsTerminal: isTerminal(os.Stderr),
		copier:           clipboard.NewService(),
		newCounter:       tokenizer.NewCounter,
		logger:           logger,
		level:            level,
	}
	return execute(processEnvironment, os.Args[1:])
}

func execute(env environment, arguments []string) error {
	if env.logger == nil {
		env.logger = zap.NewNop()
	}
	rootCommand := createRootCommand(env)
	normalizedArguments := normalizeInitConfigArguments(arguments)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, normalizedArguments))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(env environment) *cobra.Command {
	var values flagValues

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runRootCommand(command, env, values, arguments)
		},
	}
	rootCommand.SetIn(env.stdin)
	rootCommand.SetOut(env.stdout)
	rootCommand.SetErr(env.stderr)

	flagSet := rootCommand.Flags()
	flagSet.StringArrayVarP(&values.extensions, extensionFlagName, "e", nil, extensionFlagDescription)
	registerBooleanFlag(flagSet, &values.includeHidden, includeHiddenFlagName, "", false, includeHiddenFlagDescription)
	registerBooleanFlag(flagSet, &values.ignoreFilesOnly, ignoreFilesOnlyFlagName, "", false, ignoreFilesOnlyFlagDescription)
	registerBooleanFlag(flagSet, &values.ignoreGitignore, ignoreGitignoreFlagName, "", false, ignoreGitignoreFlagDescription)
	flagSet.StringArrayVar(&values.ignorePatterns, ignoreFlagName, nil, ignoreFlagDescription)
	registerBooleanFlag(flagSet, &values.cxml, cxmlFlagName, "c", false, cxmlFlagDescription)
	registerBooleanFlag(flagSet, &values.markdown, markdownFlagName, "m", false, markdownFlagDescription)
	flagSet.StringVar(&values.format, formatFlagName, string(types.FormatDefault), formatFlagDescription)
	registerBooleanFlag(flagSet, &values.lineNumbers, lineNumbersFlagName, "n", false, lineNumbersFlagDescription)
	flagSet.StringVarP(&values.outputPath, outputFlagName, "o", "", outputFlagDescription)
	registerBooleanFlag(flagSet, &values.toc, tocFlagName, "", false, tocFlagDescription)
	registerBooleanFlag(flagSet, &values.tocDirsOnly, tocDirsOnlyFlagName, "", false, tocDirsOnlyFlagDescription)
	registerBooleanFlag(flagSet, &values.tocFiles, tocFilesFlagName, "", false, tocFilesFlagDescription)
	registerBooleanFlag(flagSet, &values.nullSeparated, nullFlagName, "0", false, nullFlagDescription)
	registerBooleanFlag(flagSet, &values.absolutePaths, absolutePathsFlagName, "", false, absolutePathsFlagDescription)
	registerBooleanFlag(flagSet, &values.followSymlinks, followSymlinksFlagName, "", false, followSymlinksFlagDescription)
	registerBooleanFlag(flagSet, &values.includeGit, includeGitFlagName, "", false, includeGitFlagDescription)
	registerBooleanFlag(flagSet, &values.copy, copyFlagName, "", false, copyFlagDescription)
	registerBooleanFlag(flagSet, &values.summary, summaryFlagName, "", false, summaryFlagDescription)
	registerBooleanFlag(flagSet, &values.tokens, tokensFlagName, "", false, tokensFlagDescription)
	flagSet.StringVar(&values.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	flagSet.StringVar(&values.configPath, configFlagName, "", configFlagDescription)
	registerInitConfigFlag(flagSet, &values.initConfig)
	registerBooleanFlag(flagSet, &values.force, forceFlagName, "", false, forceFlagDescription)
	registerBooleanFlag(flagSet, &values.verbose, verboseFlagName, "", false, verboseFlagDescription)
	registerBooleanFlag(flagSet, &values.version, versionFlagName, "V", false, versionFlagDescription)

	rootCommand.MarkFlagsMutuallyExclusive(cxmlFlagName, markdownFlagName, formatFlagName)
	return rootCommand
}

func runRootCommand(command *cobra.Command, env environment, values flagValues, arguments []string) error {
	if values.verbose {
		env.level.SetLevel(zapcore.DebugLevel)
	}
	if values.version {
		_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
		return err
	}
	if command.Flags().Changed(initConfigFlagName) {
		return runInitConfig(command, env, values)
	}

	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: env.workingDirectory,
		ExplicitFilePath: values.configPath,
		HomeDirectory:    env.homeDirectory,
	})
	if loadError != nil {
		return loadError
	}
	env.logger.Debug("loaded configuration", zap.Strings("sources", configuration.Sources))

	roots := arguments
	if len(roots) == 0 && !env.stdinIsTerminal {
		stdinPaths, readError := readStdinPaths(env.stdin, values.nullSeparated)
		if readError != nil {
			return readError
		}
		roots = stdinPaths
	}
	if len(roots) == 0 {
		return command.Help()
	}

	options, resolveError := resolveRunOptions(command.Flags(), values, configuration, roots)
	if resolveError != nil {
		return resolveError
	}
	return runFuse(env, options)
}

func runInitConfig(command *cobra.Command, env environment, values flagValues) error {
	target, targetError := config.ParseInitTarget(values.initConfig)
	if targetError != nil {
		return targetError
	}
	writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
		Target:           target,
		Force:            values.force,
		WorkingDirectory: env.workingDirectory,
		HomeDirectory:    env.homeDirectory,
	})
	if initError != nil {
		return initError
	}
	_, err := fmt.Fprintf(command.OutOrStdout(), configWrittenTemplate, writtenPath)
	return err
}

// runFuse selects entries, renders the document and delivers it. Warnings
// are printed after the document, also when a fatal error stops the run.
func runFuse(env environment, options runOptions) (err error) {
	logger := env.logger
	sink, openError := output.OpenSink(options.outputPath, env.stdout)
	if openError != nil {
		return openError
	}
	reporter := newWarningReporter(env.stderr, env.stderrIsTerminal)
	defer func() {
		if flushError := reporter.Flush(); flushError != nil && err == nil {
			err = fmt.Errorf(writeWarningsErrorFormat, flushError)
		}
		if closeError := sink.Close(); closeError != nil && err == nil {
			err = closeError
		}
	}()

	entries, traverseError := commands.Traverse(commands.TraversalOptions{
		Spec:          options.spec,
		FoldCase:      ignore.HostFoldsCase(),
		Warn:          reporter.Add,
		Logger:        logger,
		ExcludedPaths: sink.Paths(),
	})
	if traverseError != nil {
		return traverseError
	}
	logger.Debug("selected entries", zap.Int("count", len(entries)), zap.String("format", string(options.format)), zap.String("toc", string(options.tocMode)))

	formatter, formatterError := output.NewFormatter(options.format)
	if formatterError != nil {
		return formatterError
	}
	var units []output.FileUnit
	contentSummary, emitError := commands.EmitContent(entries, commands.ContentOptions{
		LineNumbers:   options.lineNumbers,
		AbsolutePaths: options.absolutePaths,
		Warn:          reporter.Add,
		Logger:        logger,
	}, func(unit output.FileUnit) error {
		units = append(units, unit)
		return nil
	})
	if emitError != nil {
		return emitError
	}
	document := output.NewDocument(formatter)
	document.AddTableOfContents(output.RenderTree(contentSummary.WithoutSkipped(entries), options.tocMode))
	for _, unit := range units {
		document.AddFile(unit)
	}

	rendered := document.String()
	if writeError := sink.Write(rendered); writeError != nil {
		return fmt.Errorf(writeOutputErrorFormat, writeError)
	}
	if options.copy {
		if copyError := env.copier.Copy(rendered); copyError != nil {
			return fmt.Errorf(clipboardErrorFormat, copyError)
		}
		logger.Debug("copied document to clipboard", zap.Int("bytes", len(rendered)))
	}
	if !options.summary {
		return nil
	}

	summary := output.Summary{
		Files:   contentSummary.Files,
		Skipped: contentSummary.Skipped,
		Bytes:   contentSummary.Bytes,
	}
	if options.tokens {
		summary.Tokens, summary.Model = countTokens(env, options.model, rendered, reporter)
	}
	if flushError := reporter.Flush(); flushError != nil {
		return fmt.Errorf(writeWarningsErrorFormat, flushError)
	}
	if _, writeError := fmt.Fprintln(env.stderr, output.FormatSummaryLine(summary)); writeError != nil {
		return fmt.Errorf(writeSummaryErrorFormat, writeError)
	}
	return nil
}

// countTokens counts tokens in document. A tokenizer failure is a warning.
func countTokens(env environment, model string, document string, reporter *warningReporter) (int, string) {
	if env.newCounter == nil {
		return 0, ""
	}
	counter, resolvedModel, counterError := env.newCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		reporter.Add(types.Warning{Message: fmt.Sprintf(tokenCountWarningFormat, counterError)})
		return 0, ""
	}
	tokens, countError := tokenizer.CountDocument(counter, document)
	if countError != nil {
		reporter.Add(types.Warning{Message: fmt.Sprintf(tokenCountWarningFormat, countError)})
		return 0, ""
	}
	return tokens, resolvedModel
}
