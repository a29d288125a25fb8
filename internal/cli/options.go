package cli

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/fuse/internal/config"
	"github.com/temirov/fuse/internal/tokenizer"
	"github.com/temirov/fuse/internal/types"
)

var errTocModeConflict = errors.New(tocModeConflictMessage)

// flagValues holds the parsed command line flags.
type flagValues struct {
	extensions      []string
	includeHidden   bool
	ignoreFilesOnly bool
	ignoreGitignore bool
	ignorePatterns  []string
	cxml            bool
	markdown        bool
	format          string
	lineNumbers     bool
	outputPath      string
	toc             bool
	tocDirsOnly     bool
	tocFiles        bool
	nullSeparated   bool
	absolutePaths   bool
	followSymlinks  bool
	includeGit      bool
	copy            bool
	summary         bool
	tokens          bool
	model           string
	configPath      string
	initConfig      string
	force           bool
	verbose         bool
	version         bool
}

// runOptions is the effective configuration of one run after flags have
// been layered over the configuration files.
type runOptions struct {
	spec          types.InputSpec
	format        types.OutputFormat
	tocMode       types.TocMode
	lineNumbers   bool
	absolutePaths bool
	outputPath    string
	copy          bool
	summary       bool
	tokens        bool
	model         string
}

// resolveRunOptions layers explicitly given flags over configuration values
// over built-in defaults.
func resolveRunOptions(flagSet *pflag.FlagSet, values flagValues, configuration config.ApplicationConfiguration, roots []string) (runOptions, error) {
	booleanSetting := func(flagName string, flagValue bool, configured *bool, fallback bool) bool {
		if flagSet.Changed(flagName) {
			return flagValue
		}
		return config.BoolOr(configured, fallback)
	}
	listSetting := func(flagName string, flagValue []string, configured []string) []string {
		if flagSet.Changed(flagName) {
			return flagValue
		}
		return configured
	}

	format, formatError := resolveFormat(flagSet, values, configuration)
	if formatError != nil {
		return runOptions{}, formatError
	}
	tocMode, tocError := resolveTocMode(flagSet, values, configuration)
	if tocError != nil {
		return runOptions{}, tocError
	}

	model := configuration.Tokens.Model
	if flagSet.Changed(modelFlagName) || strings.TrimSpace(model) == "" {
		model = values.model
	}
	if strings.TrimSpace(model) == "" {
		model = tokenizer.DefaultModel
	}
	tokens := booleanSetting(tokensFlagName, values.tokens, configuration.Tokens.Enabled, false)

	options := runOptions{
		spec: types.InputSpec{
			Roots:               roots,
			Extensions:          listSetting(extensionFlagName, values.extensions, configuration.Paths.Extensions),
			IgnorePatterns:      listSetting(ignoreFlagName, values.ignorePatterns, configuration.Paths.Ignore),
			IncludeHidden:       booleanSetting(includeHiddenFlagName, values.includeHidden, configuration.Paths.IncludeHidden, false),
			IgnoreFilesOnly:     booleanSetting(ignoreFilesOnlyFlagName, values.ignoreFilesOnly, configuration.Paths.IgnoreFilesOnly, false),
			IncludeGitDirectory: booleanSetting(includeGitFlagName, values.includeGit, configuration.Paths.IncludeGit, false),
			FollowSymlinks:      booleanSetting(followSymlinksFlagName, values.followSymlinks, configuration.Paths.FollowSymlinks, false),
		},
		format:        format,
		tocMode:       tocMode,
		lineNumbers:   booleanSetting(lineNumbersFlagName, values.lineNumbers, configuration.LineNumbers, false),
		absolutePaths: booleanSetting(absolutePathsFlagName, values.absolutePaths, configuration.AbsolutePaths, false),
		outputPath:    values.outputPath,
		copy:          booleanSetting(copyFlagName, values.copy, configuration.Copy, false),
		summary:       tokens || booleanSetting(summaryFlagName, values.summary, configuration.Summary, false),
		tokens:        tokens,
		model:         model,
	}
	if flagSet.Changed(ignoreGitignoreFlagName) {
		options.spec.IgnoreGitignore = values.ignoreGitignore
	} else {
		options.spec.IgnoreGitignore = !config.BoolOr(configuration.Paths.UseGitignore, true)
	}
	return options, nil
}

func resolveFormat(flagSet *pflag.FlagSet, values flagValues, configuration config.ApplicationConfiguration) (types.OutputFormat, error) {
	switch {
	case flagSet.Changed(cxmlFlagName) && values.cxml:
		return types.FormatXML, nil
	case flagSet.Changed(markdownFlagName) && values.markdown:
		return types.FormatMarkdown, nil
	case flagSet.Changed(formatFlagName):
		return types.ParseOutputFormat(strings.ToLower(strings.TrimSpace(values.format)))
	}
	return types.ParseOutputFormat(strings.ToLower(strings.TrimSpace(configuration.Format)))
}

// resolveTocMode maps the three tree flags onto a mode. Any tree flag given
// on the command line replaces the configured mode.
func resolveTocMode(flagSet *pflag.FlagSet, values flagValues, configuration config.ApplicationConfiguration) (types.TocMode, error) {
	if values.tocDirsOnly && values.tocFiles {
		return types.TocModeNone, errTocModeConflict
	}
	switch {
	case values.tocDirsOnly:
		return types.TocModeDirsOnly, nil
	case values.tocFiles:
		return types.TocModeFilesAndDirs, nil
	case values.toc:
		return types.TocModeFull, nil
	}
	if flagSet.Changed(tocFlagName) || flagSet.Changed(tocDirsOnlyFlagName) || flagSet.Changed(tocFilesFlagName) {
		return types.TocModeNone, nil
	}
	return types.ParseTocMode(strings.ToLower(strings.TrimSpace(configuration.TableOfContents)))
}
