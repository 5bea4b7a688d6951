// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dirsnap/internal/config"
	"github.com/temirov/dirsnap/internal/services/clipboard"
	"github.com/temirov/dirsnap/internal/tokenizer"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const (
	copyFlagName           = "copy"
	limitFlagName          = "limit"
	depthFlagName          = "depth"
	excludeFlagName        = "exclude"
	includeFlagName        = "include"
	binaryFlagName         = "binary"
	treeFlagName           = "tree"
	prependFlagName        = "prepend"
	appendFlagName         = "append"
	outputFlagName         = "output"
	recentFlagName         = "recent"
	fileExtensionsFlagName = "file-extensions"
	stripCommentsFlagName  = "strip-comments"
	stripModeFlagName      = "strip-mode"
	sniffFlagName          = "sniff"
	gitignoreFlagName      = "gitignore"
	ignoreFileFlagName     = "ignore-file"
	summaryFlagName        = "summary"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	configFlagName         = "config"
	verboseFlagName        = "verbose"
	versionFlagName        = "version"
	globalFlagName         = "global"
	forceFlagName          = "force"

	copyFlagShorthand           = "c"
	limitFlagShorthand          = "m"
	depthFlagShorthand          = "d"
	excludeFlagShorthand        = "e"
	includeFlagShorthand        = "i"
	binaryFlagShorthand         = "b"
	treeFlagShorthand           = "t"
	prependFlagShorthand        = "p"
	appendFlagShorthand         = "a"
	outputFlagShorthand         = "o"
	recentFlagShorthand         = "r"
	fileExtensionsFlagShorthand = "f"
	stripCommentsFlagShorthand  = "s"

	copyFlagDescription           = "copy the report to the clipboard instead of printing it"
	limitFlagDescription          = "maximum number of characters rendered per file (0 = unlimited)"
	depthFlagDescription          = "maximum directory depth (0 = unlimited)"
	excludeFlagDescription        = "additional exclusion patterns (glob)"
	includeFlagDescription        = "patterns exempted from exclusion, including the defaults"
	binaryFlagDescription         = "list binary files as placeholders instead of skipping them"
	treeFlagDescription           = "render the structure only, without file content"
	prependFlagDescription        = "text placed before the report"
	appendFlagDescription         = "text placed after the report"
	outputFlagDescription         = "write the report to a file instead of printing it"
	recentFlagDescription         = "only render entries modified within the last N minutes"
	fileExtensionsFlagDescription = "only render files with these extensions"
	stripCommentsFlagDescription  = "remove comments from rendered file content"
	stripModeFlagDescription      = "comment stripping mode: pattern or syntax"
	sniffFlagDescription          = "detect binary files by content as well as by extension"
	gitignoreFlagDescription      = "exclude patterns listed in the root .gitignore"
	ignoreFileFlagDescription     = "exclude patterns listed in the root .ignore"
	summaryFlagDescription        = "print a summary line to stderr"
	tokensFlagDescription         = "count tokens of the final report"
	modelFlagDescription          = "tokenizer model to use for token counting"
	configFlagDescription         = "path to a configuration file used instead of ./" + utils.LocalConfigFileName
	verboseFlagDescription        = "log skipped entries"
	versionFlagDescription        = "display application version"
	globalFlagDescription         = "write the configuration to ~/" + utils.GlobalConfigDirectoryName + "/" + utils.ConfigFileName
	forceFlagDescription          = "overwrite an existing configuration file"

	defaultPath           = "."
	defaultSummaryEnabled = true
	versionTemplate       = utils.ApplicationName + " version: %s\n"
	initializedTemplate   = "Configuration written to %s\n"

	rootUse              = utils.ApplicationName + " [path]"
	rootShortDescription = "render a directory tree and its file contents as text"
	rootLongDescription  = `dirsnap walks a directory and renders its structure and file contents as a single
text report, ready to be pasted into a prompt or a document.

Directories appear as "/name:" headers, files as "-- name" lines followed by a fenced
code block. Configuration is read from ~/.dirsnap/config.yaml and ./.dirsnap.yaml;
flags set on the command line win. Multi-value flags accept space-separated values,
so place the path before them or end them with "--".`
	rootUsageExample = `  # Render the current directory
  dirsnap

  # Render only Go files, at most 2000 characters each, into a file
  dirsnap ./internal -f .go -m 2000 -o snapshot.txt

  # Show the structure of recently changed files and copy it
  dirsnap . -t -r 30 -c

  # Render sources without comments, excluding generated code
  dirsnap . -s --strip-mode syntax -e "*.pb.go" vendor/`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a default configuration file to ./.dirsnap.yaml, or to
~/.dirsnap/config.yaml with --global.`

	errorNegativeValueFormat  = "--%s must not be negative, got %d"
	errorInvalidStripMode     = "invalid --strip-mode value %q; accepted values: pattern, syntax"
	errorClipboardUnavailable = "clipboard is not available on this system"
	errorWorkingDirectory     = "determine working directory: %w"
)

// ClipboardService copies text and reports whether a clipboard exists.
type ClipboardService interface {
	clipboard.Copier
	Available() bool
}

// Dependencies are the external collaborators of the command tree.
type Dependencies struct {
	Logger    *zap.Logger
	Clipboard ClipboardService
	// Clock defaults to time.Now.
	Clock func() time.Time
	// WorkingDirectory and HomeDirectory default to the process values.
	WorkingDirectory string
	HomeDirectory    string
	// IsTerminal reports whether colored output may be written to the writer.
	IsTerminal func(writer io.Writer) bool
}

// Execute runs the dirsnap application with the process arguments.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(Dependencies{
		Logger:    logger,
		Clipboard: clipboard.NewService(),
	})
	rootCommand.SetArgs(normalizeCommandArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// normalizeCommandArguments applies the multi-value and lenient boolean rewrites.
func normalizeCommandArguments(command *cobra.Command, arguments []string) []string {
	return normalizeBooleanFlagArguments(command, normalizeMultiValueFlagArguments(command, arguments))
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var settings renderSettings

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if settings.showVersion {
				_, printError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runRender(command, dependencies, settings, rootPath)
		},
	}

	flagSet := rootCommand.Flags()
	registerBooleanFlag(flagSet, &settings.copyToClipboard, copyFlagName, copyFlagShorthand, false, copyFlagDescription)
	flagSet.IntVarP(&settings.limit, limitFlagName, limitFlagShorthand, 0, limitFlagDescription)
	flagSet.IntVarP(&settings.depth, depthFlagName, depthFlagShorthand, 0, depthFlagDescription)
	registerMultiValueFlag(flagSet, &settings.exclude, excludeFlagName, excludeFlagShorthand, excludeFlagDescription)
	registerMultiValueFlag(flagSet, &settings.include, includeFlagName, includeFlagShorthand, includeFlagDescription)
	registerBooleanFlag(flagSet, &settings.binary, binaryFlagName, binaryFlagShorthand, false, binaryFlagDescription)
	registerBooleanFlag(flagSet, &settings.tree, treeFlagName, treeFlagShorthand, false, treeFlagDescription)
	flagSet.StringVarP(&settings.prependText, prependFlagName, prependFlagShorthand, "", prependFlagDescription)
	flagSet.StringVarP(&settings.appendText, appendFlagName, appendFlagShorthand, "", appendFlagDescription)
	flagSet.StringVarP(&settings.output, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	flagSet.IntVarP(&settings.recent, recentFlagName, recentFlagShorthand, 0, recentFlagDescription)
	registerMultiValueFlag(flagSet, &settings.fileExtensions, fileExtensionsFlagName, fileExtensionsFlagShorthand, fileExtensionsFlagDescription)
	registerBooleanFlag(flagSet, &settings.stripComments, stripCommentsFlagName, stripCommentsFlagShorthand, false, stripCommentsFlagDescription)
	flagSet.StringVar(&settings.stripMode, stripModeFlagName, types.StripModePattern, stripModeFlagDescription)
	registerBooleanFlag(flagSet, &settings.sniffBinary, sniffFlagName, "", false, sniffFlagDescription)
	registerBooleanFlag(flagSet, &settings.useGitignore, gitignoreFlagName, "", false, gitignoreFlagDescription)
	registerBooleanFlag(flagSet, &settings.useIgnoreFile, ignoreFileFlagName, "", false, ignoreFileFlagDescription)
	registerBooleanFlag(flagSet, &settings.summary, summaryFlagName, "", defaultSummaryEnabled, summaryFlagDescription)
	registerBooleanFlag(flagSet, &settings.tokens, tokensFlagName, "", false, tokensFlagDescription)
	flagSet.StringVar(&settings.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	flagSet.StringVar(&settings.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(flagSet, &settings.verbose, verboseFlagName, "", false, verboseFlagDescription)
	flagSet.BoolVar(&settings.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.WorkingDirectory,
				HomeDirectory:    dependencies.HomeDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(command.OutOrStdout(), initializedTemplate, writtenPath)
			return printError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, "", false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, "", false, forceFlagDescription)
	return initCommand
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.Clock == nil {
		dependencies.Clock = time.Now
	}
	if dependencies.IsTerminal == nil {
		dependencies.IsTerminal = writerIsTerminal
	}
	return dependencies
}

// validate rejects values no configuration source may supply.
func (settings renderSettings) validate() error {
	numericValues := []struct {
		flagName string
		value    int
	}{
		{flagName: limitFlagName, value: settings.limit},
		{flagName: depthFlagName, value: settings.depth},
		{flagName: recentFlagName, value: settings.recent},
	}
	for _, numericValue := range numericValues {
		if numericValue.value < 0 {
			return fmt.Errorf(errorNegativeValueFormat, numericValue.flagName, numericValue.value)
		}
	}
	switch strings.ToLower(settings.stripMode) {
	case types.StripModePattern, types.StripModeSyntax:
		return nil
	default:
		return fmt.Errorf(errorInvalidStripMode, settings.stripMode)
	}
}

var errClipboardUnavailable = errors.New(errorClipboardUnavailable)
