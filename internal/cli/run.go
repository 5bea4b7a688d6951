package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/dirsnap/internal/commands"
	"github.com/temirov/dirsnap/internal/comments"
	"github.com/temirov/dirsnap/internal/config"
	"github.com/temirov/dirsnap/internal/output"
	"github.com/temirov/dirsnap/internal/tokenizer"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const (
	warningSyntaxStripperUnavailable = "syntax-aware stripping is unavailable in this build; using pattern mode"
	warningTokenCountFailed          = "unable to count tokens"
	warningVerboseLoggerFailed       = "unable to enable verbose logging"
	debugEffectivePatternsMessage    = "effective exclusion patterns"

	patternsLogField = "patterns"
	modelLogField    = "model"
)

// renderSettings is the resolved set of render flags for one invocation.
type renderSettings struct {
	copyToClipboard bool
	limit           int
	depth           int
	exclude         []string
	include         []string
	binary          bool
	tree            bool
	prependText     string
	appendText      string
	output          string
	recent          int
	fileExtensions  []string
	stripComments   bool
	stripMode       string
	sniffBinary     bool
	useGitignore    bool
	useIgnoreFile   bool
	summary         bool
	tokens          bool
	model           string
	configPath      string
	verbose         bool
	showVersion     bool
}

// renderOptions converts the settings into engine options.
func (settings renderSettings) renderOptions() types.RenderOptions {
	return types.RenderOptions{
		ContentLimit:   settings.limit,
		DepthLimit:     settings.depth,
		IncludeBinary:  settings.binary,
		TreeOnly:       settings.tree,
		RecentMinutes:  settings.recent,
		FileExtensions: settings.fileExtensions,
		StripComments:  settings.stripComments,
		StripMode:      strings.ToLower(settings.stripMode),
		SniffBinary:    settings.sniffBinary,
	}
}

// runRender loads configuration, renders rootPath and delivers the report.
func runRender(command *cobra.Command, dependencies Dependencies, settings renderSettings, rootPath string) error {
	logger := dependencies.Logger
	if settings.verbose {
		verboseLogger, loggerError := utils.NewApplicationLogger(true)
		if loggerError != nil {
			logger.Warn(warningVerboseLoggerFailed, zap.Error(loggerError))
		} else {
			logger = verboseLogger
			defer func() { _ = verboseLogger.Sync() }()
		}
	}

	workingDirectory := dependencies.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(errorWorkingDirectory, workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: settings.configPath,
		HomeDirectory:    dependencies.HomeDirectory,
	})
	if configurationError != nil {
		return configurationError
	}
	settings = applyConfiguration(command.Flags(), applicationConfiguration, settings)
	if validationError := settings.validate(); validationError != nil {
		return validationError
	}

	patternSet, patternError := buildPatternSet(settings, rootPath)
	if patternError != nil {
		return patternError
	}
	logger.Debug(debugEffectivePatternsMessage, zap.Stringer(patternsLogField, patternSet))

	options := settings.renderOptions()
	renderer := commands.NewRenderer(commands.RendererConfig{
		Options:  options,
		Patterns: patternSet,
		Catalog:  utils.NewDefaultCatalog(),
		Stripper: selectStripper(options, logger),
		Clock:    dependencies.Clock,
		Logger:   logger,
	})
	report, renderError := renderer.Render(rootPath)
	if renderError != nil {
		return renderError
	}
	reportText := commands.ComposeReportText(settings.prependText, report.Text, settings.appendText)

	sinks, sinkError := selectSinks(command.OutOrStdout(), dependencies, settings)
	if sinkError != nil {
		return sinkError
	}
	if deliverError := output.Deliver(reportText, sinks...); deliverError != nil {
		return deliverError
	}

	if !settings.summary {
		return nil
	}
	summary := output.Summary{Statistics: report.Statistics}
	if settings.tokens {
		countResult, countError := countTokens(settings.model, reportText)
		if countError != nil {
			logger.Warn(warningTokenCountFailed, zap.String(modelLogField, settings.model), zap.Error(countError))
		} else if countResult.Counted {
			summary.Tokens = countResult.Tokens
			summary.Model = countResult.Model
		}
	}
	errorWriter := command.ErrOrStderr()
	return output.NewSummaryPrinter(errorWriter, dependencies.IsTerminal(errorWriter)).Print(summary)
}

// applyConfiguration fills every setting whose flag was not given explicitly from
// the loaded configuration.
func applyConfiguration(flagSet *pflag.FlagSet, configuration config.ApplicationConfiguration, settings renderSettings) renderSettings {
	useInt := func(flagName string, configured *int, target *int) {
		if configured != nil && !flagSet.Changed(flagName) {
			*target = *configured
		}
	}
	useBool := func(flagName string, configured *bool, target *bool) {
		if configured != nil && !flagSet.Changed(flagName) {
			*target = *configured
		}
	}
	useString := func(flagName string, configured string, target *string) {
		if configured != "" && !flagSet.Changed(flagName) {
			*target = configured
		}
	}
	useList := func(flagName string, configured []string, target *[]string) {
		if len(configured) > 0 && !flagSet.Changed(flagName) {
			*target = append([]string{}, configured...)
		}
	}

	useInt(limitFlagName, configuration.Limit, &settings.limit)
	useInt(depthFlagName, configuration.Depth, &settings.depth)
	useInt(recentFlagName, configuration.Recent, &settings.recent)
	useList(excludeFlagName, configuration.Exclude, &settings.exclude)
	useList(includeFlagName, configuration.Include, &settings.include)
	useList(fileExtensionsFlagName, configuration.FileExtensions, &settings.fileExtensions)
	useBool(binaryFlagName, configuration.Binary, &settings.binary)
	useBool(treeFlagName, configuration.Tree, &settings.tree)
	useBool(stripCommentsFlagName, configuration.StripComments, &settings.stripComments)
	useString(stripModeFlagName, configuration.StripMode, &settings.stripMode)
	useBool(sniffFlagName, configuration.SniffBinary, &settings.sniffBinary)
	useBool(gitignoreFlagName, configuration.UseGitignore, &settings.useGitignore)
	useBool(ignoreFileFlagName, configuration.UseIgnoreFile, &settings.useIgnoreFile)
	useBool(summaryFlagName, configuration.Summary, &settings.summary)
	useBool(copyFlagName, configuration.Copy, &settings.copyToClipboard)
	useString(outputFlagName, configuration.Output, &settings.output)
	useBool(tokensFlagName, configuration.Tokens.Enabled, &settings.tokens)
	useString(modelFlagName, configuration.Tokens.Model, &settings.model)
	return settings
}

// buildPatternSet compiles (defaults ∪ excludes ∪ ignore files) \ includes.
// Ignore files are read from rootPath when it is a directory.
func buildPatternSet(settings renderSettings, rootPath string) (*utils.PatternSet, error) {
	excludes := append([]string{}, settings.exclude...)
	includes := append([]string{}, settings.include...)
	if settings.useGitignore || settings.useIgnoreFile {
		ignoreDirectory := rootPath
		if rootInfo, statError := os.Stat(rootPath); statError == nil && !rootInfo.IsDir() {
			ignoreDirectory = filepath.Dir(rootPath)
		}
		absoluteIgnoreDirectory, absoluteError := filepath.Abs(ignoreDirectory)
		if absoluteError != nil {
			return nil, absoluteError
		}
		ignorePatterns, ignoreError := config.LoadCombinedIgnorePatterns(absoluteIgnoreDirectory, settings.useGitignore, settings.useIgnoreFile)
		if ignoreError != nil {
			return nil, ignoreError
		}
		excludes = append(excludes, ignorePatterns.Exclude...)
		includes = append(includes, ignorePatterns.Include...)
	}
	return utils.NewPatternSet(utils.BuildExclusionPatterns(utils.DefaultExclusionPatterns(), excludes, includes)), nil
}

// selectStripper returns the stripper for options, falling back to pattern mode
// when syntax-aware stripping is not compiled in.
func selectStripper(options types.RenderOptions, logger *zap.Logger) comments.Stripper {
	if !options.StripComments {
		return nil
	}
	patternStripper := comments.NewPatternStripper()
	if options.StripMode != types.StripModeSyntax {
		return patternStripper
	}
	syntaxStripper := comments.NewSyntaxStripper(patternStripper)
	if syntaxStripper == nil {
		logger.Warn(warningSyntaxStripperUnavailable)
		return patternStripper
	}
	return syntaxStripper
}

// selectSinks chooses where the report goes. The console is used only when
// neither a file nor the clipboard was requested.
func selectSinks(console io.Writer, dependencies Dependencies, settings renderSettings) ([]output.Sink, error) {
	var sinks []output.Sink
	if settings.output != "" {
		sinks = append(sinks, output.NewFileSink(settings.output))
	}
	if settings.copyToClipboard {
		if !dependencies.Clipboard.Available() {
			return nil, errClipboardUnavailable
		}
		sinks = append(sinks, output.NewClipboardSink(dependencies.Clipboard))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, output.NewConsoleSink(console))
	}
	return sinks, nil
}

func countTokens(model string, text string) (tokenizer.CountResult, error) {
	counter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		return tokenizer.CountResult{}, counterError
	}
	countResult, countError := tokenizer.CountText(counter, text)
	if countError != nil {
		return tokenizer.CountResult{}, countError
	}
	countResult.Model = resolvedModel
	return countResult, nil
}

func writerIsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	return isFile && output.IsTerminal(file)
}
