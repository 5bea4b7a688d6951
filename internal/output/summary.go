package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/temirov/dirsnap/internal/types"
)

const (
	summaryPrefix          = "Summary: "
	summaryFilesFormat     = "%d %s"
	summaryTruncatedFormat = "%d truncated"
	summaryBinaryFormat    = "%d binary"
	summarySkippedFormat   = "%d unreadable"
	summaryTokensFormat    = "%d tokens"
	summaryModelFormat     = " (model: %s)"
	summarySeparator       = ", "
	singularFileLabel      = "file"
	pluralFileLabel        = "files"
)

// Summary aggregates what a run rendered.
type Summary struct {
	Statistics types.RenderStatistics
	Tokens     int
	Model      string
}

// FormatSummaryLine formats a Summary as a single human-readable line.
func FormatSummaryLine(summary Summary) string {
	statistics := summary.Statistics
	label := pluralFileLabel
	if statistics.Files == 1 {
		label = singularFileLabel
	}
	parts := []string{
		fmt.Sprintf(summaryFilesFormat, statistics.Files, label),
		humanize.Bytes(uint64(statistics.ContentBytes)),
	}
	if statistics.TruncatedFiles > 0 {
		parts = append(parts, fmt.Sprintf(summaryTruncatedFormat, statistics.TruncatedFiles))
	}
	if statistics.BinaryFiles > 0 {
		parts = append(parts, fmt.Sprintf(summaryBinaryFormat, statistics.BinaryFiles))
	}
	if statistics.UnreadableEntries > 0 {
		parts = append(parts, fmt.Sprintf(summarySkippedFormat, statistics.UnreadableEntries))
	}
	modelSuffix := ""
	if summary.Tokens > 0 {
		parts = append(parts, fmt.Sprintf(summaryTokensFormat, summary.Tokens))
		if summary.Model != "" {
			modelSuffix = fmt.Sprintf(summaryModelFormat, summary.Model)
		}
	}
	return summaryPrefix + strings.Join(parts, summarySeparator) + modelSuffix
}

// SummaryPrinter writes summary lines, highlighted when the destination is a terminal.
type SummaryPrinter struct {
	writer    io.Writer
	highlight *color.Color
}

// NewSummaryPrinter constructs a SummaryPrinter. Color is enabled only when
// useColor is set.
func NewSummaryPrinter(writer io.Writer, useColor bool) *SummaryPrinter {
	highlight := color.New(color.FgCyan)
	if useColor {
		highlight.EnableColor()
	} else {
		highlight.DisableColor()
	}
	return &SummaryPrinter{writer: writer, highlight: highlight}
}

// Print writes the formatted summary line.
func (printer *SummaryPrinter) Print(summary Summary) error {
	_, printError := printer.highlight.Fprintln(printer.writer, FormatSummaryLine(summary))
	return printError
}

// IsTerminal reports whether file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
