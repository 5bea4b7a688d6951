package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/temirov/dirsnap/internal/comments"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const (
	errorOpenFileFormat = "opening %s: %w"
	errorReadFileFormat = "reading %s: %w"
)

// fileContent is the decoded, possibly truncated text of one file.
type fileContent struct {
	Text      string
	Truncated bool
}

// renderFile renders a file entry in full mode: allowlist, binary handling, then content.
func (renderer *Renderer) renderFile(builder *strings.Builder, entry types.DirectoryEntry, depth int) {
	if !renderer.isExtensionAllowed(entry.Name) {
		renderer.statistics.SkippedEntries++
		return
	}

	isBinary := renderer.catalog.IsBinaryName(entry.Name)
	if !isBinary && renderer.options.SniffBinary {
		sniffedBinary, sniffError := utils.IsFileBinary(entry.AbsolutePath)
		if sniffError != nil {
			renderer.renderUnreadableFile(builder, entry, depth, sniffError)
			return
		}
		isBinary = sniffedBinary
	}
	if isBinary {
		if !renderer.options.IncludeBinary {
			renderer.statistics.SkippedEntries++
			return
		}
		renderer.statistics.BinaryFiles++
		writeMarkerLine(builder, depth, entry.Name, types.BinaryFileMarker)
		return
	}

	content, readError := readFileContent(entry.AbsolutePath, renderer.options.ContentLimit)
	if readError != nil {
		renderer.renderUnreadableFile(builder, entry, depth, readError)
		return
	}

	languageTag := renderer.catalog.Language(entry.Name)
	text := content.Text
	if renderer.options.StripComments && renderer.stripper != nil {
		text = renderer.stripper.Strip(text, comments.ParseLanguage(languageTag))
	}

	if text == "" && !content.Truncated {
		renderer.statistics.EmptyFiles++
		writeMarkerLine(builder, depth, entry.Name, types.EmptyFileMarker)
		return
	}

	renderer.statistics.Files++
	renderer.statistics.ContentBytes += int64(len(text))
	if content.Truncated {
		renderer.statistics.TruncatedFiles++
	}
	writeFileBlock(builder, depth, entry.Name, languageTag, text, content.Truncated)
}

func (renderer *Renderer) renderUnreadableFile(builder *strings.Builder, entry types.DirectoryEntry, depth int, cause error) {
	renderer.logger.Warn(warningUnreadableFileMessage, zap.String(pathLogField, entry.AbsolutePath), zap.Error(cause))
	renderer.statistics.UnreadableEntries++
	writeMarkerLine(builder, depth, entry.Name, types.UnreadableFileMarker)
}

// writeFileBlock appends the header line and the fenced content of a file.
func writeFileBlock(builder *strings.Builder, depth int, name string, languageTag string, text string, truncated bool) {
	fmt.Fprintf(builder, types.FileLineFormat, indentation(depth), name)
	builder.WriteString(types.FenceDelimiter)
	builder.WriteString(languageTag)
	builder.WriteString("\n")
	builder.WriteString(text)
	if truncated {
		builder.WriteString(types.TruncationMarker)
	}
	builder.WriteString("\n")
	builder.WriteString(types.FenceDelimiter)
	builder.WriteString("\n")
}

// readFileContent decodes path as UTF-8, replacing invalid sequences with U+FFFD.
// With a positive limit at most limit characters are kept and one more character is
// probed to detect truncation; the rest of the file is not read.
func readFileContent(path string, limit int) (fileContent, error) {
	file, openError := os.Open(path)
	if openError != nil {
		return fileContent{}, fmt.Errorf(errorOpenFileFormat, path, openError)
	}
	defer file.Close()

	decodedReader := transform.NewReader(file, unicode.UTF8.NewDecoder())
	if limit <= 0 {
		data, readError := io.ReadAll(decodedReader)
		if readError != nil {
			return fileContent{}, fmt.Errorf(errorReadFileFormat, path, readError)
		}
		return fileContent{Text: string(data)}, nil
	}

	runeReader := bufio.NewReader(decodedReader)
	var builder strings.Builder
	for readCount := 0; readCount < limit; readCount++ {
		character, _, readError := runeReader.ReadRune()
		if errors.Is(readError, io.EOF) {
			return fileContent{Text: builder.String()}, nil
		}
		if readError != nil {
			return fileContent{}, fmt.Errorf(errorReadFileFormat, path, readError)
		}
		builder.WriteRune(character)
	}

	_, _, probeError := runeReader.ReadRune()
	if errors.Is(probeError, io.EOF) {
		return fileContent{Text: builder.String()}, nil
	}
	if probeError != nil {
		return fileContent{}, fmt.Errorf(errorReadFileFormat, path, probeError)
	}
	return fileContent{Text: builder.String(), Truncated: true}, nil
}
