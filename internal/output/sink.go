// Package output delivers a finished report to its destinations.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/temirov/dirsnap/internal/services/clipboard"
)

const (
	errorConsoleWriteFormat = "write report to console: %w"
	errorFileWriteFormat    = "write report to %s: %w"
	errorClipboardFormat    = "copy report to clipboard: %w"
)

// Sink receives the complete report text.
type Sink interface {
	Write(text string) error
}

// ConsoleSink prints the report followed by a newline.
type ConsoleSink struct {
	writer io.Writer
}

// NewConsoleSink constructs a ConsoleSink writing to writer.
func NewConsoleSink(writer io.Writer) *ConsoleSink {
	return &ConsoleSink{writer: writer}
}

// Write prints text.
func (sink *ConsoleSink) Write(text string) error {
	if _, writeError := fmt.Fprintln(sink.writer, text); writeError != nil {
		return fmt.Errorf(errorConsoleWriteFormat, writeError)
	}
	return nil
}

// FileSink replaces the file at a path with the report. The file is written to a
// temporary sibling first and renamed into place, so readers never observe a
// partial report.
type FileSink struct {
	path string
}

// NewFileSink constructs a FileSink for path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Write stores text at the sink path.
func (sink *FileSink) Write(text string) error {
	if writeError := atomic.WriteFile(sink.path, strings.NewReader(text)); writeError != nil {
		return fmt.Errorf(errorFileWriteFormat, sink.path, writeError)
	}
	return nil
}

// ClipboardSink places the report on the system clipboard.
type ClipboardSink struct {
	copier clipboard.Copier
}

// NewClipboardSink constructs a ClipboardSink backed by copier.
func NewClipboardSink(copier clipboard.Copier) *ClipboardSink {
	return &ClipboardSink{copier: copier}
}

// Write copies text.
func (sink *ClipboardSink) Write(text string) error {
	if copyError := sink.copier.Copy(text); copyError != nil {
		return fmt.Errorf(errorClipboardFormat, copyError)
	}
	return nil
}

// Deliver hands text to every sink in order and stops at the first failure.
func Deliver(text string, sinks ...Sink) error {
	for _, sink := range sinks {
		if deliverError := sink.Write(text); deliverError != nil {
			return deliverError
		}
	}
	return nil
}

var (
	_ Sink = (*ConsoleSink)(nil)
	_ Sink = (*FileSink)(nil)
	_ Sink = (*ClipboardSink)(nil)
)
