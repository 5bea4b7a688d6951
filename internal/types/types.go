// Package types defines every cross‑package data structure used by the dirsnap CLI.
package types

import (
	"errors"
	"fmt"
	"time"
)

const (
	StripModePattern = "pattern"
	StripModeSyntax  = "syntax"

	IndentUnit            = "  "
	DirectoryHeaderFormat = "%s/%s:\n"
	FileLineFormat        = "%s-- %s\n"
	FileMarkerLineFormat  = "%s-- %s %s\n"
	FenceDelimiter        = "```"
	TruncationMarker      = "...[more content...]"
	EmptyFileMarker       = "(empty file)"
	BinaryFileMarker      = "(binary file)"
	UnreadableFileMarker  = "(unreadable file)"
	UnreadableDirectory   = "(unreadable directory)"
)

// ErrPathNotFound reports that the root argument does not resolve to an existing entry.
var ErrPathNotFound = errors.New("path not found")

// PathNotFoundMessageFormat is the user-facing message for a missing root path.
const PathNotFoundMessageFormat = "Path '%s' not found."

// PathNotFoundError carries the root argument exactly as the user typed it.
type PathNotFoundError struct {
	Path string
}

func (pathError *PathNotFoundError) Error() string {
	return fmt.Sprintf(PathNotFoundMessageFormat, pathError.Path)
}

// Unwrap makes errors.Is(err, ErrPathNotFound) succeed.
func (pathError *PathNotFoundError) Unwrap() error {
	return ErrPathNotFound
}

// RenderOptions is the immutable configuration for one traversal.
// Zero values disable the corresponding limit or filter.
type RenderOptions struct {
	ContentLimit   int
	DepthLimit     int
	IncludeBinary  bool
	TreeOnly       bool
	RecentMinutes  int
	FileExtensions []string
	StripComments  bool
	StripMode      string
	SniffBinary    bool
}

// DirectoryEntry is a filesystem node discovered while listing a directory.
type DirectoryEntry struct {
	Name         string
	AbsolutePath string
	RelativePath string
	IsDirectory  bool
	ModifiedTime time.Time
}

// RenderStatistics aggregates counters collected during one traversal.
type RenderStatistics struct {
	Directories       int
	Files             int
	BinaryFiles       int
	EmptyFiles        int
	TruncatedFiles    int
	UnreadableEntries int
	SkippedEntries    int
	ContentBytes      int64
}

// Report is the finished rendering of one root directory.
type Report struct {
	Root       string
	Text       string
	Statistics RenderStatistics
}
