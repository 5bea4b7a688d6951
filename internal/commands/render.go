// Package commands contains the traversal and rendering engine that turns a
// directory tree into a text snapshot.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/dirsnap/internal/comments"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorStatRootFormat is used when the render root cannot be inspected.
	errorStatRootFormat = "inspecting %s: %w"
	// errorReadDirectoryFormat is used when a directory cannot be listed.
	errorReadDirectoryFormat = "reading directory %s: %w"

	warningUnreadableDirectoryMessage = "skipping unreadable directory"
	warningUnreadableFileMessage      = "skipping unreadable file"
	warningEntryInfoMessage           = "unable to stat entry"
	debugExcludedEntryMessage         = "skipping excluded entry"

	pathLogField  = "path"
	depthLogField = "depth"

	secondsPerMinute = 60
)

// RendererConfig carries the read-only collaborators of a Renderer.
type RendererConfig struct {
	Options  types.RenderOptions
	Patterns *utils.PatternSet
	Catalog  *utils.Catalog
	// Stripper is consulted only when Options.StripComments is set.
	Stripper comments.Stripper
	// Clock defaults to time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

// Renderer walks a directory tree depth-first and renders it as indented text.
// A Renderer is not safe for concurrent use.
type Renderer struct {
	options           types.RenderOptions
	patterns          *utils.PatternSet
	catalog           *utils.Catalog
	stripper          comments.Stripper
	clock             func() time.Time
	logger            *zap.Logger
	allowedExtensions map[string]struct{}
	rootDirectory     string
	statistics        types.RenderStatistics
}

// NewRenderer builds a Renderer, filling defaults for missing collaborators.
func NewRenderer(config RendererConfig) *Renderer {
	renderer := &Renderer{
		options:  config.Options,
		patterns: config.Patterns,
		catalog:  config.Catalog,
		stripper: config.Stripper,
		clock:    config.Clock,
		logger:   config.Logger,
	}
	if renderer.patterns == nil {
		renderer.patterns = utils.NewPatternSet(nil)
	}
	if renderer.catalog == nil {
		renderer.catalog = utils.NewDefaultCatalog()
	}
	if renderer.clock == nil {
		renderer.clock = time.Now
	}
	if renderer.logger == nil {
		renderer.logger = zap.NewNop()
	}
	if len(config.Options.FileExtensions) > 0 {
		renderer.allowedExtensions = make(map[string]struct{}, len(config.Options.FileExtensions))
		for _, extension := range config.Options.FileExtensions {
			renderer.allowedExtensions[utils.NormalizeExtension(extension)] = struct{}{}
		}
	}
	return renderer
}

// Render renders the tree rooted at rootPath. A regular file root renders as a
// single file block. Listing failures below the root are rendered as placeholders.
func (renderer *Renderer) Render(rootPath string) (types.Report, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return types.Report{}, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	rootInfo, statError := os.Stat(absoluteRootPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return types.Report{}, &types.PathNotFoundError{Path: rootPath}
		}
		return types.Report{}, fmt.Errorf(errorStatRootFormat, rootPath, statError)
	}

	renderer.statistics = types.RenderStatistics{}
	var text string
	if rootInfo.IsDir() {
		renderer.rootDirectory = absoluteRootPath
		renderedText, renderError := renderer.RenderDirectory(absoluteRootPath, 0)
		if renderError != nil {
			return types.Report{}, renderError
		}
		text = renderedText
	} else {
		renderer.rootDirectory = filepath.Dir(absoluteRootPath)
		var builder strings.Builder
		renderer.renderFile(&builder, types.DirectoryEntry{
			Name:         rootInfo.Name(),
			AbsolutePath: absoluteRootPath,
			RelativePath: rootInfo.Name(),
			ModifiedTime: rootInfo.ModTime(),
		}, 0)
		text = builder.String()
	}

	return types.Report{Root: absoluteRootPath, Text: text, Statistics: renderer.statistics}, nil
}

// RenderDirectory renders the entries of directory at the given depth. It fails
// only when directory itself cannot be listed.
func (renderer *Renderer) RenderDirectory(directory string, depth int) (string, error) {
	if renderer.options.DepthLimit > 0 && depth >= renderer.options.DepthLimit {
		return "", nil
	}
	if renderer.rootDirectory == "" {
		renderer.rootDirectory = directory
	}

	directoryEntries, readDirectoryError := os.ReadDir(directory)
	if readDirectoryError != nil {
		return "", fmt.Errorf(errorReadDirectoryFormat, directory, readDirectoryError)
	}

	var builder strings.Builder
	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(directory, directoryEntry.Name())
		entry := types.DirectoryEntry{
			Name:         directoryEntry.Name(),
			AbsolutePath: entryPath,
			RelativePath: utils.RelativePathOrSelf(entryPath, renderer.rootDirectory),
			IsDirectory:  directoryEntry.IsDir(),
		}

		if directoryEntry.Type()&os.ModeSymlink != 0 || renderer.options.RecentMinutes > 0 {
			entryInfo, infoError := os.Stat(entryPath)
			if infoError != nil {
				if renderer.patterns.Matches(entry.Name, entry.RelativePath, entry.IsDirectory) {
					renderer.statistics.SkippedEntries++
					continue
				}
				renderer.logger.Warn(warningEntryInfoMessage, zap.String(pathLogField, entryPath), zap.Error(infoError))
				renderer.statistics.UnreadableEntries++
				writeMarkerLine(&builder, depth, entry.Name, types.UnreadableFileMarker)
				continue
			}
			entry.IsDirectory = entryInfo.IsDir()
			entry.ModifiedTime = entryInfo.ModTime()
		}

		renderer.renderEntry(&builder, entry, depth)
	}
	return builder.String(), nil
}

// renderEntry applies the recency and exclusion filters and renders one entry.
func (renderer *Renderer) renderEntry(builder *strings.Builder, entry types.DirectoryEntry, depth int) {
	if renderer.isStale(entry) {
		renderer.statistics.SkippedEntries++
		return
	}
	if renderer.patterns.Matches(entry.Name, entry.RelativePath, entry.IsDirectory) {
		renderer.logger.Debug(debugExcludedEntryMessage, zap.String(pathLogField, entry.RelativePath))
		renderer.statistics.SkippedEntries++
		return
	}

	if entry.IsDirectory {
		renderer.statistics.Directories++
		fmt.Fprintf(builder, types.DirectoryHeaderFormat, indentation(depth), entry.Name)
		nestedText, nestedError := renderer.RenderDirectory(entry.AbsolutePath, depth+1)
		if nestedError != nil {
			renderer.logger.Warn(warningUnreadableDirectoryMessage,
				zap.String(pathLogField, entry.AbsolutePath),
				zap.Int(depthLogField, depth+1),
				zap.Error(nestedError))
			renderer.statistics.UnreadableEntries++
			fmt.Fprintf(builder, types.FileLineFormat, indentation(depth+1), types.UnreadableDirectory)
			return
		}
		builder.WriteString(nestedText)
		return
	}

	if renderer.options.TreeOnly {
		renderer.statistics.Files++
		fmt.Fprintf(builder, types.FileLineFormat, indentation(depth), entry.Name)
		return
	}

	renderer.renderFile(builder, entry, depth)
}

// isStale reports whether entry falls outside the recency window.
func (renderer *Renderer) isStale(entry types.DirectoryEntry) bool {
	if renderer.options.RecentMinutes <= 0 || entry.ModifiedTime.IsZero() {
		return false
	}
	window := time.Duration(renderer.options.RecentMinutes*secondsPerMinute) * time.Second
	return renderer.clock().Sub(entry.ModifiedTime) > window
}

func (renderer *Renderer) isExtensionAllowed(name string) bool {
	if len(renderer.allowedExtensions) == 0 {
		return true
	}
	_, allowed := renderer.allowedExtensions[utils.FileExtension(name)]
	return allowed
}

// ComposeReportText joins prepend, body and append with newlines, omitting empty
// prepend and append parts.
func ComposeReportText(prependText string, body string, appendText string) string {
	parts := make([]string, 0, 3)
	if prependText != "" {
		parts = append(parts, prependText)
	}
	parts = append(parts, body)
	if appendText != "" {
		parts = append(parts, appendText)
	}
	return strings.Join(parts, "\n")
}

func indentation(depth int) string {
	return strings.Repeat(types.IndentUnit, depth)
}

func writeMarkerLine(builder *strings.Builder, depth int, name string, marker string) {
	fmt.Fprintf(builder, types.FileMarkerLineFormat, indentation(depth), name, marker)
}
