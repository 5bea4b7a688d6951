// Package config loads dirsnap configuration files and ignore files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/dirsnap/internal/utils"
)

const (
	commentLinePrefix  = "#"
	negationLinePrefix = "!"
	anchorPrefix       = "/"

	errorLoadIgnoreFileFormat = "loading %s from %s: %w"
)

// IgnorePatterns holds the patterns read from ignore files. Negated lines become
// Include patterns so they override exclusions the same way --include does.
type IgnorePatterns struct {
	Exclude []string
	Include []string
}

// LoadIgnoreFilePatterns reads an ignore file. A missing file yields no patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) (IgnorePatterns, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return IgnorePatterns{}, nil
		}
		return IgnorePatterns{}, openFileError
	}
	defer fileHandle.Close()

	var patterns IgnorePatterns
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentLinePrefix) {
			continue
		}
		if strings.HasPrefix(trimmedLine, negationLinePrefix) {
			if negated := normalizeIgnorePattern(strings.TrimPrefix(trimmedLine, negationLinePrefix)); negated != "" {
				patterns.Include = append(patterns.Include, negated)
			}
			continue
		}
		if pattern := normalizeIgnorePattern(trimmedLine); pattern != "" {
			patterns.Exclude = append(patterns.Exclude, pattern)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return IgnorePatterns{}, scanError
	}
	return patterns, nil
}

// normalizeIgnorePattern drops the root anchor, since patterns already match
// root-relative paths.
func normalizeIgnorePattern(pattern string) string {
	return strings.TrimPrefix(strings.TrimSpace(pattern), anchorPrefix)
}

// LoadCombinedIgnorePatterns aggregates patterns from the .ignore and/or .gitignore
// files at the root of absoluteDirectoryPath.
func LoadCombinedIgnorePatterns(absoluteDirectoryPath string, useGitignore bool, useIgnoreFile bool) (IgnorePatterns, error) {
	var combined IgnorePatterns
	sources := []struct {
		enabled  bool
		fileName string
	}{
		{enabled: useIgnoreFile, fileName: utils.IgnoreFileName},
		{enabled: useGitignore, fileName: utils.GitIgnoreFileName},
	}
	for _, source := range sources {
		if !source.enabled {
			continue
		}
		loaded, loadError := LoadIgnoreFilePatterns(filepath.Join(absoluteDirectoryPath, source.fileName))
		if loadError != nil {
			return IgnorePatterns{}, fmt.Errorf(errorLoadIgnoreFileFormat, source.fileName, absoluteDirectoryPath, loadError)
		}
		combined.Exclude = append(combined.Exclude, loaded.Exclude...)
		combined.Include = append(combined.Include, loaded.Include...)
	}
	combined.Exclude = utils.DeduplicatePatterns(combined.Exclude)
	combined.Include = utils.DeduplicatePatterns(combined.Include)
	return combined, nil
}
