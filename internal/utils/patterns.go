package utils

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

const (
	pathSegmentSeparator     = "/"
	pathSegmentSeparatorRune = '/'
	windowsPathSeparator     = "\\"
)

// DefaultExcludedDirectories are skipped unless explicitly included.
var DefaultExcludedDirectories = []string{
	"node_modules",
	GitDirectoryName,
	"__pycache__",
}

// DefaultExcludedFiles are skipped unless explicitly included.
var DefaultExcludedFiles = []string{
	".gitattributes",
	GitIgnoreFileName,
	"LICENSE",
	"README.md",
}

// DefaultExclusionPatterns returns a fresh copy of the built-in exclusion list.
func DefaultExclusionPatterns() []string {
	defaults := make([]string, 0, len(DefaultExcludedDirectories)+len(DefaultExcludedFiles))
	defaults = append(defaults, DefaultExcludedDirectories...)
	defaults = append(defaults, DefaultExcludedFiles...)
	return defaults
}

// BuildExclusionPatterns computes (defaults ∪ excludes) \ includes on the literal
// pattern strings. Blank patterns are dropped and the first occurrence order is kept.
func BuildExclusionPatterns(defaults []string, excludes []string, includes []string) []string {
	included := make(map[string]struct{}, len(includes))
	for _, includePattern := range includes {
		included[strings.TrimSpace(includePattern)] = struct{}{}
	}
	combined := make([]string, 0, len(defaults)+len(excludes))
	for _, candidate := range append(append([]string{}, defaults...), excludes...) {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		if _, isIncluded := included[trimmed]; isIncluded {
			continue
		}
		combined = append(combined, trimmed)
	}
	return DeduplicatePatterns(combined)
}

// compiledPattern is one exclusion pattern ready for matching.
type compiledPattern struct {
	source        string
	matcher       glob.Glob
	directoryOnly bool
}

// PatternSet is an immutable, compiled set of exclusion patterns.
//
// Each pattern is compared case-insensitively against both the bare entry name and
// the entry path relative to the render root, with backslashes treated as path
// separators. "*" and "?" do not cross a "/", "**" does, and character classes use
// "[...]" or "[!...]". A pattern ending in "/" only matches directories.
type PatternSet struct {
	patterns []compiledPattern
}

// NewPatternSet compiles the provided patterns. A pattern that is not a valid glob
// is matched literally.
func NewPatternSet(patterns []string) *PatternSet {
	patternSet := &PatternSet{}
	for _, pattern := range DeduplicatePatterns(patterns) {
		normalized := normalizeForMatching(strings.TrimSpace(pattern))
		if normalized == "" {
			continue
		}
		directoryOnly := strings.HasSuffix(normalized, pathSegmentSeparator)
		normalized = strings.TrimSuffix(normalized, pathSegmentSeparator)
		if normalized == "" {
			continue
		}
		patternSet.patterns = append(patternSet.patterns, compiledPattern{
			source:        pattern,
			matcher:       compileGlob(normalized),
			directoryOnly: directoryOnly,
		})
	}
	return patternSet
}

// compileGlob compiles pattern with "/" as the separator, quoting it when it is malformed.
func compileGlob(pattern string) glob.Glob {
	compiled, compileError := glob.Compile(pattern, pathSegmentSeparatorRune)
	if compileError == nil {
		return compiled
	}
	return glob.MustCompile(glob.QuoteMeta(pattern), pathSegmentSeparatorRune)
}

// Matches reports whether an entry with the given name and root-relative path is excluded.
func (patternSet *PatternSet) Matches(name string, relativePath string, isDirectory bool) bool {
	if patternSet == nil || len(patternSet.patterns) == 0 {
		return false
	}
	normalizedName := normalizeForMatching(name)
	normalizedPath := normalizeForMatching(relativePath)
	for _, pattern := range patternSet.patterns {
		if pattern.directoryOnly && !isDirectory {
			continue
		}
		if pattern.matcher.Match(normalizedName) {
			return true
		}
		if normalizedPath != "" && normalizedPath != normalizedName && pattern.matcher.Match(normalizedPath) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns of the set in sorted order.
func (patternSet *PatternSet) Patterns() []string {
	if patternSet == nil {
		return nil
	}
	sources := make([]string, 0, len(patternSet.patterns))
	for _, pattern := range patternSet.patterns {
		sources = append(sources, pattern.source)
	}
	sort.Strings(sources)
	return sources
}

// String lists the source patterns, mainly for debug logging.
func (patternSet *PatternSet) String() string {
	return fmt.Sprintf("[%s]", strings.Join(patternSet.Patterns(), ", "))
}

func normalizeForMatching(value string) string {
	return strings.ToLower(strings.ReplaceAll(value, windowsPathSeparator, pathSegmentSeparator))
}

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the slash-separated relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}
