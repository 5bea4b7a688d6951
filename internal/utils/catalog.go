package utils

import (
	"path/filepath"
	"strings"
)

// defaultLanguageByExtension maps a lower-case file extension to a fence language tag.
var defaultLanguageByExtension = map[string]string{
	".py":     "python",
	".ts":     "typescript",
	".tsx":    "typescript",
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".html":   "html",
	".htm":    "html",
	".css":    "css",
	".php":    "php",
	".cpp":    "cpp",
	".cc":     "cpp",
	".hpp":    "cpp",
	".c":      "c",
	".h":      "c",
	".java":   "java",
	".rb":     "ruby",
	".go":     "go",
	".rs":     "rust",
	".swift":  "swift",
	".sh":     "bash",
	".bash":   "bash",
	".md":     "markdown",
	".xml":    "xml",
	".json":   "json",
	".yml":    "yaml",
	".yaml":   "yaml",
	".toml":   "toml",
	".cs":     "csharp",
	".f":      "fortran",
	".r":      "r",
	".pl":     "perl",
	".lua":    "lua",
	".kt":     "kotlin",
	".dart":   "dart",
	".groovy": "groovy",
	".ps1":    "powershell",
	".m":      "matlab",
	".sql":    "sql",
}

// defaultBinaryExtensions lists lower-case extensions whose files are never read as text.
var defaultBinaryExtensions = []string{
	".exe", ".dll", ".bin", ".o", ".a", ".lib",
	".so", ".dylib", ".bmp", ".gif", ".jpg", ".jpeg",
	".png", ".webp", ".ico", ".mp3", ".wav", ".ogg", ".mp4",
	".webm", ".zip", ".tar", ".gz", ".bz2", ".7z",
	".rar", ".pdf", ".doc", ".docx", ".xls", ".xlsx",
	".ppt", ".pptx", ".odt", ".ods", ".class", ".jar", ".pyc",
}

// Catalog resolves language tags and binary classification from file names.
// A Catalog is read-only after construction.
type Catalog struct {
	languageByExtension map[string]string
	binaryExtensions    map[string]struct{}
}

// NewDefaultCatalog returns the catalog built from the built-in extension tables.
func NewDefaultCatalog() *Catalog {
	return NewCatalog(defaultLanguageByExtension, defaultBinaryExtensions)
}

// NewCatalog copies the provided tables into a new Catalog, normalizing extensions.
func NewCatalog(languageByExtension map[string]string, binaryExtensions []string) *Catalog {
	catalog := &Catalog{
		languageByExtension: make(map[string]string, len(languageByExtension)),
		binaryExtensions:    make(map[string]struct{}, len(binaryExtensions)),
	}
	for extension, language := range languageByExtension {
		catalog.languageByExtension[NormalizeExtension(extension)] = language
	}
	for _, extension := range binaryExtensions {
		catalog.binaryExtensions[NormalizeExtension(extension)] = struct{}{}
	}
	return catalog
}

// Language returns the fence language tag for name, or an empty string when the
// extension is unknown or the name has no extension.
func (catalog *Catalog) Language(name string) string {
	extension := FileExtension(name)
	if extension == "" {
		return ""
	}
	return catalog.languageByExtension[extension]
}

// IsBinaryName reports whether name carries an extension from the binary table.
func (catalog *Catalog) IsBinaryName(name string) bool {
	extension := FileExtension(name)
	if extension == "" {
		return false
	}
	_, isBinary := catalog.binaryExtensions[extension]
	return isBinary
}

// FileExtension returns the lower-case extension of name including the dot.
// Dot files such as ".env" have no extension.
func FileExtension(name string) string {
	baseName := filepath.Base(name)
	if strings.LastIndex(baseName, ".") <= 0 {
		return ""
	}
	return strings.ToLower(filepath.Ext(baseName))
}

// NormalizeExtension lower-cases extension and ensures a leading dot.
// An empty value or a lone dot normalizes to the empty string, which stands
// for files without an extension.
func NormalizeExtension(extension string) string {
	trimmed := strings.ToLower(strings.TrimSpace(extension))
	if trimmed == "" || trimmed == "." {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return trimmed
}
