// Package comments removes source-code comments from text for a known set of languages.
//
// Stripping is best effort: an unsupported language is returned unchanged and no
// input is ever rejected. The worst outcome is a comment left in place.
package comments

import "regexp"

// Language identifies a fence language tag understood by the strippers.
type Language string

// Supported languages. Tags match the fence tags produced by the file catalog.
const (
	LanguageUnsupported Language = ""
	LanguagePython      Language = "python"
	LanguageRuby        Language = "ruby"
	LanguagePerl        Language = "perl"
	LanguageBash        Language = "bash"
	LanguagePowerShell  Language = "powershell"
	LanguageR           Language = "r"
	LanguageYAML        Language = "yaml"
	LanguageJavaScript  Language = "javascript"
	LanguageTypeScript  Language = "typescript"
	LanguageJava        Language = "java"
	LanguageC           Language = "c"
	LanguageCPP         Language = "cpp"
	LanguageCSharp      Language = "csharp"
	LanguageRust        Language = "rust"
	LanguageGo          Language = "go"
	LanguagePHP         Language = "php"
	LanguageSwift       Language = "swift"
	LanguageKotlin      Language = "kotlin"
	LanguageDart        Language = "dart"
	LanguageGroovy      Language = "groovy"
	LanguageSQL         Language = "sql"
	LanguageLua         Language = "lua"
	LanguageCSS         Language = "css"
	LanguageHTML        Language = "html"
	LanguageXML         Language = "xml"
	LanguageMarkdown    Language = "markdown"
)

// Stripper removes comments from code written in language.
type Stripper interface {
	Strip(code string, language Language) string
}

// ParseLanguage converts a fence tag into a Language, returning LanguageUnsupported
// when no stripper knows the tag.
func ParseLanguage(tag string) Language {
	language := Language(tag)
	if _, known := defaultPatternTable[language]; known {
		return language
	}
	return LanguageUnsupported
}

// commentPatterns holds the compiled expressions registered for one language.
// Either expression may be nil.
type commentPatterns struct {
	singleLine *regexp.Regexp
	multiLine  *regexp.Regexp
}

var (
	hashLineComment        = regexp.MustCompile(`(?m)^[ \t]*#.*$`)
	doubleSlashLineComment = regexp.MustCompile(`(?m)^[ \t]*//.*$`)
	doubleDashLineComment  = regexp.MustCompile(`(?m)^[ \t]*--.*$`)

	slashStarBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	pythonDocstring       = regexp.MustCompile(`(?s)('''.*?'''|""".*?""")`)
	markupComment         = regexp.MustCompile(`(?s)<!--.*?-->`)
	luaBlockComment       = regexp.MustCompile(`(?s)--\[\[.*?\]\]`)
)

// defaultPatternTable is the static per-language pattern registry.
var defaultPatternTable = map[Language]commentPatterns{
	LanguagePython:     {singleLine: hashLineComment, multiLine: pythonDocstring},
	LanguageRuby:       {singleLine: hashLineComment},
	LanguagePerl:       {singleLine: hashLineComment},
	LanguageBash:       {singleLine: hashLineComment},
	LanguagePowerShell: {singleLine: hashLineComment},
	LanguageR:          {singleLine: hashLineComment},
	LanguageYAML:       {singleLine: hashLineComment},
	LanguageJavaScript: {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageTypeScript: {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageJava:       {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageC:          {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageCPP:        {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageCSharp:     {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageRust:       {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageGo:         {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguagePHP:        {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageSwift:      {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageKotlin:     {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageDart:       {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageGroovy:     {singleLine: doubleSlashLineComment, multiLine: slashStarBlockComment},
	LanguageSQL:        {singleLine: doubleDashLineComment, multiLine: slashStarBlockComment},
	LanguageLua:        {singleLine: doubleDashLineComment, multiLine: luaBlockComment},
	LanguageCSS:        {multiLine: slashStarBlockComment},
	LanguageHTML:       {multiLine: markupComment},
	LanguageXML:        {multiLine: markupComment},
	LanguageMarkdown:   {multiLine: markupComment},
}

// PatternStripper strips comments with per-language regular expressions.
//
// Whole comment lines are removed first, keeping their line breaks; block comments
// and docstrings are removed afterwards as single units. Because of that order a
// single-line delimiter inside an unterminated block comment is stripped as a line
// comment, and trailing comments after code are left in place.
type PatternStripper struct {
	table map[Language]commentPatterns
}

// NewPatternStripper returns a PatternStripper backed by the built-in table.
func NewPatternStripper() *PatternStripper {
	return &PatternStripper{table: defaultPatternTable}
}

// Strip removes comments from code. Unsupported languages are returned unchanged.
func (stripper *PatternStripper) Strip(code string, language Language) string {
	patterns, known := stripper.table[language]
	if !known {
		return code
	}
	if patterns.singleLine != nil {
		code = patterns.singleLine.ReplaceAllLiteralString(code, "")
	}
	if patterns.multiLine != nil {
		code = patterns.multiLine.ReplaceAllLiteralString(code, "")
	}
	return code
}

var _ Stripper = (*PatternStripper)(nil)
