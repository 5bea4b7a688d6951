package comments_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/temirov/dirsnap/internal/comments"
)

// TestPatternStripperStrip verifies per-language removal of line and block comments.
func TestPatternStripperStrip(testingInstance *testing.T) {
	testCases := []struct {
		name     string
		language comments.Language
		input    string
		expected string
	}{
		{
			name:     "python hash lines keep their line breaks",
			language: comments.LanguagePython,
			input:    "# comment\nprint(1)\n# c2",
			expected: "\nprint(1)\n",
		},
		{
			name:     "python indented comment",
			language: comments.LanguagePython,
			input:    "def f():\n    # inside\n    return 1\n",
			expected: "def f():\n\n    return 1\n",
		},
		{
			name:     "python docstring spanning lines",
			language: comments.LanguagePython,
			input:    "\"\"\"Module doc.\nMore.\n\"\"\"\nvalue = 1\n",
			expected: "\nvalue = 1\n",
		},
		{
			name:     "python single quoted docstring",
			language: comments.LanguagePython,
			input:    "'''doc'''\nvalue = 2",
			expected: "\nvalue = 2",
		},
		{
			name:     "python trailing comment is kept",
			language: comments.LanguagePython,
			input:    "value = 1  # trailing",
			expected: "value = 1  # trailing",
		},
		{
			name:     "javascript line and block comments",
			language: comments.LanguageJavaScript,
			input:    "// header\nconst a = 1;\n/* block\n comment */\nconst b = 2;",
			expected: "\nconst a = 1;\n\nconst b = 2;",
		},
		{
			name:     "go block comment inline",
			language: comments.LanguageGo,
			input:    "x := /* note */ 1",
			expected: "x :=  1",
		},
		{
			name:     "sql dash comments",
			language: comments.LanguageSQL,
			input:    "-- select all\nSELECT 1;",
			expected: "\nSELECT 1;",
		},
		{
			name:     "html markup comment",
			language: comments.LanguageHTML,
			input:    "<p>a</p><!-- hidden\n -->",
			expected: "<p>a</p>",
		},
		{
			name:     "css block comment",
			language: comments.LanguageCSS,
			input:    "/* reset */\nbody {}",
			expected: "\nbody {}",
		},
		{
			name:     "yaml hash comment",
			language: comments.LanguageYAML,
			input:    "# settings\nkey: value\n",
			expected: "\nkey: value\n",
		},
		{
			name:     "unsupported language is unchanged",
			language: comments.LanguageUnsupported,
			input:    "# not a comment here\n// nor here",
			expected: "# not a comment here\n// nor here",
		},
		{
			name:     "unknown tag is unchanged",
			language: comments.Language("brainfuck"),
			input:    "# text",
			expected: "# text",
		},
		{
			name:     "line delimiter inside unterminated block is stripped as a line",
			language: comments.LanguageJavaScript,
			input:    "code();\n/* open\n// inner\nstill open",
			expected: "code();\n/* open\n\nstill open",
		},
	}

	stripper := comments.NewPatternStripper()
	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subTest *testing.T) {
			actual := stripper.Strip(testCase.input, testCase.language)
			if diff := cmp.Diff(testCase.expected, actual); diff != "" {
				subTest.Fatalf("unexpected strip result (-want +got):\n%s", diff)
			}
		})
	}
}

// TestParseLanguage verifies fence tags resolve to the finite language set.
func TestParseLanguage(testingInstance *testing.T) {
	testCases := map[string]comments.Language{
		"python":     comments.LanguagePython,
		"go":         comments.LanguageGo,
		"typescript": comments.LanguageTypeScript,
		"json":       comments.LanguageUnsupported,
		"":           comments.LanguageUnsupported,
	}
	for tag, expected := range testCases {
		if actual := comments.ParseLanguage(tag); actual != expected {
			testingInstance.Errorf("ParseLanguage(%q) = %q, want %q", tag, actual, expected)
		}
	}
}
