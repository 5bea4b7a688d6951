//go:build cgo

package comments

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

const (
	commentNodeType             = "comment"
	lineCommentNodeType         = "line_comment"
	blockCommentNodeType        = "block_comment"
	expressionStatementNodeType = "expression_statement"
	stringNodeType              = "string"
)

// syntaxGrammars maps the languages with a tree-sitter grammar to their grammar.
var syntaxGrammars = map[Language]func() *sitter.Language{
	LanguageGo:         golang.GetLanguage,
	LanguagePython:     python.GetLanguage,
	LanguageJavaScript: javascript.GetLanguage,
	LanguageTypeScript: typescript.GetLanguage,
	LanguageRust:       rust.GetLanguage,
	LanguageJava:       java.GetLanguage,
	LanguageC:          c.GetLanguage,
	LanguageCPP:        cpp.GetLanguage,
	LanguageBash:       bash.GetLanguage,
	LanguageRuby:       ruby.GetLanguage,
}

// SyntaxStripper removes comment nodes found by a tree-sitter parse, so comments
// trailing code and comment delimiters inside string literals are handled
// correctly. Languages without a grammar go to the fallback stripper.
type SyntaxStripper struct {
	parser   *sitter.Parser
	fallback Stripper
}

// NewSyntaxStripper constructs a SyntaxStripper. A nil fallback leaves languages
// without a grammar unchanged.
func NewSyntaxStripper(fallback Stripper) Stripper {
	return &SyntaxStripper{parser: sitter.NewParser(), fallback: fallback}
}

// byteRange is a half-open byte span of the source to drop.
type byteRange struct {
	start uint32
	end   uint32
}

// Strip removes comments from code. A parse failure returns the fallback result.
func (stripper *SyntaxStripper) Strip(code string, language Language) string {
	grammar, supported := syntaxGrammars[language]
	if !supported {
		return stripper.stripWithFallback(code, language)
	}
	content := []byte(code)
	stripper.parser.SetLanguage(grammar())
	tree := stripper.parser.Parse(nil, content)
	if tree == nil {
		return stripper.stripWithFallback(code, language)
	}
	defer tree.Close()

	var removals []byteRange
	collectCommentRanges(tree.RootNode(), language, &removals)
	if len(removals) == 0 {
		return code
	}
	return removeRanges(content, removals)
}

func (stripper *SyntaxStripper) stripWithFallback(code string, language Language) string {
	if stripper.fallback == nil {
		return code
	}
	return stripper.fallback.Strip(code, language)
}

func collectCommentRanges(node *sitter.Node, language Language, removals *[]byteRange) {
	if node == nil {
		return
	}
	if isCommentNode(node, language) {
		*removals = append(*removals, byteRange{start: node.StartByte(), end: node.EndByte()})
		return
	}
	childCount := int(node.ChildCount())
	for childIndex := 0; childIndex < childCount; childIndex++ {
		collectCommentRanges(node.Child(childIndex), language, removals)
	}
}

func isCommentNode(node *sitter.Node, language Language) bool {
	switch node.Type() {
	case commentNodeType, lineCommentNodeType, blockCommentNodeType:
		return true
	case expressionStatementNodeType:
		return language == LanguagePython && isBareStringStatement(node)
	default:
		return false
	}
}

// isBareStringStatement reports whether node is a statement holding only a string
// literal, which is how python docstrings parse.
func isBareStringStatement(node *sitter.Node) bool {
	if node.NamedChildCount() != 1 {
		return false
	}
	child := node.NamedChild(0)
	return child != nil && child.Type() == stringNodeType
}

// removeRanges drops every range from content together with the spaces and tabs
// directly before it. Line breaks are kept.
func removeRanges(content []byte, removals []byteRange) string {
	sort.Slice(removals, func(left, right int) bool {
		return removals[left].start < removals[right].start
	})
	var builder strings.Builder
	builder.Grow(len(content))
	var cursor uint32
	for _, removal := range removals {
		if removal.end <= cursor {
			continue
		}
		start := removal.start
		for start > cursor && (content[start-1] == ' ' || content[start-1] == '\t') {
			start--
		}
		if start < cursor {
			start = cursor
		}
		builder.Write(content[cursor:start])
		cursor = removal.end
	}
	builder.Write(content[cursor:])
	return builder.String()
}

var _ Stripper = (*SyntaxStripper)(nil)
