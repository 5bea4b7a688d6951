//go:build !cgo

package comments

// NewSyntaxStripper returns nil when cgo is unavailable because the tree-sitter
// grammars cannot be built. Callers fall back to pattern stripping.
func NewSyntaxStripper(fallback Stripper) Stripper {
	return nil
}
