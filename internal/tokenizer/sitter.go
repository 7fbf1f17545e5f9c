package tokenizer

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
)

// TreeSitter resolves token boundaries through a tree-sitter grammar: the
// token at an offset is the smallest named leaf containing it. Unlike
// Scanner it understands string literals, comments and operators, so offsets
// inside those do not normalize to identifiers.
type TreeSitter struct {
	parser *sitter.Parser
	lang   *sitter.Language
}

// NewTreeSitter returns a Tokenizer backed by the given grammar.
func NewTreeSitter(lang *sitter.Language) *TreeSitter {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return &TreeSitter{parser: parser, lang: lang}
}

// Close releases the underlying parser.
func (ts *TreeSitter) Close() {
	if ts.parser != nil {
		ts.parser.Close()
	}
}

// TokenAt parses text and returns the byte range of the named leaf at
// offset. Offsets on unnamed punctuation or outside the tree yield ok=false.
func (ts *TreeSitter) TokenAt(text string, offset int) (int, int, bool) {
	if offset < 0 || offset > len(text) {
		return 0, 0, false
	}

	content := []byte(text)
	tree, err := ts.parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return 0, 0, false
	}
	defer tree.Close()

	point := offsetToPoint(content, offset)
	node := tree.RootNode().NamedDescendantForPointRange(point, point)
	if node == nil || node.ChildCount() > 0 {
		return 0, 0, false
	}

	start := int(node.StartByte())
	end := int(node.EndByte())
	if start >= end || end > len(text) {
		return 0, 0, false
	}
	return start, end, true
}

// offsetToPoint converts a byte offset to a tree-sitter row/column point.
func offsetToPoint(content []byte, offset int) sitter.Point {
	var point sitter.Point
	for i := 0; i < offset && i < len(content); i++ {
		if content[i] == '\n' {
			point.Row++
			point.Column = 0
		} else {
			point.Column++
		}
	}
	return point
}

// ForLanguageID picks a Tokenizer for an LSP language identifier. Languages
// without a bundled grammar fall back to the rune-class Scanner.
func ForLanguageID(id string) Tokenizer {
	switch id {
	case "python":
		return NewTreeSitter(python.GetLanguage())
	case "ruby":
		return NewTreeSitter(ruby.GetLanguage())
	default:
		return NewScanner()
	}
}
