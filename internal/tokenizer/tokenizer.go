// Package tokenizer resolves raw cursor offsets to the byte range of the
// token under them. Tracked positions always point at token starts, so every
// offset entering the tracker passes through a Tokenizer first.
package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// Tokenizer maps an arbitrary byte offset to the range of the token
// containing it. ok is false when no token covers the offset.
type Tokenizer interface {
	TokenAt(text string, offset int) (start, end int, ok bool)
}

// Scanner is a grammar-free Tokenizer based on rune classes. Identifier
// runes are letters, digits, underscore and dot, which covers R-style names
// like `my.var` as well as conventional identifiers.
type Scanner struct{}

// NewScanner returns a ready-to-use Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// TokenAt walks left and right from offset across identifier runes. A cursor
// sitting immediately after the last rune of a token resolves to that token,
// matching the usual word-under-cursor behavior of editors.
func (s *Scanner) TokenAt(text string, offset int) (int, int, bool) {
	if offset < 0 || offset > len(text) {
		return 0, 0, false
	}

	onToken := false
	if offset < len(text) {
		r, _ := utf8.DecodeRuneInString(text[offset:])
		onToken = isIdentRune(r)
	}
	if !onToken {
		// Try the rune just before the cursor.
		r, size := utf8.DecodeLastRuneInString(text[:offset])
		if size == 0 || !isIdentRune(r) {
			return 0, 0, false
		}
		offset -= size
	}

	start := offset
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !isIdentRune(r) {
			break
		}
		start -= size
	}

	end := offset
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if !isIdentRune(r) {
			break
		}
		end += size
	}

	return start, end, true
}

// Normalize maps offset to the start of its enclosing token.
func Normalize(t Tokenizer, text string, offset int) (int, bool) {
	start, _, ok := t.TokenAt(text, offset)
	return start, ok
}
