// Package textedit models contiguous text replacements and the effect they
// have on byte offsets into the edited document.
package textedit

// Edit is one contiguous replacement: the bytes in
// [Start, Start+ReplacedLen) are replaced by NewText.
type Edit struct {
	Start       int
	ReplacedLen int
	NewText     string
}

// NewLen returns the byte length of the replacement text.
func (e Edit) NewLen() int {
	return len(e.NewText)
}

// Shift maps offset through a single edit. The returned bool is false when
// the edit consumed the offset, in which case the offset is no longer
// meaningful and must be dropped.
//
// An offset strictly inside the replaced range (including its start) is
// consumed. An offset exactly at the end of the replaced range survives: it
// sits just after the edit and shifts with the tail of the document.
func Shift(offset int, e Edit) (int, bool) {
	if e.Start > offset {
		return offset, true
	}
	if e.Start+e.ReplacedLen > offset {
		return 0, false
	}
	return offset + e.NewLen() - e.ReplacedLen, true
}

// ShiftAll applies edits to offset in order. Each edit sees the offset
// produced by the previous one; the first consuming edit short-circuits.
func ShiftAll(offset int, edits []Edit) (int, bool) {
	for _, e := range edits {
		var ok bool
		offset, ok = Shift(offset, e)
		if !ok {
			return 0, false
		}
	}
	return offset, true
}

// Apply splices a single edit into text. Out-of-range edits are clamped to
// the document bounds rather than rejected, matching editor behavior.
func Apply(text string, e Edit) string {
	start := e.Start
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		start = len(text)
	}
	end := start + e.ReplacedLen
	if end > len(text) {
		end = len(text)
	}
	return text[:start] + e.NewText + text[end:]
}

// ApplyAll splices edits into text in order.
func ApplyAll(text string, edits []Edit) string {
	for _, e := range edits {
		text = Apply(text, e)
	}
	return text
}
