// Package tracker keeps the set of user-selected slicing positions for a
// document valid while the document is edited.
package tracker

import (
	"sort"

	"sliver/internal/textedit"
	"sliver/internal/tokenizer"
)

// Tracker owns the tracked offsets of exactly one document. All offsets are
// byte offsets pointing at the start of a token; normalization happens on
// the way in, never on read.
//
// Tracker is not safe for concurrent use; the Registry serializes access.
type Tracker struct {
	tok     tokenizer.Tokenizer
	offsets map[int]struct{}
}

// New creates an empty tracker normalizing through tok.
func New(tok tokenizer.Tokenizer) *Tracker {
	return &Tracker{
		tok:     tok,
		offsets: make(map[int]struct{}),
	}
}

// Toggle normalizes rawOffsets against text and toggles them as one batch.
// Offsets that do not resolve to a token are dropped. If every normalized
// offset is already tracked the whole batch is removed, otherwise the
// missing ones are added; a batch never mixes additions and removals.
// The return value reports whether the tracked set changed.
func (t *Tracker) Toggle(text string, rawOffsets []int) bool {
	normalized := make(map[int]struct{})
	for _, raw := range rawOffsets {
		if start, ok := tokenizer.Normalize(t.tok, text, raw); ok {
			normalized[start] = struct{}{}
		}
	}
	if len(normalized) == 0 {
		return false
	}

	allTracked := true
	for off := range normalized {
		if _, ok := t.offsets[off]; !ok {
			allTracked = false
			break
		}
	}

	if allTracked {
		for off := range normalized {
			delete(t.offsets, off)
		}
		return true
	}

	changed := false
	for off := range normalized {
		if _, ok := t.offsets[off]; !ok {
			t.offsets[off] = struct{}{}
			changed = true
		}
	}
	return changed
}

// ApplyEdits remaps every tracked offset through edits in order, drops the
// ones an edit consumed, and re-normalizes survivors against newText (an
// edit can shift an offset off its token start). Runs synchronously so no
// slice request ever observes offsets predating the edit they follow.
func (t *Tracker) ApplyEdits(newText string, edits []textedit.Edit) {
	remapped := make(map[int]struct{}, len(t.offsets))
	for off := range t.offsets {
		shifted, ok := textedit.ShiftAll(off, edits)
		if !ok {
			continue
		}
		if start, ok := tokenizer.Normalize(t.tok, newText, shifted); ok {
			remapped[start] = struct{}{}
		}
	}
	t.offsets = remapped
}

// Offsets returns the tracked offsets in ascending order.
func (t *Tracker) Offsets() []int {
	out := make([]int, 0, len(t.offsets))
	for off := range t.offsets {
		out = append(out, off)
	}
	sort.Ints(out)
	return out
}

// Empty reports whether nothing is tracked. An empty tracker is a terminal
// condition: the registry drops it and callers must treat it as gone.
func (t *Tracker) Empty() bool {
	return len(t.offsets) == 0
}
