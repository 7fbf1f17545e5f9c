package tracker_test

import (
	"reflect"
	"testing"

	"sliver/internal/textedit"
	"sliver/internal/tokenizer"
	"sliver/internal/tracker"
)

const doc = "a <- 1\nb <- a + 1\nprint(b)"

// Offsets in doc: a=0, b=7, a(use)=12, print=18, b(use)=24.

func newTracker() *tracker.Tracker {
	return tracker.New(tokenizer.NewScanner())
}

func TestToggleAddsNormalized(t *testing.T) {
	tr := newTracker()

	// Raw offsets in the middle of tokens normalize to token starts.
	if !tr.Toggle(doc, []int{20, 7}) {
		t.Fatal("expected toggle to change the set")
	}
	if got := tr.Offsets(); !reflect.DeepEqual(got, []int{7, 18}) {
		t.Errorf("Offsets = %v, want [7 18]", got)
	}
}

func TestTogglePairRestoresOriginalSet(t *testing.T) {
	tr := newTracker()

	tr.Toggle(doc, []int{0, 7})
	before := tr.Offsets()

	tr.Toggle(doc, []int{18})
	tr.Toggle(doc, []int{18})

	if got := tr.Offsets(); !reflect.DeepEqual(got, before) {
		t.Errorf("Offsets = %v, want %v after toggle pair", got, before)
	}
}

func TestToggleMixedBatchIsBulkAdd(t *testing.T) {
	tr := newTracker()
	tr.Toggle(doc, []int{0})

	// One tracked (0), one not (18): must add, never remove.
	if !tr.Toggle(doc, []int{0, 18}) {
		t.Fatal("expected change")
	}
	if got := tr.Offsets(); !reflect.DeepEqual(got, []int{0, 18}) {
		t.Errorf("Offsets = %v, want [0 18]", got)
	}
}

func TestToggleAllTrackedIsBulkRemove(t *testing.T) {
	tr := newTracker()
	tr.Toggle(doc, []int{0, 18})

	if !tr.Toggle(doc, []int{0, 18}) {
		t.Fatal("expected change")
	}
	if !tr.Empty() {
		t.Errorf("Offsets = %v, want empty set", tr.Offsets())
	}
}

func TestToggleDropsUnnormalizable(t *testing.T) {
	tr := newTracker()

	// Offset 4 is the gap before the literal; nothing to track there.
	if tr.Toggle(doc, []int{4}) {
		t.Error("expected no change for unnormalizable batch")
	}
	if !tr.Empty() {
		t.Errorf("Offsets = %v, want empty", tr.Offsets())
	}
}

func TestToggleNeverDuplicates(t *testing.T) {
	tr := newTracker()
	// Several raw offsets inside the same token collapse to one entry.
	tr.Toggle(doc, []int{18, 19, 20})
	if got := tr.Offsets(); !reflect.DeepEqual(got, []int{18}) {
		t.Errorf("Offsets = %v, want [18]", got)
	}
}

func TestApplyEditsShiftsOffsets(t *testing.T) {
	tr := newTracker()
	tr.Toggle(doc, []int{7}) // b definition

	edit := textedit.Edit{Start: 0, ReplacedLen: 0, NewText: "x <- 2\n"}
	newText := textedit.Apply(doc, edit)
	tr.ApplyEdits(newText, []textedit.Edit{edit})

	if got := tr.Offsets(); !reflect.DeepEqual(got, []int{14}) {
		t.Errorf("Offsets = %v, want [14]", got)
	}
}

func TestApplyEditsDropsConsumedOffset(t *testing.T) {
	tr := newTracker()
	tr.Toggle(doc, []int{0, 7, 18})

	// Delete [5,12): consumes the b definition at 7, nothing else.
	edit := textedit.Edit{Start: 5, ReplacedLen: 7, NewText: ""}
	newText := textedit.Apply(doc, edit)
	tr.ApplyEdits(newText, []textedit.Edit{edit})

	if got := tr.Offsets(); !reflect.DeepEqual(got, []int{0, 11}) {
		t.Errorf("Offsets = %v, want [0 11]", got)
	}
}

func TestApplyEditsRenormalizesAndDedupes(t *testing.T) {
	tr := newTracker()
	tr.Toggle(doc, []int{18}) // print

	// Insert `pre` directly before `print`: 18 now points mid-token
	// (`preprint`) and must renormalize back to the token start.
	edit := textedit.Edit{Start: 18, ReplacedLen: 0, NewText: "pre"}
	newText := textedit.Apply(doc, edit)
	tr.ApplyEdits(newText, []textedit.Edit{edit})

	// Offset 18 survives the edit (it sits at the replaced range's end and
	// the insertion happens before it)... shifted to 21, then renormalized
	// to the merged token start 18.
	if got := tr.Offsets(); !reflect.DeepEqual(got, []int{18}) {
		t.Errorf("Offsets = %v, want [18]", got)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg := tracker.NewRegistry()
	tok := tokenizer.NewScanner()

	offsets, changed := reg.Toggle("file:///a.R", doc, tok, []int{7})
	if !changed || !reflect.DeepEqual(offsets, []int{7}) {
		t.Fatalf("Toggle = %v changed=%v", offsets, changed)
	}

	// Toggling the same position off empties and removes the tracker.
	offsets, changed = reg.Toggle("file:///a.R", doc, tok, []int{7})
	if !changed || offsets != nil {
		t.Fatalf("Toggle off = %v changed=%v, want nil true", offsets, changed)
	}
	if got := reg.Offsets("file:///a.R"); got != nil {
		t.Errorf("Offsets after empty = %v, want nil", got)
	}

	// ApplyEdits on a document without a tracker reports absence.
	if _, ok := reg.ApplyEdits("file:///a.R", doc, nil); ok {
		t.Error("expected no tracker after self-destruct")
	}
}

func TestRegistryApplyEditsSelfDestructsOnEmpty(t *testing.T) {
	reg := tracker.NewRegistry()
	tok := tokenizer.NewScanner()

	reg.Toggle("file:///a.R", doc, tok, []int{7})

	edit := textedit.Edit{Start: 5, ReplacedLen: 7, NewText: ""}
	newText := textedit.Apply(doc, edit)
	offsets, existed := reg.ApplyEdits("file:///a.R", newText, []textedit.Edit{edit})
	if !existed || offsets != nil {
		t.Fatalf("ApplyEdits = %v existed=%v, want nil true", offsets, existed)
	}
	if reg.Offsets("file:///a.R") != nil {
		t.Error("tracker should be gone once emptied")
	}
}
