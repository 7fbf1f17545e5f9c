package textedit_test

import (
	"strings"
	"testing"

	"sliver/internal/textedit"
)

func TestShift(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		edit   textedit.Edit
		want   int
		ok     bool
	}{
		{
			name:   "edit after offset",
			offset: 4,
			edit:   textedit.Edit{Start: 10, ReplacedLen: 3, NewText: "xyz"},
			want:   4,
			ok:     true,
		},
		{
			name:   "insertion before offset shifts right",
			offset: 10,
			edit:   textedit.Edit{Start: 0, ReplacedLen: 0, NewText: "x <- 2\n"},
			want:   17,
			ok:     true,
		},
		{
			name:   "deletion before offset shifts left",
			offset: 20,
			edit:   textedit.Edit{Start: 2, ReplacedLen: 5, NewText: ""},
			want:   15,
			ok:     true,
		},
		{
			name:   "offset inside replaced range is consumed",
			offset: 8,
			edit:   textedit.Edit{Start: 5, ReplacedLen: 7, NewText: ""},
			ok:     false,
		},
		{
			name:   "offset at replaced start is consumed",
			offset: 5,
			edit:   textedit.Edit{Start: 5, ReplacedLen: 2, NewText: "ab"},
			ok:     false,
		},
		{
			name:   "offset at replaced end survives",
			offset: 7,
			edit:   textedit.Edit{Start: 5, ReplacedLen: 2, NewText: "abcd"},
			want:   9,
			ok:     true,
		},
		{
			name:   "replacement same length keeps offset",
			offset: 9,
			edit:   textedit.Edit{Start: 2, ReplacedLen: 3, NewText: "xyz"},
			want:   9,
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := textedit.Shift(tt.offset, tt.edit)
			if ok != tt.ok {
				t.Fatalf("Shift ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Shift = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShiftAllShortCircuits(t *testing.T) {
	edits := []textedit.Edit{
		{Start: 0, ReplacedLen: 0, NewText: "aa"},  // offset 5 -> 7
		{Start: 6, ReplacedLen: 3, NewText: ""},    // consumes 7
		{Start: 0, ReplacedLen: 100, NewText: "z"}, // never reached for this offset
	}
	if _, ok := textedit.ShiftAll(5, edits); ok {
		t.Fatal("expected offset to be consumed by the second edit")
	}
}

// Shifting an offset through non-consuming edits must agree with re-finding
// the same logical character in the spliced text.
func TestShiftMatchesSplice(t *testing.T) {
	text := "a <- 1\nb <- a + 1\nprint(b)"
	offset := strings.Index(text, "print")

	edits := []textedit.Edit{
		{Start: 0, ReplacedLen: 0, NewText: "x <- 2\n"},
		{Start: 7, ReplacedLen: 6, NewText: "a <- 42"},
		{Start: 30, ReplacedLen: 0, NewText: "  "},
	}

	for _, e := range edits {
		shifted, ok := textedit.Shift(offset, e)
		if !ok {
			t.Fatalf("offset unexpectedly consumed by %+v", e)
		}
		text = textedit.Apply(text, e)
		if got := strings.Index(text, "print"); got != shifted {
			t.Fatalf("after %+v: Shift = %d but scan finds %d", e, shifted, got)
		}
		offset = shifted
	}
}

func TestApplyClampsOutOfRange(t *testing.T) {
	got := textedit.Apply("abc", textedit.Edit{Start: 2, ReplacedLen: 10, NewText: "Z"})
	if got != "abZ" {
		t.Errorf("Apply = %q, want %q", got, "abZ")
	}
}

func TestApplyAll(t *testing.T) {
	text := "a <- 1\n"
	got := textedit.ApplyAll(text, []textedit.Edit{
		{Start: 7, ReplacedLen: 0, NewText: "b <- a\n"},
		{Start: 0, ReplacedLen: 1, NewText: "aa"},
	})
	if got != "aa <- 1\nb <- a\n" {
		t.Errorf("ApplyAll = %q", got)
	}
}
