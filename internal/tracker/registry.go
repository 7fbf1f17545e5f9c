package tracker

import (
	"sync"

	"sliver/internal/textedit"
	"sliver/internal/tokenizer"
)

// Registry maps document URIs to their trackers. Trackers are created
// lazily on the first toggle and removed the moment their tracked set
// becomes empty, so holding a tracker in the registry implies it has at
// least one position.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]*Tracker)}
}

// Toggle routes a toggle batch to the document's tracker, creating it on
// demand and dropping it again if the batch emptied it. It returns the
// offsets tracked afterwards (nil when the document has none) and whether
// the set changed.
func (r *Registry) Toggle(uri, text string, tok tokenizer.Tokenizer, rawOffsets []int) ([]int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[uri]
	if !ok {
		t = New(tok)
		r.trackers[uri] = t
	}

	changed := t.Toggle(text, rawOffsets)
	if t.Empty() {
		delete(r.trackers, uri)
		return nil, changed
	}
	return t.Offsets(), changed
}

// ApplyEdits remaps the document's tracked offsets, if any. Returns the
// surviving offsets (nil when none remain, in which case the tracker is
// gone) and whether a tracker existed at all.
func (r *Registry) ApplyEdits(uri, newText string, edits []textedit.Edit) ([]int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[uri]
	if !ok {
		return nil, false
	}

	t.ApplyEdits(newText, edits)
	if t.Empty() {
		delete(r.trackers, uri)
		return nil, true
	}
	return t.Offsets(), true
}

// Offsets returns the tracked offsets for uri, or nil.
func (r *Registry) Offsets(uri string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[uri]
	if !ok {
		return nil
	}
	return t.Offsets()
}

// Release drops the tracker for uri, used when the document closes.
func (r *Registry) Release(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, uri)
}

// ReleaseAll drops every tracker.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackers = make(map[string]*Tracker)
}
