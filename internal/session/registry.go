package session

import (
	"context"
	"sync"
)

// Factory produces a not-yet-initialized session, used for lazy
// establishment of the default backend.
type Factory func() Session

// Registry holds the single live session of the process. Only the registry
// creates or destroys sessions; consumers look the current one up per
// request and must tolerate it being replaced between issuing a request
// and receiving its response.
type Registry struct {
	mu      sync.Mutex
	current Session
}

// NewRegistry returns a registry with no session.
func NewRegistry() *Registry {
	return &Registry{}
}

// Current returns the live session, or nil.
func (r *Registry) Current() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Replace installs s as the live session, closing the previous one. A nil
// s just tears the old session down.
func (r *Registry) Replace(s Session) {
	r.mu.Lock()
	old := r.current
	r.current = s
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Drop closes and removes the live session.
func (r *Registry) Drop() {
	r.Replace(nil)
}

// Ensure returns the current session if it is active, otherwise builds one
// through factory and initializes it. A failed establishment leaves the
// errored session installed so its state stays observable, and returns the
// error.
func (r *Registry) Ensure(ctx context.Context, factory Factory) (Session, error) {
	r.mu.Lock()
	if r.current != nil && r.current.State() == StateActive {
		s := r.current
		r.mu.Unlock()
		return s, nil
	}
	old := r.current
	s := factory()
	r.current = s
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}

	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
