// Package session manages the connection to the program-analysis backend.
// Two interchangeable variants exist: a subprocess spoken to over stdio
// pipes and a remote service spoken to over a TCP socket. Both carry the
// same JSON-RPC protocol and are consumed through the Session interface.
package session

import (
	"context"
	"errors"
)

// State is the lifecycle state of a session.
type State int

const (
	StateUninitialized State = iota
	StateStarting            // local process spawning / handshaking
	StateConnecting          // remote socket dialing / handshaking
	StateActive              // handshake done, accepting requests
	StateErrored             // establishment or transport failure
	StateClosed              // destroyed, terminal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateErrored:
		return "errored"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrNotActive is returned for slice and diagram requests issued against a
// session that is not in the active state.
var ErrNotActive = errors.New("session is not active")

// ErrAnalysis marks a per-request backend failure: the engine rejected the
// submitted code or positions. The session stays usable afterwards.
var ErrAnalysis = errors.New("backend analysis failed")

// Element is one code element that belongs to the slice, identified by the
// backend and located by a byte range in the submitted text.
type Element struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// SliceResult is the outcome of a slice request: the reconstructed code of
// the slice plus the elements that are part of it. Results are ephemeral;
// every relevant change recomputes them.
type SliceResult struct {
	Code     string    `json:"code"`
	Elements []Element `json:"elements"`
}

// Session is the capability shared by both backend variants. Initialize
// blocks until the handshake succeeds or the establishment timeout fires;
// run it off the event loop. Concurrent Slice calls are allowed and return
// independent results; coalescing stale ones is the coordinator's job.
// Close is idempotent and valid from every state.
type Session interface {
	Initialize(ctx context.Context) error
	Slice(ctx context.Context, offsets []int, text string) (SliceResult, error)
	Diagram(ctx context.Context, text string) (string, error)
	State() State
	Close() error
}

// StateListener observes session state transitions. Notifications are
// fire-and-forget and must not block.
type StateListener func(State)
