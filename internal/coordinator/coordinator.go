// Package coordinator keeps the rendered slice of every document consistent
// with its current tracked positions and text, despite slice computation
// being asynchronous and racing with further edits.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"sliver/internal/scheduler"
	"sliver/internal/session"
)

// Presenter is the presentation boundary: fire-and-forget notifications
// with no return value. Implementations must not block. SliceUpdated
// carries the text snapshot the slice was computed against, so presenters
// never have to reach into live document state.
type Presenter interface {
	SliceUpdated(uri, text string, res session.SliceResult)
	SliceCleared(uri string)
	DiagramReady(uri string, diagram string)
	SessionState(st session.State)
}

// Config selects how sessions are established.
type Config struct {
	// LocalCommand spawns the default backend when no session exists.
	LocalCommand string
	LocalArgs    []string
	// Timeout bounds session establishment.
	Timeout time.Duration
}

// Coordinator serializes slice requests through a scheduler and discards
// results that newer requests have superseded. One instance serves all
// documents of the server.
type Coordinator struct {
	log       commonlog.Logger
	config    Config
	sessions  *session.Registry
	sched     *scheduler.Scheduler
	presenter Presenter

	mu  sync.Mutex
	seq map[string]uint64
}

// New wires a coordinator. The scheduler must already be running.
func New(config Config, sessions *session.Registry, sched *scheduler.Scheduler, presenter Presenter) *Coordinator {
	return &Coordinator{
		log:       commonlog.GetLogger("sliver.coordinator"),
		config:    config,
		sessions:  sessions,
		sched:     sched,
		presenter: presenter,
	}
}

func (c *Coordinator) ensureSeq() {
	if c.seq == nil {
		c.seq = make(map[string]uint64)
	}
}

// nextSeq issues the next request sequence number for uri.
func (c *Coordinator) nextSeq(uri string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureSeq()
	c.seq[uri]++
	return c.seq[uri]
}

func (c *Coordinator) isLatest(uri string, seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureSeq()
	return c.seq[uri] == seq
}

// localFactory builds the default backend session.
func (c *Coordinator) localFactory() session.Session {
	return session.NewLocal(c.config.LocalCommand, c.config.LocalArgs, c.presenter.SessionState, c.config.Timeout)
}

// Refresh must be called after every tracked-position or text change. The
// bookkeeping here is synchronous; the backend round-trip happens on the
// scheduler. An empty offset set clears the rendered slice immediately and
// skips the backend entirely.
func (c *Coordinator) Refresh(uri string, offsets []int, text string) {
	seq := c.nextSeq(uri)

	if len(offsets) == 0 {
		c.presenter.SliceCleared(uri)
		return
	}

	snapshot := make([]int, len(offsets))
	copy(snapshot, offsets)

	c.sched.Submit(scheduler.Task{
		Name: fmt.Sprintf("slice %s #%d", uri, seq),
		Execute: func() {
			c.runSlice(uri, seq, snapshot, text)
		},
	})
}

func (c *Coordinator) runSlice(uri string, seq uint64, offsets []int, text string) {
	s, err := c.sessions.Ensure(context.Background(), c.localFactory)
	if err != nil {
		c.log.Errorf("session establishment failed: %v", err)
		return
	}

	res, err := s.Slice(context.Background(), offsets, text)

	// A newer request supersedes this one, and a replaced session makes
	// its responses meaningless regardless of sequence numbers.
	if !c.isLatest(uri, seq) || c.sessions.Current() != s {
		c.log.Debugf("discarding stale slice response for %s (#%d)", uri, seq)
		return
	}

	switch {
	case errors.Is(err, session.ErrAnalysis):
		// The backend rejected this snapshot; render no slice and keep
		// going, the next change retries naturally.
		c.log.Infof("analysis failed for %s: %v", uri, err)
		c.presenter.SliceCleared(uri)
	case err != nil:
		c.log.Errorf("slice request failed for %s: %v", uri, err)
	case len(res.Elements) == 0:
		c.presenter.SliceCleared(uri)
	default:
		c.presenter.SliceUpdated(uri, text, res)
	}
}

// Diagram requests a dataflow diagram for the document snapshot.
func (c *Coordinator) Diagram(uri, text string) {
	c.sched.Submit(scheduler.Task{
		Name: fmt.Sprintf("diagram %s", uri),
		Execute: func() {
			s, err := c.sessions.Ensure(context.Background(), c.localFactory)
			if err != nil {
				c.log.Errorf("session establishment failed: %v", err)
				return
			}
			diagram, err := s.Diagram(context.Background(), text)
			if err != nil {
				c.log.Errorf("diagram request failed for %s: %v", uri, err)
				return
			}
			c.presenter.DiagramReady(uri, diagram)
		},
	})
}

// Connect replaces the active session with a remote one. Establishment is
// asynchronous; the outcome is observable through SessionState.
func (c *Coordinator) Connect(address string) {
	c.sched.Submit(scheduler.Task{
		Name: fmt.Sprintf("connect %s", address),
		Execute: func() {
			s := session.NewRemote(address, c.presenter.SessionState, c.config.Timeout)
			c.sessions.Replace(s)
			if err := s.Initialize(context.Background()); err != nil {
				c.log.Errorf("failed to connect to %s: %v", address, err)
			}
		},
	})
}

// Disconnect tears the active session down.
func (c *Coordinator) Disconnect() {
	c.sessions.Drop()
}
