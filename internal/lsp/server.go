// Package lsp is the editor boundary: it receives document lifecycle and
// change notifications, routes commands, and pushes slice results back to
// the client as diagnostics and custom notifications.
package lsp

import (
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"sliver/internal/coordinator"
	"sliver/internal/scheduler"
	"sliver/internal/session"
	"sliver/internal/store"
	"sliver/internal/tokenizer"
	"sliver/internal/tracker"
)

const lsName = "sliver"

var version = "0.3.0"

// document is the server-side copy of an open document.
type document struct {
	text string
	tok  tokenizer.Tokenizer
}

// Server glues the core subsystems to the LSP transport.
type Server struct {
	log     commonlog.Logger
	handler *protocol.Handler
	config  Config

	mu   sync.Mutex
	docs map[string]*document
	// notify is captured from the most recent request context so that
	// asynchronous results can be pushed to the client.
	notify func(method string, params any)

	trackers  *tracker.Registry
	sessions  *session.Registry
	sched     *scheduler.Scheduler
	coord     *coordinator.Coordinator
	positions *store.Store
}

// NewServer builds the LSP server around overrides, which carry settings
// known before the client's initializationOptions arrive (flags).
func NewServer(overrides Config) (*glspserver.Server, error) {
	s := newServer(overrides)
	return glspserver.NewServer(s.handler, lsName, false), nil
}

func newServer(overrides Config) *Server {
	s := &Server{
		log:      commonlog.GetLogger("sliver.lsp"),
		config:   overrides,
		docs:     make(map[string]*document),
		trackers: tracker.NewRegistry(),
		sessions: session.NewRegistry(),
		sched:    scheduler.New(64),
	}

	s.handler = &protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		TextDocumentDidOpen:     s.textDocumentDidOpen,
		TextDocumentDidChange:   s.textDocumentDidChange,
		TextDocumentDidSave:     s.textDocumentDidSave,
		TextDocumentDidClose:    s.textDocumentDidClose,
		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
		Shutdown:                s.shutdown,
	}

	return s
}

func (s *Server) timeout() time.Duration {
	return time.Duration(s.config.TimeoutSeconds) * time.Second
}

// captureNotify remembers the connection's notify function for async use.
func (s *Server) captureNotify(context *glsp.Context) {
	if context == nil {
		return
	}
	s.mu.Lock()
	s.notify = context.Notify
	s.mu.Unlock()
}

func (s *Server) notifyClient(method string, params any) {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(method, params)
	}
}

func (s *Server) getDocument(uri string) (*document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *Server) setDocument(uri string, doc *document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = doc
}

func (s *Server) dropDocument(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}
