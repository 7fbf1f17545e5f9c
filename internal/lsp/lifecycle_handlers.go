package lsp

import (
	"os"
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sliver/internal/coordinator"
	"sliver/internal/store"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	s.captureNotify(context)

	cfg, err := LoadConfig(params.InitializationOptions)
	if err != nil {
		return nil, err
	}
	// Flag overrides win over client options.
	if s.config.LocalCommand != "" {
		cfg.LocalCommand = s.config.LocalCommand
	}
	if s.config.StatePath != "" {
		cfg.StatePath = s.config.StatePath
	}
	if s.config.RemoteAddress != "" {
		cfg.RemoteAddress = s.config.RemoteAddress
	}
	s.config = cfg

	// Persistence is a convenience; run without it.
	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0755); err != nil {
		s.log.Warningf("position store unavailable: %v", err)
	} else if s.positions, err = store.Open(cfg.StatePath); err != nil {
		s.log.Warningf("position store unavailable: %v", err)
	}

	s.sched.Run()
	s.coord = coordinator.New(coordinator.Config{
		LocalCommand: cfg.LocalCommand,
		LocalArgs:    cfg.LocalArgs,
		Timeout:      s.timeout(),
	}, s.sessions, s.sched, &presenter{server: s})

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{cmdToggle, cmdDiagram, cmdConnect, cmdDisconnect},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	s.captureNotify(context)
	s.log.Info("server initialized")

	if s.config.RemoteAddress != "" {
		s.coord.Connect(s.config.RemoteAddress)
	}
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	s.log.Info("server shutting down")

	s.sched.Stop()
	s.sessions.Drop()
	s.trackers.ReleaseAll()
	if s.positions != nil {
		s.positions.Close()
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}
