package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sliver/internal/session"
)

// Custom notifications pushed to the client.
const (
	methodSliceUpdated = "sliver/sliceUpdated"
	methodDiagram      = "sliver/diagram"
	methodSessionState = "sliver/sessionState"
)

type sliceUpdatedParams struct {
	URI     string `json:"uri"`
	Code    string `json:"code"`
	Cleared bool   `json:"cleared"`
}

type diagramParams struct {
	URI     string `json:"uri"`
	Diagram string `json:"diagram"`
}

type sessionStateParams struct {
	State string `json:"state"`
}

// presenter implements the coordinator's presentation boundary on top of
// the LSP connection: slice membership as diagnostics, the rest as custom
// notifications. Everything here is fire-and-forget.
type presenter struct {
	server *Server
}

// SliceUpdated renders positions against the snapshot the slice was
// computed for, never the live document, which the handler goroutine may
// be rewriting concurrently.
func (p *presenter) SliceUpdated(uri, text string, res session.SliceResult) {
	severity := protocol.DiagnosticSeverityInformation
	diagnostics := make([]protocol.Diagnostic, 0, len(res.Elements))
	for _, el := range res.Elements {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: positionAt(text, el.Start),
				End:   positionAt(text, el.End),
			},
			Severity: &severity,
			Message:  "in slice: " + el.ID,
		})
	}

	p.server.notifyClient("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	p.server.notifyClient(methodSliceUpdated, sliceUpdatedParams{
		URI:  uri,
		Code: res.Code,
	})
}

func (p *presenter) SliceCleared(uri string) {
	p.server.notifyClient("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	p.server.notifyClient(methodSliceUpdated, sliceUpdatedParams{
		URI:     uri,
		Cleared: true,
	})
}

func (p *presenter) DiagramReady(uri, diagram string) {
	p.server.notifyClient(methodDiagram, diagramParams{
		URI:     uri,
		Diagram: diagram,
	})
}

func (p *presenter) SessionState(st session.State) {
	p.server.notifyClient(methodSessionState, sessionStateParams{
		State: st.String(),
	})
}

// positionAt converts a byte offset to an LSP line/character position.
func positionAt(text string, offset int) protocol.Position {
	if offset > len(text) {
		offset = len(text)
	}
	var pos protocol.Position
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			pos.Line++
			pos.Character = 0
		} else {
			pos.Character++
		}
	}
	return pos
}
