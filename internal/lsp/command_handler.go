package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	cmdToggle     = "sliver.toggle"
	cmdDiagram    = "sliver.diagram"
	cmdConnect    = "sliver.connect"
	cmdDisconnect = "sliver.disconnect"
)

type toggleArgs struct {
	URI     string `json:"uri"`
	Offsets []int  `json:"offsets"`
}

type diagramArgs struct {
	URI string `json:"uri"`
}

type connectArgs struct {
	Address string `json:"address"`
}

// decodeArg unpacks the first command argument through a JSON round-trip.
func decodeArg(arguments []any, v any) error {
	if len(arguments) == 0 {
		return fmt.Errorf("missing command argument")
	}
	data, err := json.Marshal(arguments[0])
	if err != nil {
		return fmt.Errorf("failed to marshal argument: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal argument: %w", err)
	}
	return nil
}

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	s.captureNotify(context)

	switch params.Command {
	case cmdToggle:
		var args toggleArgs
		if err := decodeArg(params.Arguments, &args); err != nil {
			return nil, err
		}
		return s.togglePositions(args)

	case cmdDiagram:
		var args diagramArgs
		if err := decodeArg(params.Arguments, &args); err != nil {
			return nil, err
		}
		doc, ok := s.getDocument(args.URI)
		if !ok {
			return nil, fmt.Errorf("document not open: %s", args.URI)
		}
		s.coord.Diagram(args.URI, doc.text)
		return nil, nil

	case cmdConnect:
		var args connectArgs
		if err := decodeArg(params.Arguments, &args); err != nil {
			return nil, err
		}
		s.coord.Connect(args.Address)
		return nil, nil

	case cmdDisconnect:
		s.coord.Disconnect()
		return nil, nil
	}

	return nil, fmt.Errorf("unknown command: %s", params.Command)
}

// togglePositions toggles a batch of raw offsets for a document and kicks
// off the resulting slice refresh.
func (s *Server) togglePositions(args toggleArgs) (any, error) {
	doc, ok := s.getDocument(args.URI)
	if !ok {
		return nil, fmt.Errorf("document not open: %s", args.URI)
	}

	offsets, changed := s.trackers.Toggle(args.URI, doc.text, doc.tok, args.Offsets)
	if changed {
		s.persist(args.URI, offsets)
		s.coord.Refresh(args.URI, offsets, doc.text)
	}
	return changed, nil
}
