package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"sliver/internal/textedit"
	"sliver/internal/tokenizer"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	s.captureNotify(context)

	uri := params.TextDocument.URI
	doc := &document{
		text: params.TextDocument.Text,
		tok:  tokenizer.ForLanguageID(params.TextDocument.LanguageID),
	}
	s.setDocument(uri, doc)

	// Restore the selections the user had when the document closed last.
	if s.positions != nil {
		saved, err := s.positions.Load(uri)
		if err != nil {
			s.log.Warningf("failed to load positions for %s: %v", uri, err)
		} else if len(saved) > 0 {
			offsets, changed := s.trackers.Toggle(uri, doc.text, doc.tok, saved)
			if changed && len(offsets) > 0 {
				s.coord.Refresh(uri, offsets, doc.text)
			}
		}
	}

	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	s.captureNotify(context)

	uri := params.TextDocument.URI
	doc, ok := s.getDocument(uri)
	if !ok {
		return fmt.Errorf("document not open: %s", uri)
	}

	// Convert the ordered change events to byte edits against the
	// evolving text, splicing as we go so later ranges resolve correctly.
	text := doc.text
	var edits []textedit.Edit
	for _, raw := range params.ContentChanges {
		var edit textedit.Edit
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			edit = textedit.Edit{Start: 0, ReplacedLen: len(text), NewText: change.Text}
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				edit = textedit.Edit{Start: 0, ReplacedLen: len(text), NewText: change.Text}
			} else {
				start := change.Range.Start.IndexIn(text)
				end := change.Range.End.IndexIn(text)
				edit = textedit.Edit{Start: start, ReplacedLen: end - start, NewText: change.Text}
			}
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
		text = textedit.Apply(text, edit)
		edits = append(edits, edit)
	}

	s.mu.Lock()
	doc.text = text
	s.mu.Unlock()

	// Remap tracked offsets before any new slice request is issued, so no
	// request ever sees offsets predating this change.
	offsets, existed := s.trackers.ApplyEdits(uri, text, edits)
	if !existed {
		return nil
	}
	s.persist(uri, offsets)
	s.coord.Refresh(uri, offsets, text)
	return nil
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	s.captureNotify(context)

	// Nothing to recompute: saves do not change text beyond what didChange
	// already delivered. When the client includes the full text anyway,
	// use it to resync.
	if params.Text == nil {
		return nil
	}

	uri := params.TextDocument.URI
	doc, ok := s.getDocument(uri)
	if !ok || doc.text == *params.Text {
		return nil
	}

	edit := textedit.Edit{Start: 0, ReplacedLen: len(doc.text), NewText: *params.Text}

	s.mu.Lock()
	doc.text = *params.Text
	s.mu.Unlock()

	offsets, existed := s.trackers.ApplyEdits(uri, doc.text, []textedit.Edit{edit})
	if existed {
		s.persist(uri, offsets)
		s.coord.Refresh(uri, offsets, doc.text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.captureNotify(context)

	uri := params.TextDocument.URI
	s.persist(uri, s.trackers.Offsets(uri))
	s.trackers.Release(uri)
	s.dropDocument(uri)
	return nil
}

// persist mirrors the tracked offsets for uri into the position store.
func (s *Server) persist(uri string, offsets []int) {
	if s.positions == nil {
		return
	}
	var err error
	if len(offsets) == 0 {
		err = s.positions.Forget(uri)
	} else {
		err = s.positions.Save(uri, offsets)
	}
	if err != nil {
		s.log.Warningf("failed to persist positions for %s: %v", uri, err)
	}
}
