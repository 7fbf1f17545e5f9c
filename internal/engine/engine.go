// Package engine is a reference implementation of the slicing backend
// protocol: a JSON-RPC service answering handshake, slice and diagram
// requests. It performs a deliberately small def-use analysis over
// assignment-style code, enough to develop and test the client against
// without a full analysis engine.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"sliver/internal/session"
)

// Versions reported during the handshake.
const (
	EngineVersion  = "2.1.0"
	RuntimeVersion = "go1.23"
)

// Service implements the Slicer RPC service.
type Service struct{}

// Handshake reports the engine and runtime versions.
func (s *Service) Handshake(args session.HandshakeArgs, reply *session.HandshakeReply) error {
	reply.EngineVersion = EngineVersion
	reply.RuntimeVersion = RuntimeVersion
	return nil
}

// Slice computes the statements relevant to the requested offsets: the
// backward def-use closure of each criterion plus the direct users of the
// criterion variable.
func (s *Service) Slice(args session.SliceArgs, reply *session.SliceReply) error {
	if strings.TrimSpace(args.Text) == "" {
		return errors.New("nothing to analyze")
	}
	if len(args.Offsets) == 0 {
		return errors.New("no slicing criteria")
	}

	stmts := parse(args.Text)
	included := make(map[int]struct{})

	for _, offset := range args.Offsets {
		idx := stmtAt(stmts, offset)
		if idx < 0 {
			return fmt.Errorf("offset %d is outside the program", offset)
		}
		criterion := identAt(args.Text, offset)

		// Backward closure from the criterion statement.
		worklist := append([]string(nil), stmts[idx].deps...)
		included[idx] = struct{}{}
		for len(worklist) > 0 {
			name := worklist[0]
			worklist = worklist[1:]
			for i, st := range stmts {
				if st.def == name {
					if _, ok := included[i]; !ok {
						included[i] = struct{}{}
						worklist = append(worklist, st.deps...)
					}
				}
			}
		}

		// Direct users of the criterion variable.
		if criterion != "" {
			for i, st := range stmts {
				for _, dep := range st.deps {
					if dep == criterion {
						included[i] = struct{}{}
					}
				}
			}
		}
	}

	order := make([]int, 0, len(included))
	for i := range included {
		order = append(order, i)
	}
	sort.Ints(order)

	var code []string
	for _, i := range order {
		st := stmts[i]
		code = append(code, st.text)
		reply.Elements = append(reply.Elements, session.Element{
			ID:    st.id(),
			Start: st.start,
			End:   st.end,
		})
	}
	reply.Code = strings.Join(code, "\n")
	return nil
}

// Diagram renders the def-use graph as DOT text.
func (s *Service) Diagram(args session.DiagramArgs, reply *session.DiagramReply) error {
	if strings.TrimSpace(args.Text) == "" {
		return errors.New("nothing to analyze")
	}

	var b strings.Builder
	b.WriteString("digraph dataflow {\n")
	for _, st := range parse(args.Text) {
		if st.def == "" {
			continue
		}
		for _, dep := range st.deps {
			fmt.Fprintf(&b, "  %s -> %s\n", st.def, dep)
		}
	}
	b.WriteString("}\n")
	reply.Diagram = b.String()
	return nil
}

// stmt is one analyzed line: an optional defined variable and the
// identifiers its right-hand side (or whole line) references.
type stmt struct {
	text       string
	start, end int
	def        string
	deps       []string
}

func (s stmt) id() string {
	if s.def != "" {
		return s.def
	}
	if len(s.deps) > 0 {
		return s.deps[0]
	}
	return fmt.Sprintf("stmt@%d", s.start)
}

func parse(text string) []stmt {
	var stmts []stmt
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		st := stmt{text: line, start: offset, end: offset + len(line)}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lhs, rhs, found := strings.Cut(line, "<-")
			if !found {
				lhs, rhs, found = strings.Cut(line, "=")
			}
			if found && len(idents(lhs)) == 1 {
				st.def = idents(lhs)[0]
				st.deps = idents(rhs)
			} else {
				st.deps = idents(line)
			}
			stmts = append(stmts, st)
		}
		offset += len(line) + 1
	}
	return stmts
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// idents extracts identifier-looking tokens that do not start with a digit.
func idents(s string) []string {
	var out []string
	var current strings.Builder
	flush := func() {
		tok := current.String()
		current.Reset()
		if tok == "" {
			return
		}
		if r := rune(tok[0]); unicode.IsDigit(r) {
			return
		}
		out = append(out, tok)
	}
	for _, r := range s {
		if isIdentRune(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

func stmtAt(stmts []stmt, offset int) int {
	for i, st := range stmts {
		if offset >= st.start && offset <= st.end {
			return i
		}
	}
	return -1
}

// identAt returns the identifier covering offset, or "".
func identAt(text string, offset int) string {
	if offset < 0 || offset >= len(text) {
		return ""
	}
	if !isIdentRune(rune(text[offset])) {
		return ""
	}
	start := offset
	for start > 0 && isIdentRune(rune(text[start-1])) {
		start--
	}
	end := offset
	for end < len(text) && isIdentRune(rune(text[end])) {
		end++
	}
	tok := text[start:end]
	if unicode.IsDigit(rune(tok[0])) {
		return ""
	}
	return tok
}
