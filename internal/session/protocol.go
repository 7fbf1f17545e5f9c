package session

import (
	"strconv"
	"strings"
)

// The backend exposes one JSON-RPC service regardless of transport.
const (
	methodHandshake = "Slicer.Handshake"
	methodSlice     = "Slicer.Slice"
	methodDiagram   = "Slicer.Diagram"
)

// MinEngineVersion is the engine version the client was written against.
// Older engines trigger a logged warning, not a failure.
const MinEngineVersion = "2.0.0"

// HandshakeArgs identifies the client to the backend.
type HandshakeArgs struct {
	ClientVersion string `json:"clientVersion"`
}

// HandshakeReply carries the backend's version report.
type HandshakeReply struct {
	EngineVersion  string `json:"engineVersion"`
	RuntimeVersion string `json:"runtimeVersion"`
}

// SliceArgs is a slice request: tracked offsets plus a full snapshot of the
// document text they refer to.
type SliceArgs struct {
	Offsets []int  `json:"offsets"`
	Text    string `json:"text"`
}

// SliceReply mirrors SliceResult on the wire.
type SliceReply struct {
	Code     string    `json:"code"`
	Elements []Element `json:"elements"`
}

// DiagramArgs requests a dataflow diagram for a document snapshot.
type DiagramArgs struct {
	Text string `json:"text"`
}

// DiagramReply carries a textual graph description.
type DiagramReply struct {
	Diagram string `json:"diagram"`
}

// versionBefore compares two dotted numeric versions, returning true when a
// orders strictly before b. Non-numeric segments compare as zero.
func versionBefore(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var an, bn int
		if i < len(as) {
			an, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bn, _ = strconv.Atoi(bs[i])
		}
		if an != bn {
			return an < bn
		}
	}
	return false
}
