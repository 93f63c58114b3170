// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// line reader for consuming a SedStart run stream. Bytes arrive from the
// transport in arbitrarily sized chunks; the Framer reassembles them into
// complete lines and Extract classifies each line as a "data:" candidate
// payload or plain log text.
//
// Only the "data:" field is interpreted. "event:", "id:" and "retry:" lines are
// surfaced as plain text.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// dataPrefix is the literal field prefix of an SSE data line.
const dataPrefix = "data:"

// Kind classifies a complete line from the stream.
type Kind int

const (
	// PlainText is any non-blank line without the "data:" prefix. It is
	// displayed but never considered for status extraction.
	PlainText Kind = iota

	// Candidate is the payload of a "data:" line, believed but not yet
	// confirmed to be JSON.
	Candidate
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Candidate:
		return "candidate"
	case PlainText:
		return "plain"
	default:
		return "unknown"
	}
}

// Line is a single classified line from the stream.
type Line struct {
	Kind Kind

	// Text is the candidate payload with the "data:" prefix and surrounding
	// whitespace removed, or the unchanged line for PlainText.
	Text string
}

// Extract classifies a complete line. Whitespace-only lines carry nothing
// and are discarded: ok is false.
func Extract(line string) (Line, bool) {
	if strings.TrimSpace(line) == "" {
		return Line{}, false
	}

	if payload, found := strings.CutPrefix(line, dataPrefix); found {
		return Line{Kind: Candidate, Text: strings.TrimSpace(payload)}, true
	}

	return Line{Kind: PlainText, Text: line}, true
}
