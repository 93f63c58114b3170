package sse

import (
	"bytes"
	"strings"
)

// Feed appends chunk to buffer and splits the result into complete lines.
// Both "\n" and "\r\n" terminate a line. The trailing element after the last
// terminator is never complete and is returned as the new remainder, which
// is empty when the input ended exactly on a boundary.
//
// A chunk without any terminator yields no lines and a remainder of
// buffer+chunk.
func Feed(buffer, chunk string) (lines []string, remainder string) {
	end := strings.LastIndexByte(chunk, '\n')
	if end < 0 {
		return nil, buffer + chunk
	}

	return splitLines(buffer + chunk[:end]), chunk[end+1:]
}

// splitLines splits s, which ends just before a terminator, into lines with
// any trailing "\r" removed.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Framer owns the carry-over buffer between chunks. The zero value is ready
// to use.
//
// The buffer holds either nothing or exactly one line fragment that has not
// seen its terminator yet. A "\r" at the end of a chunk stays in the buffer
// until the next chunk decides whether it belongs to a "\r\n". Only the new
// chunk is searched for terminators, so a long fragment costs linear time
// however it is split.
type Framer struct {
	buf []byte
}

// Feed frames the next chunk and returns the lines it completed, in arrival
// order.
func (f *Framer) Feed(chunk []byte) []string {
	end := bytes.LastIndexByte(chunk, '\n')
	if end < 0 {
		f.buf = append(f.buf, chunk...)
		return nil
	}

	head := string(append(f.buf, chunk[:end]...))
	f.buf = append(f.buf[:0], chunk[end+1:]...)
	return splitLines(head)
}

// Remainder returns the current incomplete line fragment.
func (f *Framer) Remainder() string {
	return string(f.buf)
}

// Flush returns and clears the trailing fragment left when the stream ends
// without a final terminator. ok is false when there is nothing to flush.
func (f *Framer) Flush() (string, bool) {
	if len(f.buf) == 0 {
		return "", false
	}

	line := strings.TrimSuffix(string(f.buf), "\r")
	f.buf = f.buf[:0]
	return line, true
}
