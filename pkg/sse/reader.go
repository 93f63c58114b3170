package sse

import (
	"errors"
	"io"
)

const defaultChunkSize = 4 * 1024

// Reader pulls chunks from a source io.Reader, one Read per chunk, and yields
// classified lines. Every raw byte read is optionally written verbatim to a
// tee destination before it is framed.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │ chunk
// ▼
// ┌──────────────────┐   ┌──────────────────┐
// │      Framer      │──▶│ tee io.Writer    │
// └──────────────────┘   └──────────────────┘
// │ complete lines
// ▼
// ┌──────────────────┐
// │     Extract      │
// └──────────────────┘
// │
// ▼
// Reader.Next() Line
type Reader struct {
	src  io.Reader
	dest io.Writer

	framer  Framer
	chunk   []byte
	pending []string
	eof     bool
	err     error
}

// Option configures a Reader created with NewReader.
type Option func(*Reader)

// WithTee writes every raw byte read from the source to w.
func WithTee(w io.Writer) Option {
	return func(r *Reader) {
		if w != nil {
			r.dest = w
		}
	}
}

// WithChunkSize sets the size of the read buffer handed to the source.
func WithChunkSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.chunk = make([]byte, n)
		}
	}
}

// NewReader returns a Reader consuming src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	r := &Reader{
		src:   src,
		dest:  io.Discard,
		chunk: make([]byte, defaultChunkSize),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Next returns the next non-blank line from the stream. It blocks on the
// source until a complete line is available. When the source is exhausted,
// a trailing unterminated line is yielded once, then Next returns nil, nil.
//
// Any error other than io.EOF from the source or the tee destination is
// returned as is, after the lines framed before it. Once returned, the
// error is returned by every later call.
func (r *Reader) Next() (*Line, error) {
	for {
		for len(r.pending) > 0 {
			raw := r.pending[0]
			r.pending = r.pending[1:]

			if line, ok := Extract(raw); ok {
				return &line, nil
			}
		}

		if r.err != nil {
			return nil, r.err
		}

		if r.eof {
			return nil, nil
		}

		n, err := r.src.Read(r.chunk)
		if n > 0 {
			if _, werr := r.dest.Write(r.chunk[:n]); werr != nil {
				r.err = werr
				continue
			}
			r.pending = append(r.pending, r.framer.Feed(r.chunk[:n])...)
		}

		if errors.Is(err, io.EOF) {
			r.eof = true
			if tail, ok := r.framer.Flush(); ok {
				r.pending = append(r.pending, tail)
			}
			continue
		}

		if err != nil {
			r.err = err
		}
	}
}
