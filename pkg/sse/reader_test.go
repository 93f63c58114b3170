package sse

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// collect drains r and returns every line it yielded.
func collect(r *Reader) ([]Line, error) {
	var lines []Line
	for {
		line, err := r.Next()
		if err != nil {
			return lines, err
		}
		if line == nil {
			return lines, nil
		}
		lines = append(lines, *line)
	}
}

var _ = Describe("Reader", func() {
	var dst *bytes.Buffer

	BeforeEach(func() {
		dst = &bytes.Buffer{}
	})

	Describe("Next", func() {
		It("yields a single candidate", func() {
			r := NewReader(strings.NewReader("data: {\"result\":{\"status\":\"PASS\"}}\n\n"))

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line.Kind).To(Equal(Candidate))
			Expect(line.Text).To(Equal(`{"result":{"status":"PASS"}}`))

			line, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(BeNil())
		})

		It("interleaves candidates and plain lines in arrival order", func() {
			input := "Connecting...\ndata: {\"a\":1}\n\n: keep-alive\ndata: {\"b\":2}\n\n"
			lines, err := collect(NewReader(strings.NewReader(input)))
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([]Line{
				{Kind: PlainText, Text: "Connecting..."},
				{Kind: Candidate, Text: `{"a":1}`},
				{Kind: PlainText, Text: ": keep-alive"},
				{Kind: Candidate, Text: `{"b":2}`},
			}))
		})

		It("reassembles lines delivered one byte per read", func() {
			input := "data: {\"run\":{\"status\":\"FAIL\"}}\r\n\r\ndone\n"
			r := NewReader(iotest.OneByteReader(strings.NewReader(input)))

			lines, err := collect(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([]Line{
				{Kind: Candidate, Text: `{"run":{"status":"FAIL"}}`},
				{Kind: PlainText, Text: "done"},
			}))
		})

		It("works with a tiny chunk size", func() {
			input := "data: first\n\ndata: second\n\n"
			lines, err := collect(NewReader(strings.NewReader(input), WithChunkSize(3)))
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(HaveLen(2))
			Expect(lines[1].Text).To(Equal("second"))
		})

		It("yields a trailing unterminated line at end of stream", func() {
			lines, err := collect(NewReader(strings.NewReader("data: {\"x\":1}\n\ndata: tail")))
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(HaveLen(2))
			Expect(lines[1]).To(Equal(Line{Kind: Candidate, Text: "tail"}))
		})

		It("returns nil on empty input", func() {
			line, err := NewReader(strings.NewReader("")).Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(BeNil())
		})

		It("returns nil on input with only blank lines", func() {
			line, err := NewReader(strings.NewReader("\n\r\n  \n")).Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(BeNil())
		})

		It("surfaces transport errors after the lines already framed", func() {
			boom := errors.New("connection reset by peer")
			src := io.MultiReader(
				strings.NewReader("data: {\"a\":1}\n"),
				iotest.ErrReader(boom),
			)
			r := NewReader(src)

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line.Text).To(Equal(`{"a":1}`))

			line, err = r.Next()
			Expect(err).To(MatchError(boom))
			Expect(line).To(BeNil())
		})

		It("returns lines read together with an error first", func() {
			boom := errors.New("reset")
			r := NewReader(&dataThenError{data: "data: one\ndata: two\n", err: boom})

			line, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line.Text).To(Equal("one"))

			line, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(line.Text).To(Equal("two"))

			_, err = r.Next()
			Expect(err).To(MatchError(boom))

			_, err = r.Next()
			Expect(err).To(MatchError(boom))
		})
	})

	Describe("verbatim tee", func() {
		It("writes every raw byte to the destination", func() {
			input := "data: first\r\n\r\nplain\ndata: unterminated"
			r := NewReader(iotest.HalfReader(strings.NewReader(input)), WithTee(dst))

			_, err := collect(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(dst.String()).To(Equal(input))
		})

		It("ignores a nil tee destination", func() {
			r := NewReader(strings.NewReader("data: x\n"), WithTee(nil))
			lines, err := collect(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(HaveLen(1))
		})

		It("returns destination write errors", func() {
			boom := errors.New("disk full")
			r := NewReader(strings.NewReader("data: x\n"), WithTee(failingWriter{err: boom}))

			_, err := r.Next()
			Expect(err).To(MatchError(boom))
		})
	})
})

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

// dataThenError returns all of data and err from a single Read.
type dataThenError struct {
	data string
	err  error
	done bool
}

func (d *dataThenError) Read(p []byte) (int, error) {
	if d.done {
		return 0, d.err
	}
	d.done = true
	return copy(p, d.data), d.err
}
