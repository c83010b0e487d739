// Package csvio reads and writes the CSV files that flow through bulk
// imports. Readers stream: the UTF-8 BOM that Windows tools prepend is
// skipped and invalid UTF-8 bytes are replaced on the fly, without
// loading the whole file into memory first.
package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Wrap layers BOM skipping and UTF-8 sanitization over r. The order
// matters: the BOM must go before sanitization sees the stream.
func Wrap(r io.Reader) io.Reader {
	return newSanitizingReader(newBOMReader(r))
}

// Parse reads all CSV records from r through Wrap. Field counts may vary
// per record (ragged rows are the caller's problem, not a parse error)
// and quoting is lenient.
func Parse(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(Wrap(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

// Write emits records to w, flushing before return.
func Write(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// bomReader skips a leading UTF-8 BOM if present.
type bomReader struct {
	r       *bufio.Reader
	checked bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: bufio.NewReader(r)}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(3)
		if err == nil && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
			if _, err := b.r.Discard(3); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// sanitizingReader replaces invalid UTF-8 bytes with '?' as data streams
// through. Sanitized bytes are staged in an internal buffer and served
// from there, so the destination buffer size never matters: a multi-byte
// sequence split across fills is carried over in full, and even a 1-byte
// destination drains the stream correctly.
type sanitizingReader struct {
	r       io.Reader
	buf     []byte // fill buffer, sanitized in place
	out     []byte // sanitized bytes awaiting delivery (aliases buf)
	pending []byte // incomplete trailing sequence carried between fills
	err     error
	eof     bool
}

const sanitizeBufSize = 512

func newSanitizingReader(r io.Reader) *sanitizingReader {
	return &sanitizingReader{
		r:       r,
		buf:     make([]byte, 0, sanitizeBufSize),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *sanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	// A fill may stash everything it read as pending, so loop until there
	// is output to serve. The underlying reader advances every iteration.
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// fill reads the next chunk, prepends any carried-over bytes, and
// sanitizes the result into s.out.
func (s *sanitizingReader) fill() {
	s.buf = append(s.buf[:0], s.pending...)
	s.pending = s.pending[:0]

	n, err := s.r.Read(s.buf[len(s.buf):cap(s.buf)])
	s.buf = s.buf[:len(s.buf)+n]
	if err != nil {
		if err == io.EOF {
			s.eof = true
		}
		s.err = err
	}

	if allASCII(s.buf) {
		s.out = s.buf
		return
	}
	s.out = s.buf[:s.sanitize(s.buf)]
}

// sanitize rewrites buf in place and returns the number of usable bytes.
// An incomplete trailing sequence is stashed for the next fill unless the
// stream already ended.
func (s *sanitizingReader) sanitize(buf []byte) int {
	write := 0
	for read := 0; read < len(buf); {
		r, size := utf8.DecodeRune(buf[read:])
		if r == utf8.RuneError && size == 1 {
			if !s.eof && incompleteAtEnd(buf[read:]) {
				s.pending = append(s.pending, buf[read:]...)
				return write
			}
			// Replacement with '?' keeps the buffer from growing.
			buf[write] = '?'
			write++
			read++
			continue
		}
		copy(buf[write:], buf[read:read+size])
		write += size
		read += size
	}
	return write
}

// incompleteAtEnd reports whether buf could be the unfinished start of a
// multi-byte sequence rather than garbage.
func incompleteAtEnd(buf []byte) bool {
	if len(buf) == 0 || len(buf) >= utf8.UTFMax {
		return false
	}
	want := seqLen(buf[0])
	if want <= len(buf) {
		return false
	}
	for _, b := range buf[1:] {
		if b&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

// seqLen returns the expected byte length of a UTF-8 sequence starting
// with b, or 0 for a continuation byte.
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// CountingReader tracks bytes read for progress reporting.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
}

// NewCountingReader wraps r with byte accounting.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}
