package csvio

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestParse_PlainCSV(t *testing.T) {
	records, err := Parse(strings.NewReader("a,b,c\n1,2,3\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 2 || records[1][2] != "3" {
		t.Errorf("records = %v", records)
	}
}

func TestParse_SkipsBOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("title,price\nFlat,100\n")...)
	records, err := Parse(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if records[0][0] != "title" {
		t.Errorf("first cell = %q, want BOM stripped", records[0][0])
	}
}

func TestParse_RaggedRows(t *testing.T) {
	records, err := Parse(strings.NewReader("a,b,c\n1,2\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("Parse() must tolerate ragged rows, got %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestParse_ReplacesInvalidUTF8(t *testing.T) {
	// 0xFF can never appear in valid UTF-8.
	input := []byte("city\nM\xFFlaga\n")
	records, err := Parse(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if records[1][0] != "M?laga" {
		t.Errorf("cell = %q, want invalid byte replaced", records[1][0])
	}
}

func TestParse_PreservesValidUnicode(t *testing.T) {
	records, err := Parse(strings.NewReader("city\nMálaga\nMünchen\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if records[1][0] != "Málaga" || records[2][0] != "München" {
		t.Errorf("cells = %v, accented names must pass through untouched", records)
	}
}

func TestSanitizingReader_SplitSequence(t *testing.T) {
	// "é" is 0xC3 0xA9; read byte by byte so the sequence splits across
	// Read calls.
	src := iotest{data: []byte("caf\xC3\xA9")}
	var out bytes.Buffer
	if _, err := io.Copy(&out, newSanitizingReader(&src)); err != nil {
		t.Fatalf("copy error = %v", err)
	}
	if out.String() != "café" {
		t.Errorf("got %q, want multi-byte rune reassembled", out.String())
	}
}

func TestSanitizingReader_SmallDestinationBuffer(t *testing.T) {
	// Drain with a 1-byte destination while the source also yields one
	// byte per call. No byte may be lost and the loop must terminate even
	// though a multi-byte sequence can never fit the destination whole.
	src := iotest{data: []byte("caf\xC3\xA9!")}
	sr := newSanitizingReader(&src)

	var out []byte
	p := make([]byte, 1)
	for i := 0; ; i++ {
		if i > 100 {
			t.Fatal("reader made no progress")
		}
		n, err := sr.Read(p)
		out = append(out, p[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read error = %v", err)
		}
	}
	if string(out) != "caf\xC3\xA9!" {
		t.Errorf("got %q, want %q", out, "café!")
	}
}

func TestSanitizingReader_TruncatedSequenceAtEOF(t *testing.T) {
	// A lone lead byte at end of stream is garbage, not a pending rune.
	src := iotest{data: []byte("abc\xC3")}
	var out bytes.Buffer
	if _, err := io.Copy(&out, newSanitizingReader(&src)); err != nil {
		t.Fatalf("copy error = %v", err)
	}
	if out.String() != "abc?" {
		t.Errorf("got %q, want abc?", out.String())
	}
}

func TestWrite_RoundsTrip(t *testing.T) {
	var buf bytes.Buffer
	records := [][]string{{"errors", "title"}, {"title is required", "has, comma"}}
	if err := Write(&buf, records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got[1][1] != "has, comma" {
		t.Errorf("round trip cell = %q", got[1][1])
	}
}

func TestCountingReader(t *testing.T) {
	cr := NewCountingReader(strings.NewReader("hello"))
	if _, err := io.ReadAll(cr); err != nil {
		t.Fatalf("read error = %v", err)
	}
	if cr.BytesRead != 5 {
		t.Errorf("BytesRead = %d, want 5", cr.BytesRead)
	}
}

// iotest yields one byte per Read call to exercise buffer boundaries.
type iotest struct {
	data []byte
	pos  int
}

func (r *iotest) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}
