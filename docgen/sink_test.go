package docgen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tex")
	s := NewFileSink(path)

	if err := s.Write("early"); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Write before Open error = %v, want ErrSinkClosed", err)
	}
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Open(); err == nil {
		t.Error("second Open must fail")
	}
	for _, part := range []string{"\\begin{document}\n", "text\n"} {
		if err := s.Write(part); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("repeated Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\\begin{document}\ntext\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestFileSinkBadPath(t *testing.T) {
	s := NewFileSink(filepath.Join(t.TempDir(), "missing", "out.tex"))
	if err := s.Open(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWriterSink(t *testing.T) {
	var buf strings.Builder
	s := NewWriterSink(&buf)

	if err := s.Write("x"); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Write before Open error = %v", err)
	}
	_ = s.Open()
	_ = s.Write("a")
	_ = s.Write("b")
	_ = s.Close()
	if err := s.Write("c"); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Write after Close error = %v", err)
	}
	if buf.String() != "ab" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSymbolAndAlignNames(t *testing.T) {
	if SymbolEngaged.String() != "engaged" || Symbol(42).String() != "unknown" {
		t.Error("symbol names")
	}
	if AlignRight.String() != "r" || AlignBlock.String() != "p" || Align('x').String() != "l" {
		t.Error("align names")
	}
}
