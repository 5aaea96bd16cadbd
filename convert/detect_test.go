package convert

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

const sampleXMLPath = "../gramps/testdata/family.gramps.xml"

func loadSampleXML(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(sampleXMLPath)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	return data
}

func encodeWith(t *testing.T, data []byte, tr transform.Transformer) []byte {
	t.Helper()
	out, _, err := transform.Bytes(tr, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

type fileEntry struct {
	name string
	data []byte
}

func tarred(t *testing.T, entries ...fileEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		if err := tw.WriteHeader(&tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.data)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatalf("tar header: %v", err)
		}
		if _, err := tw.Write(e.data); err != nil {
			t.Fatalf("tar write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	return buf.Bytes()
}

func zipped(t *testing.T, entries ...fileEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestBOMDetectionFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func([]byte) bool
		yes  []byte
		no   []byte
	}{
		{"utf8", isUTF8BOM3, []byte{0xEF, 0xBB, 0xBF}, []byte{0x00, 0x00, 0x00}},
		{"utf16be", isUTF16BigEndianBOM2, []byte{0xFE, 0xFF}, []byte{0xFF, 0xFE}},
		{"utf16le", isUTF16LittleEndianBOM2, []byte{0xFF, 0xFE}, []byte{0xFE, 0xFF}},
		{"utf32be", isUTF32BigEndianBOM4, []byte{0x00, 0x00, 0xFE, 0xFF}, []byte{0xFF, 0xFE, 0x00, 0x00}},
		{"utf32le", isUTF32LittleEndianBOM4, []byte{0xFF, 0xFE, 0x00, 0x00}, []byte{0x00, 0x00, 0xFE, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.fn(tt.yes) {
				t.Errorf("%x not recognized", tt.yes)
			}
			if tt.fn(tt.no) {
				t.Errorf("%x recognized", tt.no)
			}
			if tt.fn(nil) {
				t.Error("empty buffer recognized")
			}
		})
	}
}

func TestDetectUTF(t *testing.T) {
	tests := []struct {
		buf  []byte
		want srcEncoding
	}{
		{[]byte{0xEF, 0xBB, 0xBF, '<'}, encUTF8},
		{[]byte{0xFE, 0xFF, 0x00, '<'}, encUTF16BigEndian},
		{[]byte{0xFF, 0xFE, '<', 0x00}, encUTF16LittleEndian},
		{[]byte{0x00, 0x00, 0xFE, 0xFF}, encUTF32BigEndian},
		{[]byte{0xFF, 0xFE, 0x00, 0x00}, encUTF32LittleEndian},
		{[]byte("<?xml"), encUnknown},
		{nil, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := detectUTF(tt.buf); got != tt.want {
				t.Errorf("detectUTF(%x) = %v, want %v", tt.buf, got, tt.want)
			}
		})
	}
}

func TestSelectReader(t *testing.T) {
	const text = "Müller & Söhne"
	tests := []struct {
		enc  srcEncoding
		data []byte
	}{
		{encUnknown, []byte(text)},
		{encUTF8, append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{encUTF16BigEndian, encodeWith(t, []byte(text), unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())},
		{encUTF16LittleEndian, encodeWith(t, []byte(text), unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())},
		{encUTF32BigEndian, encodeWith(t, []byte(text), utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder())},
		{encUTF32LittleEndian, encodeWith(t, []byte(text), utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder())},
	}
	for _, tt := range tests {
		t.Run(tt.enc.String(), func(t *testing.T) {
			if got := detectUTF(tt.data); got != tt.enc {
				t.Fatalf("detectUTF() = %v, want %v", got, tt.enc)
			}
			var out bytes.Buffer
			if _, err := out.ReadFrom(selectReader(bytes.NewReader(tt.data), tt.enc)); err != nil {
				t.Fatalf("read: %v", err)
			}
			if out.String() != text {
				t.Errorf("decoded %q, want %q", out.String(), text)
			}
		})
	}
}

func TestSelectReaderPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid encoding")
		}
	}()
	selectReader(bytes.NewReader(nil), srcEncoding(999))
}

func TestSniff(t *testing.T) {
	sample := loadSampleXML(t)
	tests := []struct {
		name string
		head []byte
		want sourceKind
	}{
		{"gramps xml", sample, kindXML},
		{"gramps xml with bom", append([]byte{0xEF, 0xBB, 0xBF}, sample...), kindXML},
		{"gramps xml utf16", encodeWith(t, sample, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()), kindXML},
		{"gzip", gzipped(t, sample), kindGzip},
		{"zip", zipped(t, fileEntry{"data.gramps", sample}), kindZip},
		{"tar", tarred(t, fileEntry{"data.gramps", sample}), kindTar},
		{"sqlite", append([]byte("SQLite format 3\x00"), make([]byte, 84)...), kindSQLite},
		{"other xml", []byte(`<?xml version="1.0"?><FictionBook/>`), kindUnknown},
		{"database without namespace", []byte(`<?xml version="1.0"?><database/>`), kindUnknown},
		{"text", []byte("just some text"), kindUnknown},
		{"empty", nil, kindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head := tt.head
			if len(head) > sniffSize {
				head = head[:sniffSize]
			}
			if got := sniff(head); got != tt.want {
				t.Errorf("sniff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFile(t *testing.T) {
	sample := loadSampleXML(t)

	kind, enc, err := detectFile(writeTemp(t, "bom.gramps", append([]byte{0xEF, 0xBB, 0xBF}, sample...)))
	if err != nil {
		t.Fatalf("detectFile() error = %v", err)
	}
	if kind != kindXML || enc != encUTF8 {
		t.Errorf("detectFile() = %v/%v, want xml/utf8", kind, enc)
	}

	kind, enc, err = detectFile(writeTemp(t, "packed.gramps", gzipped(t, sample)))
	if err != nil {
		t.Fatalf("detectFile() error = %v", err)
	}
	if kind != kindGzip || enc != encUnknown {
		t.Errorf("detectFile() = %v/%v, want gzip/unknown", kind, enc)
	}

	if _, _, err := detectFile("/nonexistent/file.gramps"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsArchiveFile(t *testing.T) {
	sample := loadSampleXML(t)
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"zip", zipped(t, fileEntry{"tree.gramps", sample}), true},
		{"zip extension but text", []byte("not a real zip file"), false},
		{"gzip", gzipped(t, sample), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isArchiveFile(writeTemp(t, "source.zip", tt.data))
			if err != nil {
				t.Fatalf("isArchiveFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isArchiveFile() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := isArchiveFile("/nonexistent/file.zip"); err == nil {
		t.Error("expected error for missing file")
	}
}
