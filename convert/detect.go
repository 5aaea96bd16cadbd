package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the source is looked at to decide its kind.
const sniffSize = 8192

// srcEncoding is encoding announced by byte order mark.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	default:
		return "unknown"
	}
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

// detectUTF checks for BOM. UTF-32 LE must be tested before UTF-16 LE, they
// share first two bytes.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader wraps r so BOM is consumed and content is UTF-8. Without BOM
// stream is returned as is and XML declaration decides.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	panic(fmt.Sprintf("unexpected source encoding %d", enc))
}

// sourceKind is container or format of genealogy source.
type sourceKind int

const (
	kindUnknown sourceKind = iota
	kindXML
	kindGzip
	kindTar
	kindZip
	kindSQLite
)

func (k sourceKind) String() string {
	switch k {
	case kindXML:
		return "xml"
	case kindGzip:
		return "gzip"
	case kindTar:
		return "tar"
	case kindZip:
		return "zip"
	case kindSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

const grampsExt = "gramps"

func init() {
	filetype.AddMatcher(filetype.NewType(grampsExt, "application/x-gramps-xml"), isGrampsXML)
}

// isGrampsXML looks for Gramps database root element in header. Only UTF-8
// and UTF-16 with BOM are recognized, Gramps never writes anything else.
func isGrampsXML(buf []byte) bool {
	enc := detectUTF(buf)
	if enc != encUnknown && enc != encUTF8 {
		decoded, err := io.ReadAll(io.LimitReader(selectReader(bytes.NewReader(buf), enc), sniffSize))
		if err != nil && len(decoded) == 0 {
			return false
		}
		buf = decoded
	}
	buf = bytes.TrimPrefix(buf, []byte{0xEF, 0xBB, 0xBF})
	if !bytes.HasPrefix(bytes.TrimSpace(buf), []byte("<")) {
		return false
	}
	return bytes.Contains(buf, []byte("<database")) && bytes.Contains(buf, []byte("gramps-project.org/xml/"))
}

// sniff decides kind of source by its header.
func sniff(head []byte) sourceKind {
	switch {
	case filetype.Is(head, "gz"):
		return kindGzip
	case filetype.Is(head, "zip"):
		return kindZip
	case filetype.Is(head, "sqlite"):
		return kindSQLite
	case filetype.Is(head, "tar"):
		return kindTar
	case filetype.Is(head, grampsExt):
		return kindXML
	}
	return kindUnknown
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

// detectFile returns kind of source file and BOM encoding for plain XML.
func detectFile(path string) (sourceKind, srcEncoding, error) {
	head, err := readHead(path)
	if err != nil {
		return kindUnknown, encUnknown, err
	}
	kind := sniff(head)
	if kind == kindXML {
		return kind, detectUTF(head), nil
	}
	return kind, encUnknown, nil
}

// isArchiveFile reports whether path is zip archive which may hold Gramps
// exports.
func isArchiveFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return sniff(head) == kindZip, nil
}
