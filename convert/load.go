package convert

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"famchron/archive"
	"famchron/config"
	"famchron/gramps"
)

// ErrNoDatabase is returned when source does not contain Gramps data.
var ErrNoDatabase = errors.New("no Gramps database found in source")

// Gramps package keeps database under this name, anything else matching
// grampsPattern is accepted as a fallback.
const (
	packageEntry  = "data.gramps"
	grampsPattern = "*.gramps"
)

// nesting limit for containers, .gpkg is gzip(tar(gzip(xml)))
const maxDepth = 4

// LoadDatabase reads Gramps database from file. Format decides how source is
// treated, with auto source content is sniffed.
func LoadDatabase(ctx context.Context, src string, format config.SourceFmt, log *zap.Logger) (db *gramps.Database, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := kindUnknown
	enc := encUnknown
	switch format {
	case config.SourceFmtSqlite:
		kind = kindSQLite
	case config.SourceFmtXml:
		// XML may still be gzipped, Gramps does it by default
		if kind, enc, err = detectFile(src); err != nil {
			return nil, fmt.Errorf("unable to check source type: %w", err)
		}
		if kind != kindGzip {
			kind = kindXML
		}
	default:
		if kind, enc, err = detectFile(src); err != nil {
			return nil, fmt.Errorf("unable to check source type: %w", err)
		}
	}
	log.Debug("Source detected", zap.String("file", src), zap.Stringer("kind", kind), zap.Stringer("encoding", enc))

	switch kind {
	case kindSQLite:
		return gramps.LoadSQLite(src, log)
	case kindZip:
		return loadFromZip(ctx, src, log)
	case kindXML, kindGzip, kindTar:
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return loadStream(ctx, f, src, 0, log)
	}
	return nil, fmt.Errorf("%s: %w", src, ErrNoDatabase)
}

// loadStream peels gzip and tar layers until XML is found.
func loadStream(ctx context.Context, r io.Reader, name string, depth int, log *zap.Logger) (*gramps.Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("%s: containers nested too deep", name)
	}

	br := bufio.NewReaderSize(r, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("unable to read %s: %w", name, err)
	}

	switch kind := sniff(head); kind {
	case kindGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("unable to decompress %s: %w", name, err)
		}
		defer zr.Close()
		return loadStream(ctx, zr, name, depth+1, log)
	case kindTar:
		return loadFromTar(ctx, br, name, depth, log)
	case kindXML:
		enc := detectUTF(head)
		return readXML(selectReader(br, enc), enc > encUTF8, log)
	default:
		return nil, fmt.Errorf("%s (%s): %w", name, kind, ErrNoDatabase)
	}
}

// pick returns the entry to load: packageEntry if present, otherwise first
// matching one.
func pick(names []string) string {
	for _, n := range names {
		if path.Base(n) == packageEntry {
			return n
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

func loadFromTar(ctx context.Context, r io.Reader, name string, depth int, log *zap.Logger) (db *gramps.Database, err error) {
	// tar is a stream, first matching entry is used
	err = archive.WalkTar(name, r, grampsPattern, func(archive string, entry *archive.Entry) error {
		rc, err := entry.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		log.Debug("Reading database from package", zap.String("package", archive), zap.String("entry", entry.Name))
		if db, err = loadStream(ctx, rc, path.Join(archive, entry.Name), depth+1, log); err != nil {
			return err
		}
		return fs.SkipAll
	})
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoDatabase)
	}
	return db, nil
}

func loadFromZip(ctx context.Context, src string, log *zap.Logger) (db *gramps.Database, err error) {
	var names []string
	if err := archive.Walk(src, grampsPattern, func(_ string, entry *archive.Entry) error {
		names = append(names, entry.Name)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("unable to walk archive: %w", err)
	}
	if len(names) > 1 {
		log.Warn("Archive holds several databases", zap.String("archive", src), zap.Strings("entries", names))
	}
	want := pick(names)
	if want == "" {
		return nil, fmt.Errorf("%s: %w", src, ErrNoDatabase)
	}

	err = archive.Walk(src, grampsPattern, func(archive string, entry *archive.Entry) error {
		if entry.Name != want {
			return nil
		}
		rc, err := entry.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		log.Debug("Reading database from archive", zap.String("archive", archive), zap.String("entry", entry.Name))
		if db, err = loadStream(ctx, rc, path.Join(archive, entry.Name), 1, log); err != nil {
			return err
		}
		return fs.SkipAll
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// readXML parses Gramps XML. Encoding from XML declaration is honored unless
// stream was already transcoded to UTF-8 from BOM.
func readXML(r io.Reader, transcoded bool, log *zap.Logger) (*gramps.Database, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if transcoded {
		doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read Gramps XML: %w", err)
	}
	db, err := gramps.ParseXML(doc, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse Gramps XML: %w", err)
	}
	return db, nil
}
