// Package archive walks regular files stored in zip and tar containers.
// Gramps packages (.gpkg) are gzipped tar, some users keep exports in zip.
package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Entry is a regular file in container.
type Entry struct {
	Name string
	Size int64

	open func() (io.ReadCloser, error)
}

// Open returns entry content. For tar entries the reader is only valid
// during the walk callback.
func (e *Entry) Open() (io.ReadCloser, error) {
	return e.open()
}

// WalkFunc is called for every entry which base name matches pattern. If
// fs.SkipAll is returned walk stops without error, any other error stops
// walk and is returned.
type WalkFunc func(archive string, entry *Entry) error

func match(pattern, name string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return path.Match(pattern, path.Base(name))
}

func visit(archive, pattern string, entry *Entry, walkFn WalkFunc) (stop bool, err error) {
	if !isSafePath(entry.Name) {
		return true, fmt.Errorf("entry %q: unsafe path (absolute or contains path traversal)", entry.Name)
	}
	ok, err := match(pattern, entry.Name)
	if err != nil {
		return true, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if !ok {
		return false, nil
	}
	if err := walkFn(archive, entry); err != nil {
		if errors.Is(err, fs.SkipAll) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}

// Walk visits files of zip archive in stored order.
func Walk(archive, pattern string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entry := &Entry{Name: f.Name, Size: int64(f.UncompressedSize64), open: f.Open}
		if stop, err := visit(archive, pattern, entry, walkFn); stop {
			return err
		}
	}
	return nil
}

// WalkTar visits regular files of tar stream, archive is only passed to
// walkFn.
func WalkTar(archive string, r io.Reader, pattern string, walkFn WalkFunc) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		entry := &Entry{Name: hdr.Name, Size: hdr.Size, open: func() (io.ReadCloser, error) {
			return io.NopCloser(tr), nil
		}}
		if stop, err := visit(archive, pattern, entry, walkFn); stop {
			return err
		}
	}
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
