package docgen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
)

// Sink receives rendered document text.
type Sink interface {
	Open() error
	Write(s string) error
	Close() error
}

// ErrSinkClosed is returned when writing into sink which is not open.
var ErrSinkClosed = errors.New("sink is not open")

// FileSink writes buffered output into a file, the file is created on Open
// and truncated if it exists.
type FileSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Open() error {
	if s.f != nil {
		return fmt.Errorf("sink %s is already open", s.path)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	s.f, s.w = f, bufio.NewWriter(f)
	return nil
}

func (s *FileSink) Write(str string) error {
	if s.w == nil {
		return ErrSinkClosed
	}
	_, err := s.w.WriteString(str)
	return err
}

func (s *FileSink) Close() error {
	if s.f == nil {
		return nil
	}
	err := multierr.Combine(s.w.Flush(), s.f.Close())
	s.f, s.w = nil, nil
	if err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	return nil
}

// WriterSink adapts io.Writer, Close does not close the writer.
type WriterSink struct {
	w    io.Writer
	open bool
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Open() error {
	s.open = true
	return nil
}

func (s *WriterSink) Write(str string) error {
	if !s.open {
		return ErrSinkClosed
	}
	_, err := io.WriteString(s.w, str)
	return err
}

func (s *WriterSink) Close() error {
	s.open = false
	return nil
}
