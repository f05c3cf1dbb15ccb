package pbs

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Writer produces a container file: the zero header followed by
// length-prefixed records. Used by tests and the synthetic recording
// generator; the viewer itself only reads.
type Writer struct {
	path   string
	file   *os.File
	count  int
	closed bool
}

// Create creates (or truncates) a container at path and writes the header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	var header [HeaderSize]byte
	if _, err := f.Write(header[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header of %s: %w", path, err)
	}
	return &Writer{path: path, file: f}, nil
}

// WriteRecord appends one length-prefixed record.
func (w *Writer) WriteRecord(payload []byte) error {
	if w.closed {
		return fmt.Errorf("writer for %s is closed", w.path)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.file.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write record length to %s: %w", w.path, err)
	}
	if _, err := w.file.Write(payload); err != nil {
		return fmt.Errorf("write record payload to %s: %w", w.path, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes and releases the underlying file. Idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
