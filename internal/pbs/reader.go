// Package pbs reads and writes radar record containers (.pbs files).
//
// A container is an 8-byte header followed by zero or more records, each
// framed as a uint32 little-endian payload length and the payload bytes.
// The header carries no information and is skipped on read.
package pbs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// HeaderSize is the size of the container file header in bytes.
const HeaderSize = 8

// NotFoundError reports a container path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}

// CorruptStreamError reports a framing violation: a record's declared length
// exceeds the bytes remaining in the container, or the length prefix itself
// is cut short. The stream is truncated at the last whole record rather than
// guessing record boundaries.
type CorruptStreamError struct {
	Path   string
	Offset int64
	Reason string
}

func (e *CorruptStreamError) Error() string {
	return fmt.Sprintf("corrupt record stream %s at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Reader yields successive raw records from a container file. It owns the
// file handle and releases it exactly once via Close, on any exit path.
// A Reader is forward-only and not restartable; open a new one to re-read.
type Reader struct {
	path   string
	file   *os.File
	offset int64
	closed bool
}

// Open opens the container at path and skips the file header. The path is
// stat'd first; a missing file yields *NotFoundError before any open attempt.
func Open(path string) (*Reader, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{Path: path}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r := &Reader{path: path, file: f}
	if _, err := io.CopyN(io.Discard, f, HeaderSize); err != nil {
		// A header shorter than HeaderSize means an empty or stub container;
		// treat it as a stream with no records.
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			r.Close()
			return r, nil
		}
		r.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	r.offset = HeaderSize
	return r, nil
}

// Next returns the next raw record payload. It returns io.EOF at the clean
// end of the stream and *CorruptStreamError when the container is truncated
// mid-record. After either, the Reader is closed.
func (r *Reader) Next() ([]byte, error) {
	if r.closed {
		return nil, io.EOF
	}

	var lenBuf [4]byte
	n, err := io.ReadFull(r.file, lenBuf[:])
	if err == io.EOF {
		r.Close()
		return nil, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		r.Close()
		return nil, &CorruptStreamError{
			Path:   r.path,
			Offset: r.offset,
			Reason: fmt.Sprintf("length prefix truncated (%d of 4 bytes)", n),
		}
	}
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("read record length in %s: %w", r.path, err)
	}
	r.offset += 4

	msgLen := binary.LittleEndian.Uint32(lenBuf[:])
	payload := make([]byte, msgLen)
	n, err = io.ReadFull(r.file, payload)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		r.Close()
		return nil, &CorruptStreamError{
			Path:   r.path,
			Offset: r.offset,
			Reason: fmt.Sprintf("record declares %d bytes but only %d remain", msgLen, n),
		}
	}
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("read record payload in %s: %w", r.path, err)
	}
	r.offset += int64(msgLen)
	return payload, nil
}

// Close releases the underlying file handle. It is idempotent and always
// safe to call, including after Next has already closed the Reader.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// Closed reports whether the underlying file handle has been released.
func (r *Reader) Closed() bool {
	return r.closed
}
