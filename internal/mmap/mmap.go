// Package mmap provides memory-mapped file access for the flat streamline
// files.
//
// The spill path creates read-write mappings over freshly truncated files so
// flat arrays are encoded straight into page cache; the load path opens the
// same files read-only, letting concurrent readers page in only the
// streamlines they touch.
//
// Unix uses mmap(2)/msync(2); Windows uses CreateFileMapping/MapViewOfFile.
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch Bytes() after Close returns.
package mmap

import (
	"errors"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the file or requested size is invalid.
	ErrInvalidSize = errors.New("mmap: invalid size")
)

// Mapping represents a memory-mapped file. It owns the mapped byte slice and
// is responsible for unmapping it.
type Mapping struct {
	data     []byte
	size     int
	writable bool
	closed   atomic.Bool
	unmap    func([]byte) error
	flush    func([]byte) error
}

// Open maps the file at path into memory read-only.
// An empty file yields a mapping with nil Bytes().
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{data: nil, size: 0}, nil
	}
	if size < 0 {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMap(f, int(size), false)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  int(size),
		unmap: unmapFunc,
	}, nil
}

// Create truncates (or creates) the file at path to size bytes and maps it
// read-write. The caller fills Bytes() and then calls Close, which flushes
// dirty pages before unmapping. A size of 0 creates an empty file with a nil
// mapping.
func Create(path string, size int) (*Mapping, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		return nil, err
	}

	if size == 0 {
		return &Mapping{data: nil, size: 0, writable: true}, nil
	}

	data, unmapFunc, err := osMap(f, size, true)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:     data,
		size:     size,
		writable: true,
		unmap:    unmapFunc,
		flush:    osFlush,
	}, nil
}

// Close flushes writable mappings and unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.data == nil {
		return nil
	}

	var err error
	if m.writable && m.flush != nil {
		err = m.flush(m.data)
	}
	if m.unmap != nil {
		if unmapErr := m.unmap(m.data); unmapErr != nil && err == nil {
			err = unmapErr
		}
	}
	m.data = nil

	return err
}

// Bytes returns the mapped byte slice.
// The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}

	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}
