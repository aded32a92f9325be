// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedFile is a scoped handle over a read-only memory-mapped file. It
// owns both the open file descriptor and the mapping and guarantees both
// are released together on Close, in either order of failure.
type MappedFile struct {
	path string
	f    *os.File
	data mmap.MMap
}

// openMappedFile opens path and maps it read-only over its entire length.
func openMappedFile(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MemoryMapError{Path: path, Reason: "open failed", Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &MemoryMapError{Path: path, Reason: "stat failed", Err: err}
	}
	if info.Size() == 0 {
		f.Close()
		return nil, &MemoryMapError{Path: path, Reason: "empty file"}
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, &MemoryMapError{Path: path, Reason: "mmap failed", Err: err}
	}

	return &MappedFile{path: path, f: f, data: data}, nil
}

// Size returns the mapped region's length in bytes.
func (m *MappedFile) Size() int64 {
	if m == nil || m.data == nil {
		return 0
	}
	return int64(len(m.data))
}

// Read returns a copy of size bytes starting at offset.
func (m *MappedFile) Read(offset, size int64) ([]byte, error) {
	view, err := m.Slice(offset, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

// Slice returns a zero-copy view bound to the mapped region's lifetime.
// The view is invalid after Close.
func (m *MappedFile) Slice(offset, size int64) ([]byte, error) {
	if m == nil || m.data == nil {
		return nil, &ReaderClosedError{}
	}
	if offset < 0 || size < 0 {
		return nil, &MemoryMapError{Path: m.path, Reason: "negative offset or size"}
	}
	end := offset + size
	if end < offset || end > int64(len(m.data)) {
		return nil, &MemoryMapError{Path: m.path, Reason: "range exceeds mapped size"}
	}
	return m.data[offset:end], nil
}

// Close releases the mapping, then the file handle. Idempotent.
func (m *MappedFile) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.data != nil {
		err = m.data.Unmap()
		m.data = nil
	}
	if m.f != nil {
		if cerr := m.f.Close(); err == nil {
			err = cerr
		}
		m.f = nil
	}
	return err
}
