// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import "fmt"

// MemoryMapError is returned for failures acquiring or reading through a
// mapped file: an empty file, an out-of-range offset/size, or a failed
// mapping syscall.
type MemoryMapError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MemoryMapError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("mmap: %s", e.Reason)
	}
	return fmt.Sprintf("mmap %s: %s", e.Path, e.Reason)
}

func (e *MemoryMapError) Unwrap() error { return e.Err }

// HeaderValidationError is returned when a fixed header fails structural
// validation: wrong magic, unsupported version/endian, bad event_size, or
// an offset that falls outside the file.
type HeaderValidationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *HeaderValidationError) Error() string {
	return fmt.Sprintf("%s: invalid header field %q: %s", e.Path, e.Field, e.Reason)
}

// EventDecodingError is returned when a fixed or variable-length event
// record cannot be decoded: truncated bytes, an undersized total_length, or
// a record that would overrun the mapped region.
type EventDecodingError struct {
	Path   string
	Seq    int64
	Reason string
}

func (e *EventDecodingError) Error() string {
	return fmt.Sprintf("%s: event %d: %s", e.Path, e.Seq, e.Reason)
}

// ManifestError is returned when manifest.json is absent, malformed, or
// shaped in a way spec.md's validation rules reject.
type ManifestError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Reason)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// ReaderClosedError is returned for any operation attempted after Close or
// before Open.
type ReaderClosedError struct {
	Path string
}

func (e *ReaderClosedError) Error() string {
	if e.Path == "" {
		return "reader used before open or after close"
	}
	return fmt.Sprintf("%s: reader used before open or after close", e.Path)
}
