// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import (
	"os"
	"path/filepath"
)

const (
	indexFileName  = "index.atf"
	detailFileName = "detail.atf"
)

// ThreadReader exclusively owns an IndexReader and an optional DetailReader
// for a single thread directory, and provides bidirectional lookup between
// their paired events.
type ThreadReader struct {
	Index  *IndexReader
	Detail *DetailReader
}

// OpenThreadReader opens threadDir/index.atf (required) and, if present,
// threadDir/detail.atf.
func OpenThreadReader(threadDir string) (*ThreadReader, error) {
	index, err := OpenIndexReader(filepath.Join(threadDir, indexFileName))
	if err != nil {
		return nil, err
	}

	t := &ThreadReader{Index: index}

	detailPath := filepath.Join(threadDir, detailFileName)
	if _, statErr := os.Stat(detailPath); statErr == nil {
		detail, err := OpenDetailReader(detailPath)
		if err != nil {
			index.Close()
			return nil, err
		}
		t.Detail = detail
	}

	return t, nil
}

// GetDetailFor returns the detail event paired with indexEvent, or
// (DetailEvent{}, false) when it has no paired detail event or this thread
// has no detail file. O(1).
func (t *ThreadReader) GetDetailFor(indexEvent IndexEvent) (DetailEvent, bool, error) {
	if indexEvent.HasNoDetail() || t.Detail == nil {
		return DetailEvent{}, false, nil
	}
	return t.Detail.Get(int64(indexEvent.DetailSeq))
}

// GetIndexFor returns the index event paired with detailEvent. O(1).
//
// Cross-file thread_id consistency between the index and detail readers is
// not enforced here; a caller that cares should compare ThreadID() on both.
func (t *ThreadReader) GetIndexFor(detailEvent DetailEvent) (IndexEvent, error) {
	return t.Index.Get(int64(detailEvent.Header.IndexSeq))
}

// ThreadID returns the thread id, read from the index file.
func (t *ThreadReader) ThreadID() uint32 { return t.Index.ThreadID() }

// TimeRange returns the thread's (start, end) time range in nanoseconds.
func (t *ThreadReader) TimeRange() (uint64, uint64) { return t.Index.TimeRange() }

// Close releases both the index and (if present) detail readers.
func (t *ThreadReader) Close() error {
	err := t.Index.Close()
	if t.Detail != nil {
		if derr := t.Detail.Close(); err == nil {
			err = derr
		}
	}
	return err
}
