// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeThread(t *testing.T, sessionDir string, threadID uint32, events []indexEventSpec) {
	t.Helper()
	threadDir := filepath.Join(sessionDir, fmt.Sprintf("thread_%d", threadID))
	require.NoError(t, os.MkdirAll(threadDir, 0o755))

	var start, end uint64
	if len(events) > 0 {
		start, end = events[0].TimestampNs, events[len(events)-1].TimestampNs
	}
	writeIndexFile(t, threadDir, indexFileSpec{
		threadID:   threadID,
		events:     events,
		withFooter: true,
		timeStart:  start,
		timeEnd:    end,
	})
}

func TestOpenSessionReader_SkipsMissingThreadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeThread(t, dir, 1, []indexEventSpec{
		{TimestampNs: 10, ThreadID: 1, EventKind: EventKindCall, DetailSeq: NoDetailSeq},
	})

	writeManifestFile(t, dir, map[string]any{
		"threads": []map[string]any{
			{"id": 1},
			{"id": 2}, // declared but never flushed to disk
		},
		"time_start_ns": 0,
		"time_end_ns":   0,
	})

	session, err := OpenSessionReader(dir)
	require.NoError(t, err)
	defer session.Close()

	require.Len(t, session.Threads, 1)
	require.Equal(t, uint32(1), session.Threads[0].ThreadID())
}

func TestSessionReader_TimeRangeAndEventCount(t *testing.T) {
	dir := t.TempDir()
	writeThread(t, dir, 1, []indexEventSpec{
		{TimestampNs: 100, ThreadID: 1, EventKind: EventKindCall, DetailSeq: NoDetailSeq},
		{TimestampNs: 300, ThreadID: 1, EventKind: EventKindReturn, DetailSeq: NoDetailSeq},
	})
	writeThread(t, dir, 2, []indexEventSpec{
		{TimestampNs: 50, ThreadID: 2, EventKind: EventKindCall, DetailSeq: NoDetailSeq},
		{TimestampNs: 200, ThreadID: 2, EventKind: EventKindReturn, DetailSeq: NoDetailSeq},
		{TimestampNs: 400, ThreadID: 2, EventKind: EventKindReturn, DetailSeq: NoDetailSeq},
	})

	writeManifestFile(t, dir, map[string]any{
		"threads": []map[string]any{
			{"id": 1},
			{"id": 2},
		},
		"time_start_ns": 0,
		"time_end_ns":   0,
	})

	session, err := OpenSessionReader(dir)
	require.NoError(t, err)
	defer session.Close()

	start, end := session.TimeRange()
	require.Equal(t, uint64(50), start)
	require.Equal(t, uint64(400), end)
	require.Equal(t, int64(5), session.EventCount())
}

func TestOpenSessionReader_NoThreadsHasZeroRange(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, map[string]any{
		"threads":       []map[string]any{},
		"time_start_ns": 0,
		"time_end_ns":   0,
	})

	session, err := OpenSessionReader(dir)
	require.NoError(t, err)
	defer session.Close()

	start, end := session.TimeRange()
	require.Equal(t, uint64(0), start)
	require.Equal(t, uint64(0), end)
	require.Equal(t, int64(0), session.EventCount())
}

func TestOpenSessionReader_MissingManifestFails(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenSessionReader(dir)
	require.Error(t, err)
}

func TestSessionReader_CloseIsIdempotentAcrossThreads(t *testing.T) {
	dir := t.TempDir()
	writeThread(t, dir, 1, []indexEventSpec{
		{TimestampNs: 1, ThreadID: 1, EventKind: EventKindCall, DetailSeq: NoDetailSeq},
	})
	writeManifestFile(t, dir, map[string]any{
		"threads":       []map[string]any{{"id": 1}},
		"time_start_ns": 0,
		"time_end_ns":   0,
	})

	session, err := OpenSessionReader(dir)
	require.NoError(t, err)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
}
