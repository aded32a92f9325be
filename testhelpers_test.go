// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// indexEventSpec is a convenience literal for building synthetic index
// event records in tests.
type indexEventSpec struct {
	TimestampNs uint64
	FunctionID  uint64
	ThreadID    uint32
	EventKind   uint32
	CallDepth   uint32
	DetailSeq   uint32
}

func encodeIndexHeader(h IndexHeader) []byte {
	b := make([]byte, IndexHeaderSize)
	copy(b[0:4], h.Magic[:])
	b[4] = h.Endian
	b[5] = h.Version
	b[6] = h.Arch
	b[7] = h.OS
	binary.LittleEndian.PutUint32(b[8:12], h.Flags)
	binary.LittleEndian.PutUint32(b[12:16], h.ThreadID)
	b[16] = h.ClockType
	binary.LittleEndian.PutUint32(b[24:28], h.EventSize)
	binary.LittleEndian.PutUint32(b[28:32], h.EventCount)
	binary.LittleEndian.PutUint64(b[32:40], h.EventsOffset)
	binary.LittleEndian.PutUint64(b[40:48], h.FooterOffset)
	binary.LittleEndian.PutUint64(b[48:56], h.TimeStartNs)
	binary.LittleEndian.PutUint64(b[56:64], h.TimeEndNs)
	return b
}

func encodeIndexEvent(s indexEventSpec) []byte {
	b := make([]byte, IndexEventSize)
	binary.LittleEndian.PutUint64(b[0:8], s.TimestampNs)
	binary.LittleEndian.PutUint64(b[8:16], s.FunctionID)
	binary.LittleEndian.PutUint32(b[16:20], s.ThreadID)
	binary.LittleEndian.PutUint32(b[20:24], s.EventKind)
	binary.LittleEndian.PutUint32(b[24:28], s.CallDepth)
	binary.LittleEndian.PutUint32(b[28:32], s.DetailSeq)
	return b
}

func encodeIndexFooter(f IndexFooter) []byte {
	b := make([]byte, IndexFooterSize)
	copy(b[0:4], f.Magic[:])
	binary.LittleEndian.PutUint32(b[4:8], f.Checksum)
	binary.LittleEndian.PutUint64(b[8:16], f.EventCount)
	binary.LittleEndian.PutUint64(b[16:24], f.TimeStartNs)
	binary.LittleEndian.PutUint64(b[24:32], f.TimeEndNs)
	binary.LittleEndian.PutUint64(b[32:40], f.BytesWritten)
	return b
}

func encodeDetailHeader(h DetailHeader) []byte {
	b := make([]byte, DetailHeaderSize)
	copy(b[0:4], h.Magic[:])
	b[4] = h.Endian
	b[5] = h.Version
	b[6] = h.Arch
	b[7] = h.OS
	binary.LittleEndian.PutUint32(b[8:12], h.Flags)
	binary.LittleEndian.PutUint32(b[12:16], h.ThreadID)
	// b[16:20] reserved dword.
	binary.LittleEndian.PutUint64(b[20:28], h.EventsOffset)
	binary.LittleEndian.PutUint64(b[28:36], h.EventCount)
	binary.LittleEndian.PutUint64(b[36:44], h.BytesLength)
	binary.LittleEndian.PutUint64(b[44:52], h.IndexSeqStart)
	binary.LittleEndian.PutUint64(b[52:60], h.IndexSeqEnd)
	return b
}

func encodeDetailEventHeader(h DetailEventHeader) []byte {
	b := make([]byte, DetailEventHeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.TotalLength)
	binary.LittleEndian.PutUint16(b[4:6], h.EventType)
	binary.LittleEndian.PutUint16(b[6:8], h.Flags)
	binary.LittleEndian.PutUint32(b[8:12], h.IndexSeq)
	binary.LittleEndian.PutUint32(b[12:16], h.ThreadID)
	binary.LittleEndian.PutUint64(b[16:24], h.Timestamp)
	return b
}

// indexFileSpec describes everything needed to build a synthetic index
// file for a test.
type indexFileSpec struct {
	threadID    uint32
	hasDetail   bool
	events      []indexEventSpec
	withFooter  bool
	footerMagic string // defaults to IndexFooterMagic if withFooter and empty
	timeStart   uint64
	timeEnd     uint64
}

func writeIndexFile(t *testing.T, dir string, spec indexFileSpec) string {
	t.Helper()

	const eventsOffset = IndexHeaderSize
	footerOffset := uint64(eventsOffset + len(spec.events)*IndexEventSize)

	flags := uint32(0)
	if spec.hasDetail {
		flags |= IndexFlagHasDetailFile
	}

	header := IndexHeader{
		Endian:       EndianLittle,
		Version:      FormatVersion,
		Arch:         1,
		OS:           4,
		Flags:        flags,
		ThreadID:     spec.threadID,
		EventSize:    IndexEventSize,
		EventCount:   uint32(len(spec.events)),
		EventsOffset: eventsOffset,
		FooterOffset: footerOffset,
		TimeStartNs:  spec.timeStart,
		TimeEndNs:    spec.timeEnd,
	}
	copy(header.Magic[:], IndexMagic)

	buf := encodeIndexHeader(header)
	for _, ev := range spec.events {
		buf = append(buf, encodeIndexEvent(ev)...)
	}

	if spec.withFooter {
		footer := IndexFooter{
			EventCount:  uint64(len(spec.events)),
			TimeStartNs: spec.timeStart,
			TimeEndNs:   spec.timeEnd,
		}
		magic := spec.footerMagic
		if magic == "" {
			magic = IndexFooterMagic
		}
		copy(footer.Magic[:], magic)
		buf = append(buf, encodeIndexFooter(footer)...)
	}

	path := filepath.Join(dir, indexFileName)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write index file: %v", err)
	}
	return path
}

// detailEventSpec describes one synthetic detail record.
type detailEventSpec struct {
	eventType uint16
	indexSeq  uint32
	threadID  uint32
	timestamp uint64
	payload   []byte
}

func writeDetailFile(t *testing.T, dir string, threadID uint32, events []detailEventSpec, trailingBytes int) string {
	t.Helper()

	const eventsOffset = DetailHeaderSize

	var body []byte
	for _, ev := range events {
		totalLength := uint32(DetailEventHeaderSize + len(ev.payload))
		h := DetailEventHeader{
			TotalLength: totalLength,
			EventType:   ev.eventType,
			IndexSeq:    ev.indexSeq,
			ThreadID:    ev.threadID,
			Timestamp:   ev.timestamp,
		}
		body = append(body, encodeDetailEventHeader(h)...)
		body = append(body, ev.payload...)
	}
	if trailingBytes > 0 {
		body = append(body, make([]byte, trailingBytes)...)
	}

	header := DetailHeader{
		Endian:       EndianLittle,
		Version:      FormatVersion,
		Arch:         1,
		OS:           4,
		ThreadID:     threadID,
		EventsOffset: eventsOffset,
		EventCount:   uint64(len(events)),
		BytesLength:  uint64(len(body)),
	}
	copy(header.Magic[:], DetailMagic)

	buf := encodeDetailHeader(header)
	buf = append(buf, body...)
	buf = append(buf, make([]byte, detailTailBudget)...)

	path := filepath.Join(dir, detailFileName)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write detail file: %v", err)
	}
	return path
}

// writeManifestFile writes an arbitrary JSON value as manifest.json.
func writeManifestFile(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	path := filepath.Join(dir, manifestFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

// overwriteBytes writes data over the bytes at offset in the file at path, used to
// corrupt a header field in place for validation tests.
func overwriteBytes(t *testing.T, path string, offset int64, data []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open for patch: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteAt(data, offset); err != nil {
		t.Fatalf("patch write: %v", err)
	}
}

func basicManifestMap(threads ...map[string]any) map[string]any {
	return map[string]any{
		"threads":       threads,
		"time_start_ns": 0,
		"time_end_ns":   0,
	}
}
