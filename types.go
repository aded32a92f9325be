// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import "encoding/binary"

// IndexHeader is the 64-byte header opening every index file. Field order
// and padding mirror the wire layout exactly:
// 4s B B B B I I B 3x 4x I I Q Q Q Q
type IndexHeader struct {
	Magic        [4]byte
	Endian       uint8
	Version      uint8
	Arch         uint8
	OS           uint8
	Flags        uint32
	ThreadID     uint32
	ClockType    uint8
	EventSize    uint32
	EventCount   uint32
	EventsOffset uint64
	FooterOffset uint64
	TimeStartNs  uint64
	TimeEndNs    uint64
}

// decodeIndexHeader unpacks a 64-byte buffer into an IndexHeader. The
// caller is responsible for slicing exactly IndexHeaderSize bytes.
func decodeIndexHeader(b []byte) IndexHeader {
	_ = b[IndexHeaderSize-1]
	var h IndexHeader
	copy(h.Magic[:], b[0:4])
	h.Endian = b[4]
	h.Version = b[5]
	h.Arch = b[6]
	h.OS = b[7]
	h.Flags = binary.LittleEndian.Uint32(b[8:12])
	h.ThreadID = binary.LittleEndian.Uint32(b[12:16])
	h.ClockType = b[16]
	// b[17:20] reserved1 (3 bytes), b[20:24] reserved2 (4 bytes): skipped.
	h.EventSize = binary.LittleEndian.Uint32(b[24:28])
	h.EventCount = binary.LittleEndian.Uint32(b[28:32])
	h.EventsOffset = binary.LittleEndian.Uint64(b[32:40])
	h.FooterOffset = binary.LittleEndian.Uint64(b[40:48])
	h.TimeStartNs = binary.LittleEndian.Uint64(b[48:56])
	h.TimeEndNs = binary.LittleEndian.Uint64(b[56:64])
	return h
}

// IndexEvent is the 32-byte fixed record describing one tracer event.
type IndexEvent struct {
	TimestampNs uint64
	FunctionID  uint64
	ThreadID    uint32
	EventKind   uint32
	CallDepth   uint32
	DetailSeq   uint32
}

// decodeIndexEvent unpacks a 32-byte buffer: Q Q I I I I.
func decodeIndexEvent(b []byte) IndexEvent {
	_ = b[IndexEventSize-1]
	return IndexEvent{
		TimestampNs: binary.LittleEndian.Uint64(b[0:8]),
		FunctionID:  binary.LittleEndian.Uint64(b[8:16]),
		ThreadID:    binary.LittleEndian.Uint32(b[16:20]),
		EventKind:   binary.LittleEndian.Uint32(b[20:24]),
		CallDepth:   binary.LittleEndian.Uint32(b[24:28]),
		DetailSeq:   binary.LittleEndian.Uint32(b[28:32]),
	}
}

// HasNoDetail reports whether this event has no paired detail event.
func (e IndexEvent) HasNoDetail() bool {
	return e.DetailSeq == NoDetailSeq
}

// IndexFooter is the optional 64-byte trailer written by a clean shutdown.
// Layout: 4s I Q Q Q Q 24x.
type IndexFooter struct {
	Magic        [4]byte
	Checksum     uint32
	EventCount   uint64
	TimeStartNs  uint64
	TimeEndNs    uint64
	BytesWritten uint64
}

func decodeIndexFooter(b []byte) IndexFooter {
	_ = b[IndexFooterSize-1]
	var f IndexFooter
	copy(f.Magic[:], b[0:4])
	f.Checksum = binary.LittleEndian.Uint32(b[4:8])
	f.EventCount = binary.LittleEndian.Uint64(b[8:16])
	f.TimeStartNs = binary.LittleEndian.Uint64(b[16:24])
	f.TimeEndNs = binary.LittleEndian.Uint64(b[24:32])
	f.BytesWritten = binary.LittleEndian.Uint64(b[32:40])
	// b[40:64] reserved/padding: skipped.
	return f
}

func (f IndexFooter) isValid() bool {
	return string(f.Magic[:]) == IndexFooterMagic
}

// DetailHeader is the 64-byte header opening every detail file. Layout:
// 4s B B B B I I I Q Q Q Q Q 4x.
type DetailHeader struct {
	Magic         [4]byte
	Endian        uint8
	Version       uint8
	Arch          uint8
	OS            uint8
	Flags         uint32
	ThreadID      uint32
	EventsOffset  uint64
	EventCount    uint64
	BytesLength   uint64
	IndexSeqStart uint64
	IndexSeqEnd   uint64
}

func decodeDetailHeader(b []byte) DetailHeader {
	_ = b[DetailHeaderSize-1]
	var h DetailHeader
	copy(h.Magic[:], b[0:4])
	h.Endian = b[4]
	h.Version = b[5]
	h.Arch = b[6]
	h.OS = b[7]
	h.Flags = binary.LittleEndian.Uint32(b[8:12])
	h.ThreadID = binary.LittleEndian.Uint32(b[12:16])
	// b[16:20] reserved dword: skipped.
	h.EventsOffset = binary.LittleEndian.Uint64(b[20:28])
	h.EventCount = binary.LittleEndian.Uint64(b[28:36])
	h.BytesLength = binary.LittleEndian.Uint64(b[36:44])
	h.IndexSeqStart = binary.LittleEndian.Uint64(b[44:52])
	h.IndexSeqEnd = binary.LittleEndian.Uint64(b[52:60])
	// b[60:64] padding: skipped.
	return h
}

// DetailEventHeader is the 24-byte header opening every detail record.
// Layout: I H H I I Q.
type DetailEventHeader struct {
	TotalLength uint32
	EventType   uint16
	Flags       uint16
	IndexSeq    uint32
	ThreadID    uint32
	Timestamp   uint64
}

func decodeDetailEventHeader(b []byte) DetailEventHeader {
	_ = b[DetailEventHeaderSize-1]
	return DetailEventHeader{
		TotalLength: binary.LittleEndian.Uint32(b[0:4]),
		EventType:   binary.LittleEndian.Uint16(b[4:6]),
		Flags:       binary.LittleEndian.Uint16(b[6:8]),
		IndexSeq:    binary.LittleEndian.Uint32(b[8:12]),
		ThreadID:    binary.LittleEndian.Uint32(b[12:16]),
		Timestamp:   binary.LittleEndian.Uint64(b[16:24]),
	}
}

// DetailEvent pairs a decoded header with its opaque payload byte range.
// Decoding the payload's contents is explicitly a collaborator's concern.
type DetailEvent struct {
	Header  DetailEventHeader
	Payload []byte
}
