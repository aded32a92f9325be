// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

// Magic values identifying the three ATF v2 on-disk structures.
const (
	// IndexMagic opens every index file.
	IndexMagic = "ATI2"

	// IndexFooterMagic closes an index file whose writer shut down cleanly.
	IndexFooterMagic = "2ITA"

	// DetailMagic opens every detail file.
	DetailMagic = "ATD2"
)

// Wire sizes, in bytes, of the fixed-size on-disk records.
const (
	IndexHeaderSize      = 64
	IndexEventSize       = 32
	IndexFooterSize      = 64
	DetailHeaderSize     = 64
	DetailEventHeaderSize = 24

	// detailTailBudget is the number of bytes reserved at the end of a
	// detail file for a footer that has no decoded layout yet (spec Open
	// Question). The sequence table build never walks into this region.
	detailTailBudget = 64
)

// EndianLittle is the only endian byte value this reader accepts.
const EndianLittle = 0x01

// FormatVersion is the only index/detail version this reader accepts.
const FormatVersion = 1

// NoDetailSeq is the sentinel detail_seq value meaning "no paired detail
// event".
const NoDetailSeq = 0xFFFFFFFF

// IndexFlagHasDetailFile is bit 0 of an index header's flags field.
const IndexFlagHasDetailFile = 1 << 0

// Event kinds carried by an index event's event_kind field.
const (
	EventKindCall      = 1
	EventKindReturn    = 2
	EventKindException = 3
)

// Detail event types carried by a detail event header's event_type field.
// Unknown values are accepted and forwarded opaquely; only these two are
// named by spec.md.
const (
	DetailEventFunctionCall   = 3
	DetailEventFunctionReturn = 4
)
