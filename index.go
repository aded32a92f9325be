// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

// IndexReader is a memory-mapped, O(1) random-access reader over a fixed
// 32-byte-record ATF v2 index file.
type IndexReader struct {
	path       string
	mapped     *MappedFile
	header     IndexHeader
	footer     IndexFooter
	hasFooter  bool
	eventCount int64
	checksum   uint64
	haveSum    bool
}

// OpenIndexReader maps path, parses and validates the 64-byte header, and
// resolves the authoritative event count from the footer (when present and
// valid) or by dividing the events region by the fixed record size.
func OpenIndexReader(path string) (*IndexReader, error) {
	mapped, err := openMappedFile(path)
	if err != nil {
		return nil, err
	}

	r := &IndexReader{path: path, mapped: mapped}
	if err := r.parseHeader(); err != nil {
		mapped.Close()
		return nil, err
	}
	r.resolveFooter()
	return r, nil
}

func (r *IndexReader) parseHeader() error {
	if r.mapped.Size() < IndexHeaderSize {
		return &HeaderValidationError{Path: r.path, Field: "size", Reason: "file smaller than 64-byte header"}
	}
	raw, err := r.mapped.Slice(0, IndexHeaderSize)
	if err != nil {
		return err
	}
	h := decodeIndexHeader(raw)

	if string(h.Magic[:]) != IndexMagic {
		return &HeaderValidationError{Path: r.path, Field: "magic", Reason: "expected ATI2"}
	}
	if h.Endian != EndianLittle {
		return &HeaderValidationError{Path: r.path, Field: "endian", Reason: "only little-endian is supported"}
	}
	if h.Version != FormatVersion {
		return &HeaderValidationError{Path: r.path, Field: "version", Reason: "only version 1 is supported"}
	}
	if h.EventSize != IndexEventSize {
		return &HeaderValidationError{Path: r.path, Field: "event_size", Reason: "only 32-byte events are supported"}
	}
	if h.EventsOffset > uint64(r.mapped.Size()) {
		return &HeaderValidationError{Path: r.path, Field: "events_offset", Reason: "beyond end of file"}
	}

	r.header = h
	return nil
}

// resolveFooter tries to adopt the footer as authoritative; a missing or
// wrong-magic footer is not an error, per spec.md §4.2 — it falls back to
// the calculated count. This is the only "soft" case the core allows.
func (r *IndexReader) resolveFooter() {
	footerOffset := int64(r.header.FooterOffset)
	if footerOffset >= 0 && footerOffset+IndexFooterSize <= r.mapped.Size() {
		if raw, err := r.mapped.Slice(footerOffset, IndexFooterSize); err == nil {
			f := decodeIndexFooter(raw)
			if f.isValid() {
				r.footer = f
				r.hasFooter = true
				r.eventCount = int64(f.EventCount)
				return
			}
		}
	}

	eventsRegion := r.mapped.Size() - int64(r.header.EventsOffset)
	if eventsRegion < 0 {
		eventsRegion = 0
	}
	r.eventCount = eventsRegion / IndexEventSize
}

// Len returns the event count.
func (r *IndexReader) Len() int64 { return r.eventCount }

// Get returns the event at seq, an O(1) bounds-checked mapped read.
func (r *IndexReader) Get(seq int64) (IndexEvent, error) {
	if r.mapped == nil {
		return IndexEvent{}, &ReaderClosedError{Path: r.path}
	}
	if seq < 0 || seq >= r.eventCount {
		return IndexEvent{}, &EventDecodingError{Path: r.path, Seq: seq, Reason: "sequence out of bounds"}
	}
	offset := int64(r.header.EventsOffset) + seq*IndexEventSize
	raw, err := r.mapped.Slice(offset, IndexEventSize)
	if err != nil {
		return IndexEvent{}, &EventDecodingError{Path: r.path, Seq: seq, Reason: "record truncated"}
	}
	return decodeIndexEvent(raw), nil
}

// Iter returns a fresh, finite iterator over every event in sequence order.
// Each call to Iter starts a new pass from the beginning.
func (r *IndexReader) Iter() *IndexEventIter {
	return &IndexEventIter{r: r}
}

// IndexEventIter walks an IndexReader's events in sequence order, in the
// style of bufio.Scanner: call Next until it returns false, then check Err.
type IndexEventIter struct {
	r    *IndexReader
	seq  int64
	cur  IndexEvent
	err  error
	done bool
}

// Next advances to the next event, returning false at end of stream or on
// the first decoding error.
func (it *IndexEventIter) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if it.seq >= it.r.eventCount {
		it.done = true
		return false
	}
	ev, err := it.r.Get(it.seq)
	it.seq++
	if err != nil {
		it.err = err
		return false
	}
	it.cur = ev
	return true
}

// Event returns the event produced by the most recent successful Next.
func (it *IndexEventIter) Event() IndexEvent { return it.cur }

// Err returns the error, if any, that stopped iteration early.
func (it *IndexEventIter) Err() error { return it.err }

// HasDetail reports whether this thread's index declares a companion
// detail file via the HAS_DETAIL_FILE flag.
func (r *IndexReader) HasDetail() bool {
	return r.header.Flags&IndexFlagHasDetailFile != 0
}

// ThreadID returns the owning thread's id.
func (r *IndexReader) ThreadID() uint32 { return r.header.ThreadID }

// TimeRange returns (start, end) in nanoseconds, preferring the footer's
// values when a valid footer was adopted.
func (r *IndexReader) TimeRange() (uint64, uint64) {
	if r.hasFooter {
		return r.footer.TimeStartNs, r.footer.TimeEndNs
	}
	return r.header.TimeStartNs, r.header.TimeEndNs
}

// Checksum computes (memoizing) an xxHash64 digest over the raw events
// region. It is additive instrumentation, not a spec invariant: see
// SPEC_FULL.md §4.2.
func (r *IndexReader) Checksum() (uint64, error) {
	if r.haveSum {
		return r.checksum, nil
	}
	if r.mapped == nil {
		return 0, &ReaderClosedError{Path: r.path}
	}
	start := int64(r.header.EventsOffset)
	length := r.eventCount * IndexEventSize
	raw, err := r.mapped.Slice(start, length)
	if err != nil {
		return 0, err
	}
	r.checksum = checksumBytes(raw)
	r.haveSum = true
	return r.checksum, nil
}

// Close releases the underlying mapped file. Idempotent.
func (r *IndexReader) Close() error {
	if r.mapped == nil {
		return nil
	}
	err := r.mapped.Close()
	r.mapped = nil
	return err
}
