// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

// DetailReader is a memory-mapped reader over a variable-length-record ATF
// v2 detail file. It walks the record chain once at open to build a
// sequence→offset table, giving O(1) random access by detail sequence
// number.
type DetailReader struct {
	path   string
	mapped *MappedFile
	header DetailHeader

	// offsets[i] is the byte offset of the i'th detail record. Its index
	// position is that record's detail sequence number.
	offsets []int64
}

// OpenDetailReader maps path, validates its 64-byte header, then walks the
// record chain from events_offset, stopping before any record whose
// total_length is less than 24 (the header size) or whose 24-byte header
// would reach into the reserved tail budget. A record whose header fits but
// whose total_length runs past that point is still entered in the table.
func OpenDetailReader(path string) (*DetailReader, error) {
	mapped, err := openMappedFile(path)
	if err != nil {
		return nil, err
	}

	r := &DetailReader{path: path, mapped: mapped}
	if err := r.parseHeader(); err != nil {
		mapped.Close()
		return nil, err
	}
	r.buildOffsetTable()
	return r, nil
}

func (r *DetailReader) parseHeader() error {
	if r.mapped.Size() < DetailHeaderSize {
		return &HeaderValidationError{Path: r.path, Field: "size", Reason: "file smaller than 64-byte header"}
	}
	raw, err := r.mapped.Slice(0, DetailHeaderSize)
	if err != nil {
		return err
	}
	h := decodeDetailHeader(raw)

	if string(h.Magic[:]) != DetailMagic {
		return &HeaderValidationError{Path: r.path, Field: "magic", Reason: "expected ATD2"}
	}
	if h.Endian != EndianLittle {
		return &HeaderValidationError{Path: r.path, Field: "endian", Reason: "only little-endian is supported"}
	}
	if h.Version != FormatVersion {
		return &HeaderValidationError{Path: r.path, Field: "version", Reason: "only version 1 is supported"}
	}
	if h.EventsOffset > uint64(r.mapped.Size()) {
		return &HeaderValidationError{Path: r.path, Field: "events_offset", Reason: "beyond end of file"}
	}

	r.header = h
	return nil
}

// buildOffsetTable is the single forward walk spec.md §4.3 describes: the
// stray tail of a truncated write is silently excluded, which is the one
// place besides the index footer fallback where the core degrades
// gracefully instead of erroring.
func (r *DetailReader) buildOffsetTable() {
	size := r.mapped.Size()
	endOffset := size - detailTailBudget
	offset := int64(r.header.EventsOffset)

	for offset+DetailEventHeaderSize <= endOffset {
		lenBytes, err := r.mapped.Slice(offset, 4)
		if err != nil {
			break
		}
		totalLength := int64(uint32(lenBytes[0]) | uint32(lenBytes[1])<<8 |
			uint32(lenBytes[2])<<16 | uint32(lenBytes[3])<<24)
		if totalLength < DetailEventHeaderSize {
			break
		}

		r.offsets = append(r.offsets, offset)
		offset += totalLength
	}
}

// Len returns the number of detail records in the sequence table.
func (r *DetailReader) Len() int64 { return int64(len(r.offsets)) }

// Get returns the detail event at detail_seq, or (DetailEvent{}, false) if
// out of range. O(1).
func (r *DetailReader) Get(detailSeq int64) (DetailEvent, bool, error) {
	if r.mapped == nil {
		return DetailEvent{}, false, &ReaderClosedError{Path: r.path}
	}
	if detailSeq < 0 || detailSeq >= int64(len(r.offsets)) {
		return DetailEvent{}, false, nil
	}

	offset := r.offsets[detailSeq]
	headerBytes, err := r.mapped.Slice(offset, DetailEventHeaderSize)
	if err != nil {
		return DetailEvent{}, false, &EventDecodingError{Path: r.path, Seq: detailSeq, Reason: "header truncated"}
	}
	header := decodeDetailEventHeader(headerBytes)

	if int64(header.TotalLength) < DetailEventHeaderSize {
		return DetailEvent{}, false, &EventDecodingError{Path: r.path, Seq: detailSeq, Reason: "total_length shorter than header"}
	}
	payload, err := r.mapped.Slice(offset+DetailEventHeaderSize, int64(header.TotalLength)-DetailEventHeaderSize)
	if err != nil {
		return DetailEvent{}, false, &EventDecodingError{Path: r.path, Seq: detailSeq, Reason: "payload overruns mapped region"}
	}

	return DetailEvent{Header: header, Payload: payload}, true, nil
}

// GetByIndexSeq performs an O(n) scan for the first detail event whose
// header links back to indexSeq. It exists for diagnostic/back-reference
// use; production code should prefer ThreadReader's forward path.
func (r *DetailReader) GetByIndexSeq(indexSeq uint32) (DetailEvent, bool, error) {
	for seq := int64(0); seq < int64(len(r.offsets)); seq++ {
		ev, ok, err := r.Get(seq)
		if err != nil {
			return DetailEvent{}, false, err
		}
		if ok && ev.Header.IndexSeq == indexSeq {
			return ev, true, nil
		}
	}
	return DetailEvent{}, false, nil
}

// Iter returns a fresh, sequence-ordered iterator over every detail event.
func (r *DetailReader) Iter() *DetailEventIter {
	return &DetailEventIter{r: r}
}

// DetailEventIter walks a DetailReader's events in sequence order.
type DetailEventIter struct {
	r    *DetailReader
	seq  int64
	cur  DetailEvent
	err  error
	done bool
}

// Next advances to the next event, returning false at end of stream or on
// the first decoding error.
func (it *DetailEventIter) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	for it.seq < it.r.Len() {
		ev, ok, err := it.r.Get(it.seq)
		it.seq++
		if err != nil {
			it.err = err
			return false
		}
		if ok {
			it.cur = ev
			return true
		}
	}
	it.done = true
	return false
}

// Event returns the event produced by the most recent successful Next.
func (it *DetailEventIter) Event() DetailEvent { return it.cur }

// Err returns the error, if any, that stopped iteration early.
func (it *DetailEventIter) Err() error { return it.err }

// ThreadID returns the owning thread's id.
func (r *DetailReader) ThreadID() uint32 { return r.header.ThreadID }

// Close releases the underlying mapped file. Idempotent.
func (r *DetailReader) Close() error {
	if r.mapped == nil {
		return nil
	}
	err := r.mapped.Close()
	r.mapped = nil
	return err
}
