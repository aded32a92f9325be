// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import "container/heap"

// mergeCursor is one entry in the k-way merge heap: the timestamp of
// threads[slot]'s event at seq, kept so the heap never has to re-read a
// mapped event just to compare two cursors.
type mergeCursor struct {
	timestampNs uint64
	slot        int
	seq         int64
}

// cursorHeap orders mergeCursor entries by timestamp, then by thread slot
// (the manifest-declared order), then by per-thread sequence. The sequence
// tie-break never actually surfaces, since sequences are ascending within a
// thread, but it keeps the comparator a total order.
type cursorHeap []mergeCursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	if h[i].timestampNs != h[j].timestampNs {
		return h[i].timestampNs < h[j].timestampNs
	}
	if h[i].slot != h[j].slot {
		return h[i].slot < h[j].slot
	}
	return h[i].seq < h[j].seq
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) { *h = append(*h, x.(mergeCursor)) }

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MergedIterator is a single-pass, globally time-ordered k-way merge across
// a session's per-thread index streams, produced by a min-heap keyed on
// (timestamp_ns, thread_slot, seq).
type MergedIterator struct {
	threads []*ThreadReader
	heap    cursorHeap
	cur     mergeCursor
	curEv   IndexEvent
	err     error
}

func newMergedIterator(threads []*ThreadReader) *MergedIterator {
	it := &MergedIterator{threads: threads}
	for slot, thread := range threads {
		if thread.Index.Len() == 0 {
			continue
		}
		ev, err := thread.Index.Get(0)
		if err != nil {
			it.err = err
			return it
		}
		it.heap = append(it.heap, mergeCursor{timestampNs: ev.TimestampNs, slot: slot, seq: 0})
	}
	heap.Init(&it.heap)
	return it
}

// Next advances to the next event in global timestamp order, returning
// false when the merge is exhausted or an underlying read fails.
func (it *MergedIterator) Next() bool {
	if it.err != nil || it.heap.Len() == 0 {
		return false
	}

	cur := heap.Pop(&it.heap).(mergeCursor)
	ev, err := it.threads[cur.slot].Index.Get(cur.seq)
	if err != nil {
		it.err = err
		return false
	}

	nextSeq := cur.seq + 1
	if nextSeq < it.threads[cur.slot].Index.Len() {
		nextEv, err := it.threads[cur.slot].Index.Get(nextSeq)
		if err != nil {
			it.err = err
			return false
		}
		heap.Push(&it.heap, mergeCursor{timestampNs: nextEv.TimestampNs, slot: cur.slot, seq: nextSeq})
	}

	it.cur = cur
	it.curEv = ev
	return true
}

// ThreadSlot returns the manifest-declared slot of the most recent event
// produced by Next.
func (it *MergedIterator) ThreadSlot() int { return it.cur.slot }

// Event returns the event produced by the most recent successful Next.
func (it *MergedIterator) Event() IndexEvent { return it.curEv }

// Err returns the error, if any, that stopped iteration early.
func (it *MergedIterator) Err() error { return it.err }
