// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import (
	"encoding/json"
	"fmt"
	"os"
)

// ThreadInfo is one manifest-declared thread.
type ThreadInfo struct {
	ID        uint32 `json:"id"`
	HasDetail bool   `json:"has_detail,omitempty"`
}

// ManifestInfo is a session's parsed manifest.json. Unknown top-level keys
// are ignored for forward compatibility.
type ManifestInfo struct {
	Threads     []ThreadInfo `json:"threads"`
	TimeStartNs uint64       `json:"time_start_ns"`
	TimeEndNs   uint64       `json:"time_end_ns"`
}

// rawManifest mirrors the wire shape loosely enough to let us validate
// field types ourselves instead of letting encoding/json silently coerce
// or zero them, matching spec.md §7's ManifestError rules. metadata,
// thread_ids and event_count are not part of spec.md §6's wire shape but
// are validated, when present, per spec.md §7's rule list — unknown keys
// are otherwise ignored for forward compatibility.
type rawManifest struct {
	Threads     []json.RawMessage `json:"threads"`
	TimeStartNs json.RawMessage   `json:"time_start_ns"`
	TimeEndNs   json.RawMessage   `json:"time_end_ns"`
	Metadata    json.RawMessage   `json:"metadata"`
	ThreadIDs   json.RawMessage   `json:"thread_ids"`
	EventCount  json.RawMessage   `json:"event_count"`
}

type rawThreadInfo struct {
	ID        json.RawMessage `json:"id"`
	HasDetail json.RawMessage `json:"has_detail"`
}

// LoadManifest reads and validates manifest.json at path.
func LoadManifest(path string) (ManifestInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ManifestInfo{}, &ManifestError{Path: path, Reason: "cannot read manifest", Err: err}
	}
	return ParseManifest(path, data)
}

// ParseManifest validates and decodes manifest JSON bytes. path is used
// only for error context.
func ParseManifest(path string, data []byte) (ManifestInfo, error) {
	if len(data) == 0 {
		return ManifestInfo{}, &ManifestError{Path: path, Reason: "empty payload"}
	}

	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return ManifestInfo{}, &ManifestError{Path: path, Reason: "invalid JSON", Err: err}
	}

	startNs, err := optionalUint64(raw.TimeStartNs, "time_start_ns")
	if err != nil {
		return ManifestInfo{}, &ManifestError{Path: path, Reason: err.Error()}
	}
	endNs, err := optionalUint64(raw.TimeEndNs, "time_end_ns")
	if err != nil {
		return ManifestInfo{}, &ManifestError{Path: path, Reason: err.Error()}
	}
	if endNs < startNs {
		return ManifestInfo{}, &ManifestError{Path: path, Reason: "time_end_ns is before time_start_ns"}
	}

	threads := make([]ThreadInfo, 0, len(raw.Threads))
	for i, rt := range raw.Threads {
		info, err := parseThreadInfo(rt)
		if err != nil {
			return ManifestInfo{}, &ManifestError{Path: path, Reason: fmt.Sprintf("threads[%d]: %s", i, err)}
		}
		threads = append(threads, info)
	}

	if len(raw.Metadata) > 0 {
		var m map[string]any
		if err := json.Unmarshal(raw.Metadata, &m); err != nil {
			return ManifestInfo{}, &ManifestError{Path: path, Reason: "metadata is not an object"}
		}
	}

	if len(raw.ThreadIDs) > 0 {
		var ids []json.RawMessage
		if err := json.Unmarshal(raw.ThreadIDs, &ids); err != nil {
			return ManifestInfo{}, &ManifestError{Path: path, Reason: "thread_ids is not a list"}
		}
		for i, idRaw := range ids {
			var id float64
			if err := json.Unmarshal(idRaw, &id); err != nil {
				return ManifestInfo{}, &ManifestError{Path: path, Reason: fmt.Sprintf("thread_ids[%d] is not numeric", i)}
			}
		}
	}

	if len(raw.EventCount) > 0 {
		var count float64
		if err := json.Unmarshal(raw.EventCount, &count); err != nil {
			return ManifestInfo{}, &ManifestError{Path: path, Reason: "event_count is not numeric"}
		}
		if count < 0 {
			return ManifestInfo{}, &ManifestError{Path: path, Reason: "event_count is negative"}
		}
	}

	return ManifestInfo{Threads: threads, TimeStartNs: startNs, TimeEndNs: endNs}, nil
}

func parseThreadInfo(raw json.RawMessage) (ThreadInfo, error) {
	var rt rawThreadInfo
	if err := json.Unmarshal(raw, &rt); err != nil {
		return ThreadInfo{}, fmt.Errorf("not an object")
	}

	if len(rt.ID) == 0 {
		return ThreadInfo{}, fmt.Errorf("missing id")
	}
	var id float64
	if err := json.Unmarshal(rt.ID, &id); err != nil {
		return ThreadInfo{}, fmt.Errorf("id is not numeric")
	}
	if id < 0 {
		return ThreadInfo{}, fmt.Errorf("id is negative")
	}

	hasDetail := false
	if len(rt.HasDetail) > 0 {
		if err := json.Unmarshal(rt.HasDetail, &hasDetail); err != nil {
			return ThreadInfo{}, fmt.Errorf("has_detail is not a boolean")
		}
	}

	return ThreadInfo{ID: uint32(id), HasDetail: hasDetail}, nil
}

func optionalUint64(raw json.RawMessage, field string) (uint64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%s is not numeric", field)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s is negative", field)
	}
	return uint64(v), nil
}
