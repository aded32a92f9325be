// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package atf

import "github.com/cespare/xxhash/v2"

// checksumBytes computes an xxHash64 digest over a byte range. It is used
// as additive instrumentation over the events region of an index file, not
// to validate the on-disk footer checksum field, whose writer-side
// algorithm spec.md does not define.
func checksumBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}
