// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import "github.com/cespare/xxhash/v2"

// stableHash returns a deterministic, non-negative 64-bit hash of data,
// used for the QUST INDX/CTDA stage-index calculation. A process-local,
// salted hash would not be stable across sessions; xxHash64 is the
// pinned choice here.
func stableHash(data []byte) int64 {
	// Masking the sign bit (rather than negating) avoids the int64
	// overflow edge case where Sum64's top bit pattern is exactly
	// math.MinInt64, whose negation is itself.
	return int64(xxhash.Sum64(data) & 0x7fffffffffffffff)
}
