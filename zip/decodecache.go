// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// decodeCacheSize bounds how many entries' decoded bytes this package
// keeps around, admission-filtered by recency/frequency rather than
// strict LRU. 256 entries covers a typical repeated-extraction session
// without holding a whole large archive decompressed in memory.
const decodeCacheSize = 256

func newDecodeCache() *tinylfu.T[int64, []byte] {
	return tinylfu.New[int64, []byte](decodeCacheSize, decodeCacheSize*10, offsetHasher)
}

func offsetHasher(offset int64) uint64 {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(offset >> (8 * i))
	}
	return xxhash.Sum64(buf[:])
}
