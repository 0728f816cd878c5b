// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import "github.com/cespare/xxhash/v2"

// nameIndex maps a name's xxhash to the entries sharing that hash
// (almost always exactly one), avoiding a linear scan of the central
// directory on repeated Container.Entry lookups. Collisions are
// resolved by a final exact string compare.
type nameIndex map[uint64][]*Entry

func buildNameIndex(entries []*Entry) nameIndex {
	idx := make(nameIndex, len(entries))
	for _, e := range entries {
		h := xxhash.Sum64String(e.cd.Name)
		idx[h] = append(idx[h], e)
	}
	return idx
}

func (idx nameIndex) lookup(name string) (*Entry, bool) {
	for _, e := range idx[xxhash.Sum64String(name)] {
		if e.cd.Name == name {
			return e, true
		}
	}
	return nil, false
}
