// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import (
	"sync"

	"github.com/dgryski/go-tinylfu"
	"github.com/mjbarlow/deflatezip/bitio"
)

// Container is an opened ZIP archive: its central directory, fully
// parsed, plus a shared bit reader over the archive's bytes for
// materializing entry data on demand.
type Container struct {
	data    []byte
	r       *bitio.Reader
	entries []*Entry
	byName  nameIndex
	cache   *tinylfu.T[int64, []byte]

	// mu serializes Data() calls: r's cursor is mutable shared state
	// over the archive's immutable bytes, so only one entry's data may
	// be in flight at a time.
	mu sync.Mutex
}

// OpenContainer parses data as a ZIP archive: locates the end of
// central directory record (and, if present, the zip64 locator and
// EOCD64), then parses every central directory entry between it and
// the recorded central directory offset.
func OpenContainer(data []byte) (*Container, error) {
	cds, err := readCentralDirectory(data)
	if err != nil {
		return nil, err
	}

	c := &Container{
		data:  data,
		r:     bitio.NewReader(data),
		cache: newDecodeCache(),
	}
	c.entries = make([]*Entry, len(cds))
	for i := range cds {
		c.entries[i] = &Entry{c: c, cd: cds[i]}
	}
	c.byName = buildNameIndex(c.entries)
	return c, nil
}

// Entries returns every central directory entry, in the archive's own
// on-disk order.
func (c *Container) Entries() []*Entry { return c.entries }

// Entry looks up a single entry by its decoded name (a cleaned,
// forward-slash path). Reports false if no entry has that name.
func (c *Container) Entry(name string) (*Entry, bool) {
	return c.byName.lookup(name)
}
