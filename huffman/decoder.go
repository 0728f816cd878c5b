// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"math/bits"

	"github.com/mjbarlow/deflatezip/bitio"
)

// The decoding structure is based on that of zlib, as adapted by the Go
// standard library's compress/flate: a lookup table of a fixed bit
// width (chunkBits) for codes up to that width, with an overflow link
// table for longer codes. Each chunk packs (value<<4 | bitlength); a
// bitlength greater than chunkBits marks an indirect chunk whose value
// is an index into links.
const (
	chunkBits  = 9
	numChunks  = 1 << chunkBits
	countMask  = 15
	valueShift = 4
)

// Decoder answers "given the next bits, which symbol and how many bits
// consumed" for one canonical Huffman code. It is read-only after
// construction and may be shared freely across readers.
type Decoder struct {
	min      int
	chunks   [numChunks]uint32
	links    [][]uint32
	linkMask uint32
}

// NewDecoder builds a Decoder from a dense length-by-symbol vector.
// Zero-length entries (absent symbols) are accepted; an all-zero vector
// produces an empty decoder that always fails to Decode. Returns
// ErrMalformed if lengths do not form a complete canonical prefix code.
func NewDecoder(lengths []int) (*Decoder, error) {
	d := &Decoder{}
	if !d.init(lengths) {
		return nil, ErrMalformed
	}
	return d, nil
}

func (d *Decoder) init(lengths []int) bool {
	var count [maxCodeLen + 1]int
	var min, max int
	for _, n := range lengths {
		if n == 0 {
			continue
		}
		if min == 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
		count[n]++
	}

	if max == 0 {
		return true
	}

	code := 0
	var nextCode [maxCodeLen + 1]int
	for i := min; i <= max; i++ {
		code <<= 1
		nextCode[i] = code
		code += count[i]
	}
	if code != 1<<uint(max) && !(code == 1 && max == 1) {
		return false
	}

	d.min = min
	if max > chunkBits {
		numLinks := 1 << (uint(max) - chunkBits)
		d.linkMask = uint32(numLinks - 1)

		link := nextCode[chunkBits+1] >> 1
		d.links = make([][]uint32, numChunks-link)
		for j := uint(link); j < numChunks; j++ {
			reverse := int(bits.Reverse16(uint16(j)))
			reverse >>= uint(16 - chunkBits)
			off := j - uint(link)
			d.chunks[reverse] = uint32(off<<valueShift | (chunkBits + 1))
			d.links[off] = make([]uint32, numLinks)
		}
	}

	for sym, n := range lengths {
		if n == 0 {
			continue
		}
		c := nextCode[n]
		nextCode[n]++
		chunk := uint32(sym<<valueShift | n)
		reverse := int(bits.Reverse16(uint16(c)))
		reverse >>= uint(16 - n)
		if n <= chunkBits {
			for off := reverse; off < len(d.chunks); off += 1 << uint(n) {
				d.chunks[off] = chunk
			}
		} else {
			j := reverse & (numChunks - 1)
			value := d.chunks[j] >> valueShift
			linktab := d.links[value]
			reverse >>= chunkBits
			for off := reverse; off < len(linktab); off += 1 << uint(n-chunkBits) {
				linktab[off] = chunk
			}
		}
	}

	return true
}

// Decode consumes bits from r and returns the symbol whose canonical
// code (bit-reversed on the wire, matching Encoder) they spell out.
// Returns ErrMalformed if r's next bits have no assigned symbol, or
// r's own error (e.g. bitio.ErrTruncated) if the stream runs out.
func (d *Decoder) Decode(r *bitio.Reader) (int, error) {
	n := uint(d.min)
	var b uint32
	var nb uint
	for {
		for nb < n {
			bit, err := r.ReadBits(1)
			if err != nil {
				return 0, err
			}
			b |= bit << nb
			nb++
		}
		chunk := d.chunks[b&(numChunks-1)]
		n = uint(chunk & countMask)
		if n > chunkBits {
			chunk = d.links[chunk>>valueShift][(b>>chunkBits)&d.linkMask]
			n = uint(chunk & countMask)
		}
		if n <= nb {
			if n == 0 {
				return 0, ErrMalformed
			}
			return int(chunk >> valueShift), nil
		}
	}
}
