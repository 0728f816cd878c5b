// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package huffman builds and applies canonical Huffman codes over
// arbitrary alphabets, with the bit-reversed wire packing DEFLATE (RFC
// 1951) requires.
package huffman

import (
	"errors"
	"sort"
)

// ErrMalformed reports that a set of code lengths cannot form a complete
// canonical prefix code (Kraft's inequality violated, over- or
// under-subscribed).
var ErrMalformed = errors.New("huffman: code lengths do not form a valid canonical code")

// maxCodeLen bounds the code lengths this package accepts. DEFLATE never
// needs more than 15; double that for headroom in non-DEFLATE callers.
const maxCodeLen = 31

// CodeLength pairs an alphabet index with its bit length. A Length of 0
// means the symbol is absent from the code.
type CodeLength struct {
	Symbol int
	Length int
}

// CodeRange is a "bootstrap" breakpoint: symbols in [Symbol, next
// range's Symbol) share this Length. A sequence of these, sorted by
// Symbol and terminated by a sentinel whose Symbol is one past the end
// of the alphabet, is a compact way to describe runs of identically
// lengthed symbols.
type CodeRange struct {
	Symbol int
	Length int
}

// LengthsFromRanges expands a bootstrap range sequence into a dense
// length-by-symbol vector.
func LengthsFromRanges(ranges []CodeRange) []int {
	if len(ranges) == 0 {
		return nil
	}
	total := ranges[len(ranges)-1].Symbol
	out := make([]int, total)
	for i := 0; i+1 < len(ranges); i++ {
		length := ranges[i].Length
		for sym := ranges[i].Symbol; sym < ranges[i+1].Symbol; sym++ {
			out[sym] = length
		}
	}
	return out
}

// LengthsFromDense truncates a dense code-length vector indexed by
// symbol at its first -1 sentinel; the sentinel and everything after it
// are dropped.
func LengthsFromDense(dense []int) []int {
	for i, v := range dense {
		if v == -1 {
			return dense[:i]
		}
	}
	return dense
}

// LengthsFromPairs converts an explicit (symbol, length) list into a
// dense length-by-symbol vector, sized to the highest symbol seen.
func LengthsFromPairs(pairs []CodeLength) []int {
	max := -1
	for _, p := range pairs {
		if p.Symbol > max {
			max = p.Symbol
		}
	}
	if max < 0 {
		return nil
	}
	out := make([]int, max+1)
	for _, p := range pairs {
		out[p.Symbol] = p.Length
	}
	return out
}

// canonicalAssignment walks symbols sorted by (length ascending, symbol
// ascending) and assigns the canonical MSB-first code to each, per RFC
// 1951 §3.2.2: a running integer starting at 0 at the first non-zero
// length, left-shifted by the gap in length at each length transition.
//
// Returns the MSB-first code and length per symbol (absent symbols
// carry length 0) and the maximum length seen. Reports !ok if lengths
// cannot form a complete prefix code; an empty input is always ok (an
// empty tree, valid per RFC 1951's HDIST special case).
func canonicalAssignment(lengths []int) (codes []uint32, outLengths []int, maxLen int, ok bool) {
	var count [maxCodeLen + 1]int
	min := 0
	for _, n := range lengths {
		if n == 0 {
			continue
		}
		if n < 0 || n > maxCodeLen {
			return nil, nil, 0, false
		}
		if min == 0 || n < min {
			min = n
		}
		if n > maxLen {
			maxLen = n
		}
		count[n]++
	}

	codes = make([]uint32, len(lengths))
	outLengths = make([]int, len(lengths))
	if maxLen == 0 {
		return codes, outLengths, 0, true
	}

	code := 0
	var nextCode [maxCodeLen + 1]int
	for i := min; i <= maxLen; i++ {
		code <<= 1
		nextCode[i] = code
		code += count[i]
	}

	// Completeness: we must have assigned exactly the 1<<maxLen possible
	// bit patterns, except the degenerate single-symbol code (max==1,
	// one symbol) which zlib/DEFLATE both special-case.
	if code != 1<<uint(maxLen) && !(code == 1 && maxLen == 1) {
		return nil, nil, 0, false
	}

	type bySymbol struct {
		symbol, length int
	}
	var present []bySymbol
	for sym, n := range lengths {
		if n > 0 {
			present = append(present, bySymbol{sym, n})
		}
	}
	sort.Slice(present, func(i, j int) bool {
		if present[i].length != present[j].length {
			return present[i].length < present[j].length
		}
		return present[i].symbol < present[j].symbol
	})

	var assign [maxCodeLen + 1]int
	for i := min; i <= maxLen; i++ {
		assign[i] = nextCode[i]
	}
	for _, e := range present {
		codes[e.symbol] = uint32(assign[e.length])
		outLengths[e.symbol] = e.length
		assign[e.length]++
	}

	return codes, outLengths, maxLen, true
}

// reverseBits reverses the low n bits of v, preserving only those bits.
// Its own inverse: reverseBits(reverseBits(v, n), n) == v for v < 1<<n.
func reverseBits(v uint32, n int) uint32 {
	var r uint32
	for i := 0; i < n; i++ {
		if v&(1<<uint(i)) != 0 {
			r |= 1 << uint(n-1-i)
		}
	}
	return r
}
