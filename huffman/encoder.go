// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"errors"
	"fmt"

	"github.com/mjbarlow/deflatezip/bitio"
)

// ErrSymbolNotAssigned is returned when Encode or BitCost is asked to
// emit a symbol that has no code (its length was 0, or it's outside the
// alphabet the Encoder was built with). This is a programmer-error case
// per the caller's own statistics, never something a well-formed input
// stream can provoke, so it's surfaced as an error rather than a panic.
var ErrSymbolNotAssigned = errors.New("huffman: symbol has no assigned code")

// entry is the encoding form of one symbol's code: bitPattern is
// already in DEFLATE wire order (bit-reversed relative to the canonical
// MSB-first code), and assigned is false for symbols with no code.
type entry struct {
	bitPattern uint32
	length     int
	assigned   bool
}

// Encoder builds a canonical Huffman code from (symbol, code_length)
// inputs and emits codes through a bitio.Writer.
type Encoder struct {
	table []entry
}

// NewEncoder builds an Encoder from a dense length-by-symbol vector
// (use LengthsFromRanges, LengthsFromDense, or LengthsFromPairs to
// normalize other input shapes into this one). Returns ErrMalformed if
// lengths do not form a complete canonical prefix code.
func NewEncoder(lengths []int) (*Encoder, error) {
	codes, outLengths, _, ok := canonicalAssignment(lengths)
	if !ok {
		return nil, ErrMalformed
	}
	table := make([]entry, len(lengths))
	for sym, l := range outLengths {
		if l == 0 {
			continue
		}
		table[sym] = entry{
			bitPattern: reverseBits(codes[sym], l),
			length:     l,
			assigned:   true,
		}
	}
	return &Encoder{table: table}, nil
}

// Encode writes symbol's assigned code through w. Returns
// ErrSymbolNotAssigned if symbol has no code.
func (e *Encoder) Encode(w *bitio.Writer, symbol int) error {
	if symbol < 0 || symbol >= len(e.table) || !e.table[symbol].assigned {
		return fmt.Errorf("%w: %d", ErrSymbolNotAssigned, symbol)
	}
	ent := e.table[symbol]
	w.WriteBits(ent.bitPattern, uint(ent.length))
	return nil
}

// SymbolCount pairs a symbol with how many times it occurs, the input
// shape BitCost expects.
type SymbolCount struct {
	Symbol int
	Count  int64
}

// BitCost returns sum(count_i * bit_length_i) over stats, the number of
// bits this code would need to encode that symbol distribution.
// Returns ErrSymbolNotAssigned if any counted symbol has no code.
func (e *Encoder) BitCost(stats []SymbolCount) (int64, error) {
	var total int64
	for _, s := range stats {
		if s.Symbol < 0 || s.Symbol >= len(e.table) || !e.table[s.Symbol].assigned {
			return 0, fmt.Errorf("%w: %d", ErrSymbolNotAssigned, s.Symbol)
		}
		total += s.Count * int64(e.table[s.Symbol].length)
	}
	return total, nil
}

// Len reports the length assigned to symbol, and whether it has a code
// at all.
func (e *Encoder) Len(symbol int) (length int, assigned bool) {
	if symbol < 0 || symbol >= len(e.table) {
		return 0, false
	}
	return e.table[symbol].length, e.table[symbol].assigned
}
