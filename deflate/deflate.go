// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deflate decodes the DEFLATE compressed data format (RFC 1951):
// stored, fixed-Huffman, and dynamic-Huffman blocks, built on top of
// bitio for bit packing and huffman for the Huffman layer.
package deflate

import (
	"errors"
	"fmt"

	"github.com/mjbarlow/deflatezip/bitio"
	"github.com/mjbarlow/deflatezip/huffman"
)

// ErrMalformed reports a DEFLATE bitstream that doesn't parse: a
// reserved BTYPE, a stored-block LEN/NLEN mismatch, a distance out of
// range, a bad dynamic-header run-length, or the stream running out of
// bits mid-block.
var ErrMalformed = errors.New("deflate: malformed stream")

const (
	maxNumLit  = 288 // RFC 1951 §3.2.7: 286 used, up to 288 representable
	maxNumDist = 32  // 30 used, up to 32 representable
	numCodes   = 19
	endBlock   = 256

	maxMatchOffset = 1 << 15
)

// codeOrder is the permutation RFC 1951 §3.2.7 stores the code-length
// alphabet's own code lengths in.
var codeOrder = [numCodes]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// lengthBase and lengthExtraBits give the base match length and number
// of extra bits for length codes 257..285, RFC 1951 §3.2.5.
var lengthBase = [...]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}
var lengthExtraBits = [...]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtraBits give the base distance and number of
// extra bits for distance codes 0..29, RFC 1951 §3.2.5.
var distBase = [...]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}
var distExtraBits = [...]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

var fixedLiteralDecoder *huffman.Decoder
var fixedDistanceDecoder *huffman.Decoder

func init() {
	// RFC 1951 §3.2.6: fixed literal/length code lengths.
	lit := make([]int, 288)
	for i := 0; i < 144; i++ {
		lit[i] = 8
	}
	for i := 144; i < 256; i++ {
		lit[i] = 9
	}
	for i := 256; i < 280; i++ {
		lit[i] = 7
	}
	for i := 280; i < 288; i++ {
		lit[i] = 8
	}
	var err error
	fixedLiteralDecoder, err = huffman.NewDecoder(lit)
	if err != nil {
		panic(err)
	}

	dist := make([]int, 32)
	for i := range dist {
		dist[i] = 5
	}
	fixedDistanceDecoder, err = huffman.NewDecoder(dist)
	if err != nil {
		panic(err)
	}
}

// Decode reads a sequence of DEFLATE blocks from r, per RFC 1951,
// returning the decompressed bytes. r's cursor ends at the next byte
// boundary after the final block.
func Decode(r *bitio.Reader) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrMalformed, rec)
		}
	}()

	var output []byte
	for {
		final, err := r.ReadBits(1)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		btype, err := r.ReadBits(2)
		if err != nil {
			return nil, wrapTruncated(err)
		}

		switch btype {
		case 0: // stored
			output, err = decodeStored(r, output)
		case 1: // fixed Huffman
			output, err = decodeHuffmanBlock(r, fixedLiteralDecoder, fixedDistanceDecoder, output)
		case 2: // dynamic Huffman
			var litDec, distDec *huffman.Decoder
			litDec, distDec, err = readDynamicTables(r)
			if err == nil {
				output, err = decodeHuffmanBlock(r, litDec, distDec, output)
			}
		default: // 3 is reserved
			return nil, fmt.Errorf("%w: reserved BTYPE", ErrMalformed)
		}
		if err != nil {
			return nil, err
		}

		if final == 1 {
			break
		}
	}
	r.AlignToByte()
	return output, nil
}

func wrapTruncated(err error) error {
	if errors.Is(err, bitio.ErrTruncated) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return err
}

// decodeStored copies a stored (BTYPE 00) block: align to byte, read
// LEN/NLEN, verify NLEN == ^LEN, copy LEN raw bytes.
func decodeStored(r *bitio.Reader, output []byte) ([]byte, error) {
	r.AlignToByte()
	buf, err := r.ReadAlignedBytes(4)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	n := int(buf[0]) | int(buf[1])<<8
	nn := int(buf[2]) | int(buf[3])<<8
	if uint16(nn) != uint16(^n) {
		return nil, fmt.Errorf("%w: stored block LEN/NLEN mismatch", ErrMalformed)
	}
	if n == 0 {
		return output, nil
	}
	data, err := r.ReadAlignedBytes(n)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	return append(output, data...), nil
}

// readDynamicTables reads a dynamic-Huffman block header (HLIT, HDIST,
// HCLEN, the code-length alphabet, then the literal/length and distance
// code lengths it encodes) and builds the two decoders.
func readDynamicTables(r *bitio.Reader) (lit, dist *huffman.Decoder, err error) {
	hlitRaw, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, wrapTruncated(err)
	}
	hdistRaw, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, wrapTruncated(err)
	}
	hclenRaw, err := r.ReadBits(4)
	if err != nil {
		return nil, nil, wrapTruncated(err)
	}
	nlit := int(hlitRaw) + 257
	ndist := int(hdistRaw) + 1
	nclen := int(hclenRaw) + 4
	if nlit > maxNumLit || ndist > maxNumDist {
		return nil, nil, fmt.Errorf("%w: HLIT/HDIST out of range", ErrMalformed)
	}

	codebits := make([]int, numCodes)
	for i := 0; i < nclen; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, nil, wrapTruncated(err)
		}
		codebits[codeOrder[i]] = int(v)
	}
	clenDec, err := huffman.NewDecoder(codebits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: code-length table: %v", ErrMalformed, err)
	}

	lengths := make([]int, nlit+ndist)
	for i := 0; i < len(lengths); {
		sym, err := clenDec.Decode(r)
		if err != nil {
			return nil, nil, wrapTruncated(err)
		}
		switch {
		case sym < 16:
			lengths[i] = sym
			i++
		case sym == 16: // repeat previous 3-6 times
			if i == 0 {
				return nil, nil, fmt.Errorf("%w: repeat with no previous length", ErrMalformed)
			}
			extra, err := r.ReadBits(2)
			if err != nil {
				return nil, nil, wrapTruncated(err)
			}
			rep := 3 + int(extra)
			if i+rep > len(lengths) {
				return nil, nil, fmt.Errorf("%w: run-length overflow", ErrMalformed)
			}
			prev := lengths[i-1]
			for j := 0; j < rep; j++ {
				lengths[i] = prev
				i++
			}
		case sym == 17: // 3-10 zeros
			extra, err := r.ReadBits(3)
			if err != nil {
				return nil, nil, wrapTruncated(err)
			}
			rep := 3 + int(extra)
			if i+rep > len(lengths) {
				return nil, nil, fmt.Errorf("%w: run-length overflow", ErrMalformed)
			}
			i += rep
		case sym == 18: // 11-138 zeros
			extra, err := r.ReadBits(7)
			if err != nil {
				return nil, nil, wrapTruncated(err)
			}
			rep := 11 + int(extra)
			if i+rep > len(lengths) {
				return nil, nil, fmt.Errorf("%w: run-length overflow", ErrMalformed)
			}
			i += rep
		default:
			return nil, nil, fmt.Errorf("%w: bad code-length symbol", ErrMalformed)
		}
	}

	lit, err = huffman.NewDecoder(lengths[:nlit])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: literal/length table: %v", ErrMalformed, err)
	}
	dist, err = huffman.NewDecoder(lengths[nlit:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: distance table: %v", ErrMalformed, err)
	}
	return lit, dist, nil
}

// decodeHuffmanBlock decodes literal/length and distance symbols until
// the end-of-block marker, appending to output. A match whose distance
// is shorter than its length produces a run by self-overlap: bytes are
// copied one at a time from distance bytes behind the write cursor.
func decodeHuffmanBlock(r *bitio.Reader, lit, dist *huffman.Decoder, output []byte) ([]byte, error) {
	for {
		sym, err := lit.Decode(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		switch {
		case sym < 256:
			output = append(output, byte(sym))
			continue
		case sym == endBlock:
			return output, nil
		case sym < maxNumLit:
			idx := sym - 257
			if idx >= len(lengthBase) {
				return nil, fmt.Errorf("%w: bad length code %d", ErrMalformed, sym)
			}
			length := lengthBase[idx]
			if nb := lengthExtraBits[idx]; nb > 0 {
				extra, err := r.ReadBits(nb)
				if err != nil {
					return nil, wrapTruncated(err)
				}
				length += int(extra)
			}

			distSym, err := dist.Decode(r)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			if distSym >= len(distBase) {
				return nil, fmt.Errorf("%w: bad distance code %d", ErrMalformed, distSym)
			}
			distance := distBase[distSym]
			if nb := distExtraBits[distSym]; nb > 0 {
				extra, err := r.ReadBits(nb)
				if err != nil {
					return nil, wrapTruncated(err)
				}
				distance += int(extra)
			}
			if distance > maxMatchOffset || distance > len(output) {
				return nil, fmt.Errorf("%w: distance %d before start of output", ErrMalformed, distance)
			}

			start := len(output) - distance
			for i := 0; i < length; i++ {
				output = append(output, output[start+i])
			}
		default:
			return nil, fmt.Errorf("%w: bad literal/length symbol %d", ErrMalformed, sym)
		}
	}
}
