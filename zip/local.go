// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import (
	"encoding/binary"
	"fmt"
)

// LocalHeader is the local file header that precedes an entry's
// compressed bytes. It carries the same fields as the central
// directory record, sometimes left at zero and deferred to a trailing
// data descriptor (general-purpose bit 3).
type LocalHeader struct {
	GeneralPurposeFlags uint16
	CompressionMethod   uint16
	DOSTime, DOSDate    uint16
	CRC32               uint32
	CompSize            uint64
	UncompSize          uint64

	// DataOffset is the absolute offset, within the archive's bytes, of
	// the first byte of this entry's (possibly compressed) data.
	DataOffset int64

	hasDataDescriptor bool
	zip64             bool // this entry's local header extra field is zip64-widened
}

const localHeaderFixedSize = 30

// parseLocalHeader reads the local file header at offset within data.
func parseLocalHeader(data []byte, offset int64) (*LocalHeader, error) {
	if offset < 0 || offset+localHeaderFixedSize > int64(len(data)) {
		return nil, fmt.Errorf("%w: local file header", ErrTruncatedArchive)
	}
	buf := data[offset : offset+localHeaderFixedSize]
	if string(buf[:4]) != "PK\x03\x04" {
		return nil, fmt.Errorf("%w: local file header", ErrBadSignature)
	}

	lh := &LocalHeader{
		GeneralPurposeFlags: binary.LittleEndian.Uint16(buf[6:]),
		CompressionMethod:   binary.LittleEndian.Uint16(buf[8:]),
		DOSTime:             binary.LittleEndian.Uint16(buf[10:]),
		DOSDate:             binary.LittleEndian.Uint16(buf[12:]),
		CRC32:               binary.LittleEndian.Uint32(buf[14:]),
		CompSize:            uint64(binary.LittleEndian.Uint32(buf[18:])),
		UncompSize:          uint64(binary.LittleEndian.Uint32(buf[22:])),
	}
	namelen := int(binary.LittleEndian.Uint16(buf[26:]))
	extralen := int(binary.LittleEndian.Uint16(buf[28:]))

	bodyStart := offset + localHeaderFixedSize
	if bodyStart+int64(namelen)+int64(extralen) > int64(len(data)) {
		return nil, fmt.Errorf("%w: local file header name/extra", ErrTruncatedArchive)
	}
	extraStart := bodyStart + int64(namelen)
	extra := parseExtra(data[extraStart : extraStart+int64(extralen)])

	if fields, ok := extra[1]; ok {
		lh.zip64 = true
		for _, slot := range []*uint64{&lh.UncompSize, &lh.CompSize} {
			if *slot == 0xffffffff && len(fields) >= 8 {
				*slot = binary.LittleEndian.Uint64(fields)
				fields = fields[8:]
			}
		}
	}

	lh.hasDataDescriptor = lh.GeneralPurposeFlags&0x08 != 0
	lh.DataOffset = extraStart + int64(extralen)
	return lh, nil
}

// reconcileLocalHeader checks that the fields duplicated between a
// local header and its central directory record actually agree:
// general_purpose_flags, compression_method, last_mod_time, and
// last_mod_date.
func reconcileLocalHeader(cd *CentralDirectoryEntry, lh *LocalHeader) error {
	if lh.GeneralPurposeFlags != cd.GeneralPurposeFlags ||
		lh.CompressionMethod != cd.CompressionMethod ||
		lh.DOSTime != cd.DOSTime ||
		lh.DOSDate != cd.DOSDate {
		return ErrWrongLocalHeader
	}
	return nil
}

// readDataDescriptor reads the trailing data descriptor at offset and
// returns its CRC32 and sizes: a 4-byte signature (not all writers
// include it; skipped when present),
// CRC32, and two size fields whose width is 8 bytes each when this
// entry's own local header extra field is zip64-widened and 4 bytes
// each otherwise (APPNOTE 6.3.x §4.3.9 ties this to the entry, not to
// an archive-wide flag).
func readDataDescriptor(data []byte, offset int64, zip64 bool) (crc32 uint32, compSize, uncompSize uint64, err error) {
	fieldWidth := 4
	if zip64 {
		fieldWidth = 8
	}
	sigLen := 0
	if offset+4 <= int64(len(data)) && string(data[offset:offset+4]) == "PK\x07\x08" {
		sigLen = 4
	}
	need := int64(sigLen + 4 + 2*fieldWidth)
	if offset+need > int64(len(data)) {
		return 0, 0, 0, fmt.Errorf("%w: data descriptor", ErrTruncatedArchive)
	}
	p := data[offset+int64(sigLen):]
	crc32 = binary.LittleEndian.Uint32(p)
	p = p[4:]
	if fieldWidth == 8 {
		compSize = binary.LittleEndian.Uint64(p)
		p = p[8:]
		uncompSize = binary.LittleEndian.Uint64(p)
	} else {
		compSize = uint64(binary.LittleEndian.Uint32(p))
		p = p[4:]
		uncompSize = uint64(binary.LittleEndian.Uint32(p))
	}
	return crc32, compSize, uncompSize, nil
}
