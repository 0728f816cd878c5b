// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zip materializes entries from a ZIP central directory and
// recovers their decompressed bytes (stored and DEFLATE; other methods
// are dispatched but not decoded). It does not write ZIP archives,
// does not handle encryption or multi-disk archives, and does not
// render a directory tree — those are explicit non-goals; callers
// needing a filesystem view build one on top of Container.
package zip

import (
	"encoding/binary"
	"fmt"
	"path"
	"strings"
	"time"
)

// CentralDirectoryEntry is one record of the central directory: the
// catalog entry an archive tool reads without touching any file data.
type CentralDirectoryEntry struct {
	VersionMadeBy       uint16
	HostOS              byte
	GeneralPurposeFlags uint16
	CompressionMethod   uint16
	DOSTime, DOSDate    uint16
	CRC32               uint32
	CompSize            uint64
	UncompSize          uint64
	LocalHeaderOffset   uint64
	Name                string
	Comment             string
	ExternalAttributes  uint32
	ModTime             time.Time
	IsDir               bool
	zip64               bool // a zip64 extra field widened this entry's sizes/offset
}

// getEOCD locates the End Of Central Directory record by scanning
// backward for its signature, the comment field's variable length
// making this a search rather than a fixed-offset read.
func getEOCD(data []byte) ([]byte, error) {
	size := int64(len(data))
	if size < 22 {
		return nil, fmt.Errorf("%w: shorter than an EOCD record", ErrTruncatedArchive)
	}
	cmtMax := int(min(65535, size-22))
	for cmtSize := 0; cmtSize <= cmtMax; cmtSize++ {
		start := size - 22 - int64(cmtSize)
		rec := data[start:]
		if len(rec) < 22 {
			continue
		}
		if rec[0] == 'P' && rec[1] == 'K' && rec[2] == 5 && rec[3] == 6 {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: no end-of-central-directory signature found", ErrBadSignature)
}

// parseExtra splits an extra-field blob into its (id -> payload) map,
// per APPNOTE 6.3.x §4.5.1: repeated (id uint16, size uint16, payload).
func parseExtra(x []byte) map[int][]byte {
	ret := make(map[int][]byte)
	for len(x) >= 4 {
		kind := int(binary.LittleEndian.Uint16(x))
		size := int(binary.LittleEndian.Uint16(x[2:]))
		if len(x) < 4+size {
			break
		}
		ret[kind] = x[4:][:size]
		x = x[4+size:]
	}
	return ret
}

// readCentralDirectory walks the whole ZIP byte slice: locates the
// EOCD (and, if present, the zip64 locator + EOCD64), then parses every
// PK\x01\x02 record between centralOffset and eocdOffset.
func readCentralDirectory(data []byte) (entries []CentralDirectoryEntry, err error) {
	eocd, err := getEOCD(data)
	if err != nil {
		return nil, err
	}
	size := int64(len(data))
	eocdOffset := size - int64(len(eocd))

	thisDisk := uint32(binary.LittleEndian.Uint16(eocd[4:]))
	centralDisk := uint32(binary.LittleEndian.Uint16(eocd[6:]))
	recordsTotal := uint64(binary.LittleEndian.Uint16(eocd[10:]))
	centralSize := int64(binary.LittleEndian.Uint32(eocd[12:]))
	centralOffset := int64(binary.LittleEndian.Uint32(eocd[16:]))

	sixtyFour := recordsTotal == 0xffff || centralSize == 0xffffffff || centralOffset == 0xffffffff
	if sixtyFour {
		const locatorSize = 20
		if eocdOffset < int64(locatorSize) {
			return nil, fmt.Errorf("%w: zip64 locator missing", ErrTruncatedArchive)
		}
		locator := data[eocdOffset-locatorSize : eocdOffset]
		if string(locator[:4]) != "PK\x06\x07" {
			return nil, fmt.Errorf("%w: zip64 end-of-central-directory locator", ErrBadSignature)
		}
		eocd64Disk := binary.LittleEndian.Uint32(locator[4:])
		eocdOffset = int64(binary.LittleEndian.Uint64(locator[8:]))
		totalDisks := binary.LittleEndian.Uint32(locator[16:])
		if eocd64Disk != 0 || totalDisks != 1 {
			return nil, fmt.Errorf("%w: multi-disk archives", ErrUnsupportedFeature)
		}
		const eocd64Size = 56
		if eocdOffset < 0 || eocdOffset+eocd64Size > size {
			return nil, fmt.Errorf("%w: zip64 end-of-central-directory record", ErrTruncatedArchive)
		}
		eocd64 := data[eocdOffset : eocdOffset+eocd64Size]
		if string(eocd64[:4]) != "PK\x06\x06" {
			return nil, fmt.Errorf("%w: zip64 end-of-central-directory", ErrBadSignature)
		}
		thisDisk = binary.LittleEndian.Uint32(eocd64[16:])
		centralDisk = binary.LittleEndian.Uint32(eocd64[20:])
		recordsTotal = binary.LittleEndian.Uint64(eocd64[32:])
		centralSize = int64(binary.LittleEndian.Uint64(eocd64[40:]))
		centralOffset = int64(binary.LittleEndian.Uint64(eocd64[48:]))
	}
	if thisDisk != 0 || centralDisk != 0 {
		return nil, fmt.Errorf("%w: multi-disk archives", ErrUnsupportedFeature)
	}

	// Tolerate archives with junk prepended (a self-extracting stub, say):
	// trust the distance between the central directory and the EOCD over
	// the absolute offset the EOCD records, unless we're in zip64 mode
	// where we must trust the locator's absolute offsets.
	var baseCorrection int64
	if !sixtyFour {
		baseCorrection = eocdOffset - centralSize - centralOffset
	}

	if centralOffset > eocdOffset {
		return nil, fmt.Errorf("%w: central directory offset past EOCD", ErrTruncatedArchive)
	}
	dir := data[baseCorrection+centralOffset : eocdOffset]

	entries = make([]CentralDirectoryEntry, 0, recordsTotal)
	for len(dir) > 0 {
		if len(dir) < 46 {
			return nil, fmt.Errorf("%w: truncated central directory record", ErrTruncatedArchive)
		}
		if string(dir[:4]) != "PK\x01\x02" {
			return nil, fmt.Errorf("%w: central directory record", ErrBadSignature)
		}

		e := CentralDirectoryEntry{
			VersionMadeBy:       binary.LittleEndian.Uint16(dir[4:]),
			HostOS:              dir[5],
			GeneralPurposeFlags: binary.LittleEndian.Uint16(dir[8:]),
			CompressionMethod:   binary.LittleEndian.Uint16(dir[10:]),
			DOSTime:             binary.LittleEndian.Uint16(dir[12:]),
			DOSDate:             binary.LittleEndian.Uint16(dir[14:]),
			CRC32:               binary.LittleEndian.Uint32(dir[16:]),
			CompSize:            uint64(binary.LittleEndian.Uint32(dir[20:])),
			UncompSize:          uint64(binary.LittleEndian.Uint32(dir[24:])),
			ExternalAttributes:  binary.LittleEndian.Uint32(dir[38:]),
			LocalHeaderOffset:   uint64(binary.LittleEndian.Uint32(dir[42:])),
		}
		namelen := int(binary.LittleEndian.Uint16(dir[28:]))
		extralen := int(binary.LittleEndian.Uint16(dir[30:]))
		commentlen := int(binary.LittleEndian.Uint16(dir[32:]))
		if len(dir) < 46+namelen+extralen+commentlen {
			return nil, fmt.Errorf("%w: central directory record name/extra/comment", ErrTruncatedArchive)
		}
		dir = dir[46:]
		rawName := dir[:namelen]
		dir = dir[namelen:]
		extra := parseExtra(dir[:extralen])
		dir = dir[extralen:]
		rawComment := dir[:commentlen]
		dir = dir[commentlen:]

		if fields, ok := extra[1]; ok {
			e.zip64 = true
			for _, slot := range []*uint64{&e.UncompSize, &e.CompSize, &e.LocalHeaderOffset} {
				if *slot == 0xffffffff && len(fields) >= 8 {
					*slot = binary.LittleEndian.Uint64(fields)
					fields = fields[8:]
				}
			}
		}

		name := decodeName(rawName, e.GeneralPurposeFlags)
		name = strings.TrimPrefix(name, "/")
		nameEndsSlash := strings.HasSuffix(name, "/")
		name = strings.TrimSuffix(name, "/")
		e.Name = path.Clean(name)
		if e.Name == "." {
			e.Name = ""
		}
		e.Comment = decodeName(rawComment, e.GeneralPurposeFlags)

		// is_directory: host_system = upper byte of version_made_by.
		// MS-DOS/UNIX trust the external attributes' directory bit;
		// anything else falls back to a zero-size entry named with a
		// trailing slash.
		switch e.HostOS {
		case 0, 3:
			e.IsDir = e.ExternalAttributes&0x10 != 0
		default:
			e.IsDir = e.UncompSize == 0 && nameEndsSlash
		}

		e.ModTime = msDosTimeToTime(e.DOSDate, e.DOSTime)
		for kind, field := range extra {
			if t := timeFromExtraField(kind, field); !t.IsZero() {
				e.ModTime = t
			}
		}

		entries = append(entries, e)
	}
	return entries, nil
}

// Mode reports the entry's POSIX file mode, decoded from
// external_file_attributes according to the host system recorded in
// version_made_by.
func (e *CentralDirectoryEntry) Mode() uint32 {
	return uint32(modeFromExternalAttributes(e.HostOS, e.ExternalAttributes, e.IsDir))
}
