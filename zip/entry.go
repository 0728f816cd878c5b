// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import (
	"fmt"
	"hash/crc32"
	"io/fs"
	"sync"
	"time"

	"github.com/mjbarlow/deflatezip/deflate"
)

// Entry is one file (or directory) named by the central directory,
// with its data recoverable on demand via Data.
type Entry struct {
	c  *Container
	cd CentralDirectoryEntry

	once     sync.Once
	local    *LocalHeader
	localErr error
}

// Name is the entry's decoded, cleaned path (forward slashes, no
// leading slash).
func (e *Entry) Name() string { return e.cd.Name }

// Comment is the entry's central-directory comment field.
func (e *Entry) Comment() string { return e.cd.Comment }

// Size is the declared uncompressed size.
func (e *Entry) Size() int64 { return int64(e.cd.UncompSize) }

// IsDirectory reports whether the entry is a directory. For MS-DOS and
// Unix hosts this is the external attributes' directory bit (0x10); for
// other hosts, a zero-size entry whose name ended in '/'.
func (e *Entry) IsDirectory() bool { return e.cd.IsDir }

// Mode is the entry's POSIX file mode, decoded from
// external_file_attributes per the host system named in
// version_made_by.
func (e *Entry) Mode() fs.FileMode { return fs.FileMode(e.cd.Mode()) }

// ModTime is the entry's modification time: MS-DOS date/time unless a
// higher-resolution NTFS, Unix, or extended-timestamp extra field
// overrides it.
func (e *Entry) ModTime() time.Time { return e.cd.ModTime }

// resolveLocal lazily parses and reconciles this entry's local file
// header, memoizing the result (or error) for subsequent calls.
func (e *Entry) resolveLocal() (*LocalHeader, error) {
	e.once.Do(func() {
		lh, err := parseLocalHeader(e.c.data, int64(e.cd.LocalHeaderOffset))
		if err != nil {
			e.localErr = err
			return
		}
		if err := reconcileLocalHeader(&e.cd, lh); err != nil {
			e.localErr = err
			return
		}
		e.local = lh
	})
	return e.local, e.localErr
}

// Data recovers and verifies the entry's decompressed bytes: reconcile
// the local header against the central directory, decode by
// compression_method, check the compressed and decompressed byte counts
// and CRC32 against the local header's declared values (or the trailing
// data descriptor's, when general-purpose bit 3 is set). A CRC32
// mismatch is returned as
// *CRC32Error (still carrying the decoded bytes); a size mismatch as
// ErrWrongSize.
func (e *Entry) Data() ([]byte, error) {
	if cached, ok := e.cachedData(); ok {
		return cached, nil
	}

	e.c.mu.Lock()
	defer e.c.mu.Unlock()

	lh, err := e.resolveLocal()
	if err != nil {
		return nil, err
	}

	dataStart := lh.DataOffset
	e.c.r.Seek(dataStart)

	// When the local header defers its sizes/CRC to a trailing data
	// descriptor, bound the read by the central directory's (always
	// authoritative) declared sizes; otherwise trust the local header.
	boundUncomp, boundComp, crcSource := lh.UncompSize, lh.CompSize, lh.CRC32
	if lh.hasDataDescriptor {
		boundUncomp, boundComp, crcSource = e.cd.UncompSize, e.cd.CompSize, e.cd.CRC32
	}

	var raw []byte
	switch e.cd.CompressionMethod {
	case 0: // stored
		raw, err = e.c.r.ReadAlignedBytes(int(boundUncomp))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedArchive, err)
		}
		raw = append([]byte(nil), raw...)
	case 8: // deflate
		raw, err = deflate.Decode(e.c.r)
		if err != nil {
			return nil, err
		}
	case 12, 14: // bzip2, LZMA: dispatched, not decoded (non-goal)
		return nil, fmt.Errorf("%w: method %d", ErrCompressionNotSupported, e.cd.CompressionMethod)
	default:
		return nil, fmt.Errorf("%w: method %d", ErrCompressionNotSupported, e.cd.CompressionMethod)
	}
	realCompSize := e.c.r.BytePos() - dataStart

	finalComp, finalUncomp, finalCRC := boundComp, boundUncomp, crcSource
	if lh.hasDataDescriptor {
		descCRC, descComp, descUncomp, err := readDataDescriptor(e.c.data, e.c.r.BytePos(), lh.zip64)
		if err != nil {
			return nil, err
		}
		finalComp, finalUncomp, finalCRC = descComp, descUncomp, descCRC
	}

	if realCompSize != int64(finalComp) {
		return nil, fmt.Errorf("%w: declared comp_size %d, observed %d", ErrWrongSize, finalComp, realCompSize)
	}
	if uint64(len(raw)) != finalUncomp {
		return nil, fmt.Errorf("%w: declared uncomp_size %d, got %d", ErrWrongSize, finalUncomp, len(raw))
	}
	if got := crc32.ChecksumIEEE(raw); got != finalCRC {
		return nil, &CRC32Error{Declared: finalCRC, Computed: got, Data: raw}
	}

	e.c.cache.Add(int64(e.cd.LocalHeaderOffset), raw)
	return raw, nil
}

func (e *Entry) cachedData() ([]byte, bool) {
	e.c.mu.Lock()
	defer e.c.mu.Unlock()
	return e.c.cache.Get(int64(e.cd.LocalHeaderOffset))
}
