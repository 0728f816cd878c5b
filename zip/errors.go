// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedArchive reports running out of bytes before a
	// structural requirement (a header, a central directory record, the
	// end-of-central-directory record) was met.
	ErrTruncatedArchive = errors.New("zip: truncated archive")

	// ErrBadSignature reports an expected magic number not found.
	ErrBadSignature = errors.New("zip: bad signature")

	// ErrWrongLocalHeader reports that the local file header's
	// general_purpose_flags, compression_method, last_mod_time, or
	// last_mod_date disagree with the central directory.
	ErrWrongLocalHeader = errors.New("zip: local header does not match central directory")

	// ErrWrongSize reports that the observed compressed or
	// uncompressed byte count disagrees with the declared size.
	ErrWrongSize = errors.New("zip: wrong size")

	// ErrWrongCRC32 reports a CRC32 mismatch between the declared and
	// computed checksums of an entry's decoded bytes. Errors reported
	// through this sentinel are *CRC32Error, which carries the decoded
	// bytes for caller inspection.
	ErrWrongCRC32 = errors.New("zip: CRC32 mismatch")

	// ErrCompressionNotSupported reports a compression method id
	// outside the implemented set (deflate, stored; bzip2/lzma are
	// dispatched but not decoded).
	ErrCompressionNotSupported = errors.New("zip: unsupported compression method")

	// ErrUnsupportedFeature reports encryption, disk spanning, or a
	// zip64 variant this package doesn't understand.
	ErrUnsupportedFeature = errors.New("zip: unsupported feature")
)

// CRC32Error is returned (wrapped, matching ErrWrongCRC32) when an
// entry's computed CRC32 disagrees with its declared value. Data holds
// the decoded bytes anyway, so a caller can inspect what was recovered.
type CRC32Error struct {
	Declared, Computed uint32
	Data               []byte
}

func (e *CRC32Error) Error() string {
	return fmt.Sprintf("%v: declared %#08x computed %#08x", ErrWrongCRC32, e.Declared, e.Computed)
}

func (e *CRC32Error) Unwrap() error { return ErrWrongCRC32 }
