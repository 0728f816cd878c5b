// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import "io/fs"

// Unix mode bits. The zip format doesn't define these, but they're the
// values every tool in practice agrees on.
const (
	sIFMT   = 0xf000
	sIFSOCK = 0xc000
	sIFLNK  = 0xa000
	sIFREG  = 0x8000
	sIFBLK  = 0x6000
	sIFDIR  = 0x4000
	sIFCHR  = 0x2000
	sIFIFO  = 0x1000
	sISUID  = 0x800
	sISGID  = 0x400
	sISVTX  = 0x200

	msdosDir      = 0x10
	msdosReadOnly = 0x01
)

// modeFromExternalAttributes translates a central directory entry's
// external_file_attributes into an fs.FileMode, branching on the host
// system recorded in version_made_by's upper byte. Both branches are
// always implemented; which one applies is a runtime decision, not a
// build-time one.
func modeFromExternalAttributes(hostOS byte, attrs uint32, isDir bool) fs.FileMode {
	switch hostOS {
	case 3, 19: // Unix, macOS
		return unixModeToFileMode(attrs >> 16)
	case 0, 11, 14: // MS-DOS, NTFS, VFAT
		return msdosModeToFileMode(attrs)
	default:
		if isDir {
			return fs.ModeDir | 0o755
		}
		return 0o644
	}
}

func msdosModeToFileMode(m uint32) (mode fs.FileMode) {
	if m&msdosDir != 0 {
		mode = fs.ModeDir | 0o777
	} else {
		mode = 0o666
	}
	if m&msdosReadOnly != 0 {
		mode &^= 0o222
	}
	return mode
}

func unixModeToFileMode(m uint32) fs.FileMode {
	mode := fs.FileMode(m & 0o777)
	switch m & sIFMT {
	case sIFBLK:
		mode |= fs.ModeDevice
	case sIFCHR:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case sIFDIR:
		mode |= fs.ModeDir
	case sIFIFO:
		mode |= fs.ModeNamedPipe
	case sIFLNK:
		mode |= fs.ModeSymlink
	case sIFREG:
	case sIFSOCK:
		mode |= fs.ModeSocket
	}
	if m&sISGID != 0 {
		mode |= fs.ModeSetgid
	}
	if m&sISUID != 0 {
		mode |= fs.ModeSetuid
	}
	if m&sISVTX != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}
