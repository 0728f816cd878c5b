// Copyright Elliot Nunn. Portions copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zip

import (
	"golang.org/x/text/encoding/charmap"
)

// generalPurposeUTF8 is general-purpose bit flag 11 (APPNOTE 6.3.x
// §4.4.4): when set, file_name and comment are UTF-8; otherwise they
// are IBM Code Page 437.
const generalPurposeUTF8 = 1 << 11

// decodeName converts a central directory or local header's raw name
// bytes to a Go string, per the general-purpose flags' UTF-8 bit.
func decodeName(raw []byte, flags uint16) string {
	if flags&generalPurposeUTF8 != 0 {
		return string(raw)
	}
	out, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
