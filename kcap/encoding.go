package kcap

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// EncodeLegacy converts s to Shift-JIS, the text encoding used for entry
// names and subtitle text. Runes without a Shift-JIS mapping are replaced and
// lossy is set; the conversion itself never fails.
func EncodeLegacy(s string) (b []byte, lossy bool) {
	b, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err == nil {
		return b, false
	}
	s = strings.ToValidUTF8(s, "?")
	b, _, err = transform.Bytes(encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()), []byte(s))
	if err != nil {
		// keep the ASCII subset
		b = make([]byte, 0, len(s))
		for _, r := range s {
			if r < utf8.RuneSelf {
				b = append(b, byte(r))
			} else {
				b = append(b, encoding.ASCIISub)
			}
		}
	}
	return b, true
}

// DecodeLegacy converts Shift-JIS bytes to a string. Invalid sequences are
// replaced with U+FFFD and lossy is set.
func DecodeLegacy(b []byte) (s string, lossy bool) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)), true
	}
	s = string(out)
	return s, strings.ContainsRune(s, utf8.RuneError)
}
