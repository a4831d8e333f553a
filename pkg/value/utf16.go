package value

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Source strings are indexed by UTF-16 code units while Go strings are
// UTF-8. These helpers translate between the two views. Lone surrogates do
// not survive the round trip and decode as U+FFFD.

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			n++
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
		i += size
	}
	return n
}

// ToUTF16 encodes s as UTF-16 code units.
func ToUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// FromUTF16 decodes UTF-16 code units back into a Go string.
func FromUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// CompareUTF16 orders two strings by UTF-16 code units, the order used by
// the relational operators and the default sort comparator.
func CompareUTF16(a, b string) int {
	if isASCII(a) && isASCII(b) {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	ua, ub := ToUTF16(a), ToUTF16(b)
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	}
	return 0
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
