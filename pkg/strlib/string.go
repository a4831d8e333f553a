package strlib

import (
	"math"
	"slices"
	"strings"
	"sync"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

const maxStringLength = 1 << 29

type units []uint16

func toUnits(s string) units   { return value.ToUTF16(s) }
func (u units) String() string { return value.FromUTF16(u) }

// clampIndex converts v to an integer clamped to [0, n], dflt when omitted.
func clampIndex(v value.Value, n, dflt int) int {
	if v.IsUndefined() {
		return dflt
	}
	return int(math.Min(math.Max(value.ToIntegerOrInfinity(v), 0), float64(n)))
}

// relIndex is clampIndex with negative values counted from the end.
func relIndex(v value.Value, n, dflt int) int {
	if v.IsUndefined() {
		return dflt
	}
	k := value.ToIntegerOrInfinity(v)
	if k < 0 {
		return int(math.Max(float64(n)+k, 0))
	}
	return int(math.Min(k, float64(n)))
}

// unitAt resolves a single position; ok is false when it is out of range.
func unitAt(u units, pos value.Value, relative bool) (int, bool) {
	k := value.ToIntegerOrInfinity(pos)
	if relative && k < 0 {
		k += float64(len(u))
	}
	if k < 0 || k >= float64(len(u)) {
		return 0, false
	}
	return int(k), true
}

// StringAt reads one code unit at a relative index; out of range is
// undefined.
func StringAt(s string, index value.Value) value.Value {
	u := toUnits(s)
	k, ok := unitAt(u, index, true)
	if !ok {
		return value.Undefined
	}
	return value.String(u[k : k+1].String())
}

func StringCharAt(s string, pos value.Value) string {
	u := toUnits(s)
	k, ok := unitAt(u, pos, false)
	if !ok {
		return ""
	}
	return u[k : k+1].String()
}

// StringCharCodeAt returns the code unit at pos, NaN when out of range.
func StringCharCodeAt(s string, pos value.Value) float64 {
	u := toUnits(s)
	k, ok := unitAt(u, pos, false)
	if !ok {
		return math.NaN()
	}
	return float64(u[k])
}

// StringCodePointAt decodes a surrogate pair starting at pos.
func StringCodePointAt(s string, pos value.Value) value.Value {
	u := toUnits(s)
	k, ok := unitAt(u, pos, false)
	if !ok {
		return value.Undefined
	}
	if utf16.IsSurrogate(rune(u[k])) && k+1 < len(u) {
		if r := utf16.DecodeRune(rune(u[k]), rune(u[k+1])); r != 0xFFFD {
			return value.Int(int(r))
		}
	}
	return value.Int(int(u[k]))
}

func StringSlice(s string, start, end value.Value) string {
	u := toUnits(s)
	from, to := relIndex(start, len(u), 0), relIndex(end, len(u), len(u))
	if from >= to {
		return ""
	}
	return u[from:to].String()
}

// StringSubstring clamps both ends to [0, len] and swaps them when
// reversed.
func StringSubstring(s string, start, end value.Value) string {
	u := toUnits(s)
	from, to := clampIndex(start, len(u), 0), clampIndex(end, len(u), len(u))
	if from > to {
		from, to = to, from
	}
	return u[from:to].String()
}

func StringSubstr(s string, start, length value.Value) string {
	u := toUnits(s)
	from := relIndex(start, len(u), 0)
	n := clampIndex(length, len(u)-from, len(u)-from)
	return u[from : from+n].String()
}

func indexUnits(hay, needle units, from int) int {
	for i := from; i+len(needle) <= len(hay); i++ {
		if slices.Equal(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func StringIndexOf(s, search string, pos value.Value) int {
	u := toUnits(s)
	return indexUnits(u, toUnits(search), clampIndex(pos, len(u), 0))
}

// StringLastIndexOf searches backwards from pos; a NaN or omitted pos
// means the end.
func StringLastIndexOf(s, search string, pos value.Value) int {
	u, n := toUnits(s), toUnits(search)
	from := len(u)
	if f := value.ToNumber(pos); f == f {
		from = clampIndex(pos, len(u), len(u))
	}
	for i := min(from, len(u)-len(n)); i >= 0; i-- {
		if slices.Equal(u[i:i+len(n)], n) {
			return i
		}
	}
	return -1
}

func notRegExp(search value.Value, method string) (string, error) {
	if _, ok := RegExpOf(search); ok {
		return "", errors.NewTypeError("First argument to String.prototype.%s must not be a regular expression", method)
	}
	return value.ToString(search), nil
}

func StringIncludes(s string, search, pos value.Value) (bool, error) {
	needle, err := notRegExp(search, "includes")
	if err != nil {
		return false, err
	}
	return StringIndexOf(s, needle, pos) >= 0, nil
}

func StringStartsWith(s string, search, pos value.Value) (bool, error) {
	needle, err := notRegExp(search, "startsWith")
	if err != nil {
		return false, err
	}
	u, n := toUnits(s), toUnits(needle)
	from := clampIndex(pos, len(u), 0)
	return from+len(n) <= len(u) && slices.Equal(u[from:from+len(n)], n), nil
}

func StringEndsWith(s string, search, endPos value.Value) (bool, error) {
	needle, err := notRegExp(search, "endsWith")
	if err != nil {
		return false, err
	}
	u, n := toUnits(s), toUnits(needle)
	end := clampIndex(endPos, len(u), len(u))
	start := end - len(n)
	return start >= 0 && slices.Equal(u[start:end], n), nil
}

func pad(s string, maxLength, fill value.Value, atStart bool) string {
	u := toUnits(s)
	target := value.ToIntegerOrInfinity(maxLength)
	if target <= float64(len(u)) {
		return s
	}
	filler := units{' '}
	if !fill.IsUndefined() {
		filler = toUnits(value.ToString(fill))
	}
	if len(filler) == 0 || target > maxStringLength {
		return s
	}
	need := int(target) - len(u)
	padding := make(units, 0, need)
	for len(padding) < need {
		padding = append(padding, filler[:min(len(filler), need-len(padding))]...)
	}
	if atStart {
		return padding.String() + s
	}
	return s + padding.String()
}

func StringPadStart(s string, maxLength, fill value.Value) string {
	return pad(s, maxLength, fill, true)
}

func StringPadEnd(s string, maxLength, fill value.Value) string {
	return pad(s, maxLength, fill, false)
}

func StringRepeat(s string, count value.Value) (string, error) {
	n := value.ToIntegerOrInfinity(count)
	if n < 0 || math.IsInf(n, 1) {
		return "", errors.NewRangeError("Invalid count value: %s", value.NumberToString(n))
	}
	if n*float64(len(s)) > maxStringLength {
		return "", errors.NewRangeError("Invalid string length")
	}
	return strings.Repeat(s, int(n)), nil
}

func StringTrim(s string) string      { return strings.TrimFunc(s, value.IsSpace) }
func StringTrimStart(s string) string { return strings.TrimLeftFunc(s, value.IsSpace) }
func StringTrimEnd(s string) string   { return strings.TrimRightFunc(s, value.IsSpace) }

// StringToUpperCase applies full Unicode case mapping ("ß" becomes "SS").
func StringToUpperCase(s string) string { return cases.Upper(language.Und).String(s) }

func StringToLowerCase(s string) string { return cases.Lower(language.Und).String(s) }

// StringNormalize applies a Unicode normalization form; NFC when omitted.
func StringNormalize(s string, form value.Value) (string, error) {
	f := "NFC"
	if !form.IsUndefined() {
		f = value.ToString(form)
	}
	switch f {
	case "NFC":
		return norm.NFC.String(s), nil
	case "NFD":
		return norm.NFD.String(s), nil
	case "NFKC":
		return norm.NFKC.String(s), nil
	case "NFKD":
		return norm.NFKD.String(s), nil
	}
	return "", errors.NewRangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD.")
}

var (
	collatorMu sync.Mutex
	collator   *collate.Collator
)

// StringLocaleCompare orders a and b with the root-locale collation.
func StringLocaleCompare(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	if collator == nil {
		collator = collate.New(language.Und)
	}
	return collator.CompareString(a, b)
}
