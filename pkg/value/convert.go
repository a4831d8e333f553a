package value

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean implements truthiness.
func ToBoolean(v Value) bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.num != 0
	case KindNumber:
		return v.num != 0 && v.num == v.num
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

// ToNumber converts without invoking user code: tables convert through
// their string form (so [] is 0 and [7] is 7), everything else follows the
// primitive rules.
func ToNumber(v Value) float64 {
	switch v.kind {
	case KindUndefined:
		return math.NaN()
	case KindNull:
		return 0
	case KindBoolean, KindNumber:
		return v.num
	case KindString:
		return StringToNumber(v.str)
	case KindObject:
		if v.obj.isArray {
			return StringToNumber(ToString(v))
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

// StringToNumber implements the StringNumericLiteral grammar.
func StringToNumber(s string) float64 {
	t := TrimSpace(s)
	if t == "" {
		return 0
	}
	if len(t) > 2 && t[0] == '0' {
		base := 0
		switch t[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadixDigits(t[2:], base)
		}
	}
	if DecimalPrefix(t) != len(t) {
		return math.NaN()
	}
	switch t {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !isRangeErr(err) {
		return math.NaN()
	}
	return f
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func parseRadixDigits(s string, base int) float64 {
	if s == "" {
		return math.NaN()
	}
	acc := 0.0
	for i := 0; i < len(s); i++ {
		d := DigitValue(s[i])
		if d >= base {
			return math.NaN()
		}
		acc = acc*float64(base) + float64(d)
	}
	return acc
}

// DigitValue returns the value of an alphanumeric digit in bases up to 36,
// or 36 for anything else.
func DigitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

// DecimalPrefix returns the byte length of the longest prefix of s that is
// a StrDecimalLiteral (optional sign, Infinity, digits, fraction, exponent).
func DecimalPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return i + len("Infinity")
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

// TrimSpace strips the WhiteSpace and LineTerminator code points.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// IsSpace reports whether r is WhiteSpace or a LineTerminator.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0xA0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// ToString converts without invoking user code.
func ToString(v Value) string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case KindNumber:
		return NumberToString(v.num)
	case KindString:
		return v.str
	case KindSymbol:
		return v.sym.String()
	default:
		return objectToString(v.obj, 0)
	}
}

func objectToString(o *Object, depth int) string {
	switch {
	case o.fn != nil:
		return "function " + o.name + "() { [native code] }"
	case o.isArray:
		if depth > 32 {
			return ""
		}
		var sb strings.Builder
		for i, e := range o.elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			switch {
			case e.IsNullish():
			case e.kind == KindObject:
				sb.WriteString(objectToString(e.obj, depth+1))
			default:
				sb.WriteString(ToString(e))
			}
		}
		return sb.String()
	}
	if ed, ok := o.internal.(*ErrorData); ok {
		if ed.Message == "" {
			return ed.Name
		}
		return ed.Name + ": " + ed.Message
	}
	if t, ok := o.internal.(interface{ Tag() string }); ok {
		return "[object " + t.Tag() + "]"
	}
	return "[object Object]"
}

// NumberToString formats a number the way the source language prints it:
// shortest round-trip digits, fixed notation for 1e-6 <= |n| < 1e21.
func NumberToString(f float64) string {
	switch {
	case f != f:
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return cleanExponent(strconv.FormatFloat(f, 'e', -1, 64))
}

// cleanExponent removes leading zeros from the exponent: "1e-07" -> "1e-7".
func cleanExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	j := i + 2
	for j < len(s)-1 && s[j] == '0' {
		j++
	}
	return s[:i+2] + s[j:]
}

// ToIntegerOrInfinity truncates toward zero; NaN becomes 0.
func ToIntegerOrInfinity(v Value) float64 {
	f := ToNumber(v)
	if f != f {
		return 0
	}
	if math.IsInf(f, 0) {
		return f
	}
	return math.Trunc(f)
}

// ToInt32 implements the modular int32 conversion.
func ToInt32(v Value) int32 {
	return int32(ToUint32(v))
}

// ToUint32 implements the modular uint32 conversion.
func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if f != f || math.IsInf(f, 0) {
		return 0
	}
	f = math.Mod(math.Trunc(f), 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

// StrictEquals implements ===.
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean, KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindSymbol:
		return a.sym == b.sym
	default:
		return a.obj == b.obj
	}
}

// SameValueZero is === except that NaN equals NaN.
func SameValueZero(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber && a.num != a.num && b.num != b.num {
		return true
	}
	return StrictEquals(a, b)
}

// SameValue is SameValueZero except that +0 and -0 differ.
func SameValue(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber && a.num == 0 && b.num == 0 {
		return math.Signbit(a.num) == math.Signbit(b.num)
	}
	return SameValueZero(a, b)
}

// Normalize maps a value to a comparable form in which SameValueZero
// equality coincides with Go ==, for use as a Go map key.
func Normalize(v Value) Value {
	if v.kind == KindNumber {
		switch {
		case v.num != v.num:
			return Value{kind: KindNumber, str: "NaN"}
		case v.num == 0:
			return Value{kind: KindNumber}
		}
	}
	return v
}

// Denormalize reverses Normalize.
func Denormalize(v Value) Value {
	if v.kind == KindNumber && v.str == "NaN" {
		return NaN
	}
	return v
}
