// Package strlib implements the number formatting, string and regular
// expression operations of the runtime. Strings are Go strings but every
// index and length is measured in UTF-16 code units, as source programs see
// them.
package strlib

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

const maxSafeInteger = 1<<53 - 1

// NumberToString formats n in the given radix (default 10). Non-integral
// values get up to 52 fractional digits in the radix.
func NumberToString(n float64, radix value.Value) (string, error) {
	r := 10.0
	if !radix.IsUndefined() {
		r = value.ToIntegerOrInfinity(radix)
	}
	if r < 2 || r > 36 {
		return "", errors.NewRangeError("toString() radix must be between 2 and 36")
	}
	if r == 10 || n != n || math.IsInf(n, 0) {
		return value.NumberToString(n), nil
	}
	base := int(r)
	neg := n < 0
	n = math.Abs(n)
	ip, frac := math.Modf(n)

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	if ip < 1<<63 {
		sb.WriteString(strconv.FormatUint(uint64(ip), base))
	} else {
		bi, _ := new(big.Float).SetFloat64(ip).Int(nil)
		sb.WriteString(bi.Text(base))
	}
	if frac > 0 {
		sb.WriteByte('.')
		for i := 0; frac > 0 && i < 52; i++ {
			frac *= float64(base)
			d := int(frac)
			frac -= float64(d)
			sb.WriteByte(strconv.FormatInt(int64(d), base)[0])
		}
	}
	return sb.String(), nil
}

// NumberToFixed formats n with exactly digits fractional digits, rounding
// ties away from zero on the exact binary value. Magnitudes of 1e21 and up
// fall back to NumberToString.
func NumberToFixed(n float64, digits value.Value) (string, error) {
	f := value.ToIntegerOrInfinity(digits)
	if f < 0 || f > 100 {
		return "", errors.NewRangeError("toFixed() digits argument must be between 0 and 100")
	}
	if n != n {
		return "NaN", nil
	}
	if math.Abs(n) >= 1e21 {
		return value.NumberToString(n), nil
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	// 1100 places hold every float64 exactly.
	exact := new(big.Float).SetFloat64(n).Text('f', 1100)
	return sign + roundHalfUp(exact, int(f)), nil
}

// roundHalfUp rounds the exact decimal expansion s to places fractional
// digits.
func roundHalfUp(s string, places int) string {
	dot := strings.IndexByte(s, '.')
	digits := []byte(s[:dot] + s[dot+1:dot+1+places])
	if s[dot+1+places] >= '5' {
		i := len(digits) - 1
		for ; i >= 0; i-- {
			if digits[i] != '9' {
				digits[i]++
				break
			}
			digits[i] = '0'
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}
	if places == 0 {
		return string(digits)
	}
	cut := len(digits) - places
	return string(digits[:cut]) + "." + string(digits[cut:])
}

// ParseInt parses a leading integer in radix (2..36; 0 or undefined mean
// 10, or 16 with a 0x prefix). Anything unparsable is NaN.
func ParseInt(s string, radix value.Value) float64 {
	s = strings.TrimLeftFunc(s, value.IsSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	r := int(value.ToInt32(radix))
	stripPrefix := true
	switch {
	case r == 0:
		r = 10
	case r < 2 || r > 36:
		return math.NaN()
	case r != 16:
		stripPrefix = false
	}
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		r = 16
	}
	end := 0
	for end < len(s) && value.DigitValue(s[end]) < r {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	digits := s[:end]
	if r == 10 {
		f, _ := strconv.ParseFloat(digits, 64)
		return sign * f
	}
	acc := 0.0
	for i := 0; i < len(digits); i++ {
		acc = acc*float64(r) + float64(value.DigitValue(digits[i]))
	}
	return sign * acc
}

// ParseFloat parses the longest decimal prefix of s after leading white
// space.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, value.IsSpace)
	n := value.DecimalPrefix(s)
	if n == 0 {
		return math.NaN()
	}
	prefix := s[:n]
	switch strings.TrimLeft(prefix, "+-") {
	case "Infinity":
		if prefix[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return math.NaN()
		}
	}
	return f
}

func NumberIsNaN(v value.Value) bool { return v.IsNaN() }

func NumberIsFinite(v value.Value) bool {
	return v.IsNumber() && !math.IsInf(v.AsNumber(), 0) && !v.IsNaN()
}

func NumberIsInteger(v value.Value) bool {
	return NumberIsFinite(v) && math.Trunc(v.AsNumber()) == v.AsNumber()
}

func NumberIsSafeInteger(v value.Value) bool {
	return NumberIsInteger(v) && math.Abs(v.AsNumber()) <= maxSafeInteger
}
