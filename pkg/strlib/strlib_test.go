package strlib

import (
	"math"
	"testing"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

func mustRegExp(t *testing.T, pattern, flags string) *RegExp {
	t.Helper()
	r, err := NewRegExp(pattern, flags)
	if err != nil {
		t.Fatalf("NewRegExp(%q, %q): %v", pattern, flags, err)
	}
	return r
}

func TestNumberToStringRadix(t *testing.T) {
	tests := []struct {
		n     float64
		radix value.Value
		want  string
	}{
		{255, value.Int(16), "ff"},
		{255, value.Int(2), "11111111"},
		{0.5, value.Int(2), "0.1"},
		{-10, value.Int(36), "-a"},
		{1.5, value.Undefined, "1.5"},
		{math.NaN(), value.Int(2), "NaN"},
	}
	for _, tt := range tests {
		got, err := NumberToString(tt.n, tt.radix)
		if err != nil || got != tt.want {
			t.Errorf("NumberToString(%v, %s) = %q, %v; want %q", tt.n, value.Inspect(tt.radix), got, err, tt.want)
		}
	}
	for _, r := range []int{1, 37} {
		if _, err := NumberToString(1, value.Int(r)); errors.KindOf(err) != "RangeError" {
			t.Errorf("radix %d: got %v, want RangeError", r, err)
		}
	}
}

func TestNumberToFixed(t *testing.T) {
	tests := []struct {
		n      float64
		digits int
		want   string
	}{
		{1.005, 2, "1.00"},
		{2.5, 0, "3"},
		{-1.5, 0, "-2"},
		{0, 2, "0.00"},
		{9.99, 1, "10.0"},
		{123.456, 1, "123.5"},
		{1e21, 2, "1e+21"},
	}
	for _, tt := range tests {
		got, err := NumberToFixed(tt.n, value.Int(tt.digits))
		if err != nil || got != tt.want {
			t.Errorf("NumberToFixed(%v, %d) = %q, %v; want %q", tt.n, tt.digits, got, err, tt.want)
		}
	}
	if _, err := NumberToFixed(1, value.Int(101)); errors.KindOf(err) != "RangeError" {
		t.Errorf("digits 101: got %v", err)
	}
}

func TestParseNumbers(t *testing.T) {
	ints := []struct {
		s     string
		radix value.Value
		want  float64
	}{
		{"  42px", value.Undefined, 42},
		{"0x1F", value.Undefined, 31},
		{"1F", value.Int(16), 31},
		{"z", value.Int(36), 35},
		{"-7", value.Undefined, -7},
		{"08", value.Undefined, 8},
	}
	for _, tt := range ints {
		if got := ParseInt(tt.s, tt.radix); got != tt.want {
			t.Errorf("ParseInt(%q, %s) = %v, want %v", tt.s, value.Inspect(tt.radix), got, tt.want)
		}
	}
	for _, s := range []string{"", "0x", "px"} {
		if got := ParseInt(s, value.Undefined); got == got {
			t.Errorf("ParseInt(%q) = %v, want NaN", s, got)
		}
	}
	if got := ParseInt("12", value.Int(1)); got == got {
		t.Errorf("radix 1 should give NaN, got %v", got)
	}

	floats := []struct {
		s    string
		want float64
	}{
		{"3.14abc", 3.14},
		{"  -.5e1x", -5},
		{"Infinityx", math.Inf(1)},
		{"1e", 1},
	}
	for _, tt := range floats {
		if got := ParseFloat(tt.s); got != tt.want {
			t.Errorf("ParseFloat(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
	if got := ParseFloat("x1"); got == got {
		t.Errorf("ParseFloat(x1) = %v, want NaN", got)
	}
}

func TestNumberPredicates(t *testing.T) {
	if !NumberIsSafeInteger(value.Number(1<<53-1)) || NumberIsSafeInteger(value.Number(1<<53)) {
		t.Errorf("safe integer bound")
	}
	if !NumberIsInteger(value.Number(5)) || NumberIsInteger(value.Number(5.5)) {
		t.Errorf("integer check")
	}
	if NumberIsFinite(value.String("5")) || !NumberIsNaN(value.NaN) || NumberIsNaN(value.String("x")) {
		t.Errorf("no coercion in predicates")
	}
}

func TestUTF16Indexing(t *testing.T) {
	s := "a😀b"
	if got := StringAt(s, value.Int(-1)); got != value.String("b") {
		t.Errorf("at(-1) = %s", value.Inspect(got))
	}
	if got := StringCharCodeAt(s, value.Int(1)); got != 0xD83D {
		t.Errorf("charCodeAt(1) = %x", int(got))
	}
	if got := StringCodePointAt(s, value.Int(1)); got != value.Int(0x1F600) {
		t.Errorf("codePointAt(1) = %s", value.Inspect(got))
	}
	if got := StringCodePointAt(s, value.Int(2)); got != value.Int(0xDE00) {
		t.Errorf("codePointAt(2) = %s", value.Inspect(got))
	}
	if got := StringCharAt(s, value.Int(9)); got != "" {
		t.Errorf("charAt(9) = %q", got)
	}
	if got := StringSlice(s, value.Int(1), value.Int(3)); got != "😀" {
		t.Errorf("slice(1,3) = %q", got)
	}
	if got := StringSubstring(s, value.Int(3), value.Int(1)); got != "😀" {
		t.Errorf("substring(3,1) = %q", got)
	}
	if got := StringSubstr("hello", value.Int(-3), value.Int(2)); got != "ll" {
		t.Errorf("substr(-3,2) = %q", got)
	}
	if got := StringIndexOf(s, "b", value.Undefined); got != 3 {
		t.Errorf("indexOf(b) = %d", got)
	}
	if got := StringLastIndexOf("hello", "l", value.Undefined); got != 3 {
		t.Errorf("lastIndexOf(l) = %d", got)
	}
	if got := StringLastIndexOf("hello", "l", value.Int(2)); got != 2 {
		t.Errorf("lastIndexOf(l, 2) = %d", got)
	}
}

func TestSearchPredicates(t *testing.T) {
	if ok, _ := StringStartsWith("hello", value.String("ell"), value.Int(1)); !ok {
		t.Errorf("startsWith(ell, 1)")
	}
	if ok, _ := StringEndsWith("hello", value.String("hel"), value.Int(3)); !ok {
		t.Errorf("endsWith(hel, 3)")
	}
	if ok, _ := StringIncludes("hello", value.String("lo"), value.Undefined); !ok {
		t.Errorf("includes(lo)")
	}
	re := mustRegExp(t, "l", "")
	if _, err := StringIncludes("hello", re.Value(), value.Undefined); errors.KindOf(err) != "TypeError" {
		t.Errorf("includes(regexp): got %v", err)
	}
}

func TestPaddingAndRepeat(t *testing.T) {
	if got := StringPadStart("5", value.Int(3), value.String("0")); got != "005" {
		t.Errorf("padStart = %q", got)
	}
	if got := StringPadEnd("ab", value.Int(7), value.String("xyz")); got != "abxyzxy" {
		t.Errorf("padEnd = %q", got)
	}
	if got := StringPadStart("abc", value.Int(2), value.Undefined); got != "abc" {
		t.Errorf("padStart shorter = %q", got)
	}
	if got, _ := StringRepeat("ab", value.Int(3)); got != "ababab" {
		t.Errorf("repeat = %q", got)
	}
	for _, n := range []value.Value{value.Int(-1), value.Number(math.Inf(1))} {
		if _, err := StringRepeat("x", n); errors.KindOf(err) != "RangeError" {
			t.Errorf("repeat(%s): got %v", value.Inspect(n), err)
		}
	}
	if got := StringTrim("\u00a0 x \ufeff"); got != "x" {
		t.Errorf("trim = %q", got)
	}
}

func TestUnicodeOperations(t *testing.T) {
	if got := StringToUpperCase("straße"); got != "STRASSE" {
		t.Errorf("upper = %q", got)
	}
	if got := StringToLowerCase("ÀB"); got != "àb" {
		t.Errorf("lower = %q", got)
	}
	if got, _ := StringNormalize("e\u0301", value.Undefined); got != "\u00e9" {
		t.Errorf("NFC = %q", got)
	}
	if got, _ := StringNormalize("\u00e9", value.String("NFD")); got != "e\u0301" {
		t.Errorf("NFD = %q", got)
	}
	if _, err := StringNormalize("x", value.String("NFX")); errors.KindOf(err) != "RangeError" {
		t.Errorf("bad form: got %v", err)
	}
	if StringLocaleCompare("a", "b") >= 0 || StringLocaleCompare("b", "a") <= 0 || StringLocaleCompare("a", "a") != 0 {
		t.Errorf("localeCompare basic order")
	}
	if StringLocaleCompare("résumé", "resume") <= 0 {
		t.Errorf("accented form should sort after the plain one")
	}
}

func TestRegExpConstruction(t *testing.T) {
	for _, tt := range []struct{ pattern, flags string }{{"a", "gg"}, {"a", "q"}, {"(", ""}, {"a", "uv"}} {
		if _, err := NewRegExp(tt.pattern, tt.flags); errors.KindOf(err) != "SyntaxError" {
			t.Errorf("NewRegExp(%q, %q): got %v, want SyntaxError", tt.pattern, tt.flags, err)
		}
	}
	r := mustRegExp(t, "a", "yg")
	if r.Flags() != "gy" {
		t.Errorf("flags = %q, want gy", r.Flags())
	}
	if got := value.ToString(r.Value()); got != "[object RegExp]" {
		t.Errorf("ToString = %q", got)
	}
	if g, _ := value.GetString(r.Value(), "global"); g != value.True {
		t.Errorf("global getter = %s", value.Inspect(g))
	}
	if got := mustRegExp(t, "", "").Source(); got != "(?:)" {
		t.Errorf("empty source = %q", got)
	}
}

func TestRegExpExecGroups(t *testing.T) {
	r := mustRegExp(t, `(\d+)-(?<word>[a-z]+)`, "")
	res, err := RegExpExec(r, "x 12-ab y")
	if err != nil {
		t.Fatal(err)
	}
	if got := value.ToString(res); got != "12-ab,12,ab" {
		t.Errorf("match = %q", got)
	}
	if idx, _ := value.GetString(res, "index"); idx != value.Int(2) {
		t.Errorf("index = %s", value.Inspect(idx))
	}
	groups, _ := value.GetString(res, "groups")
	if w, _ := value.GetString(groups, "word"); w != value.String("ab") {
		t.Errorf("groups.word = %s", value.Inspect(w))
	}

	// Groups are numbered by position even when a named one comes first.
	r = mustRegExp(t, `(?<y>\d{4})-(\d{2})`, "")
	res, _ = RegExpExec(r, "2024-05")
	if got := value.ToString(res); got != "2024-05,2024,05" {
		t.Errorf("positional numbering = %q", got)
	}

	r = mustRegExp(t, `(a)|(b)`, "")
	res, _ = RegExpExec(r, "b")
	if g1, _ := value.Get(res, value.IndexKey(1)); !g1.IsUndefined() {
		t.Errorf("unmatched group = %s, want undefined", value.Inspect(g1))
	}
	if g, _ := value.GetString(res, "groups"); !g.IsUndefined() {
		t.Errorf("groups without names = %s", value.Inspect(g))
	}
}

func TestRegExpLastIndex(t *testing.T) {
	r := mustRegExp(t, "o", "g")
	for _, want := range []int{1, 2} {
		res, err := RegExpExec(r, "foo")
		if err != nil || res.IsNull() {
			t.Fatalf("exec = %s, %v", value.Inspect(res), err)
		}
		if idx, _ := value.GetString(res, "index"); idx != value.Int(want) {
			t.Errorf("index = %s, want %d", value.Inspect(idx), want)
		}
		if r.LastIndex() != want+1 {
			t.Errorf("lastIndex = %d, want %d", r.LastIndex(), want+1)
		}
	}
	if res, _ := RegExpExec(r, "foo"); !res.IsNull() || r.LastIndex() != 0 {
		t.Errorf("exhausted exec = %s, lastIndex %d", value.Inspect(res), r.LastIndex())
	}

	u := mustRegExp(t, "😀(.)", "g")
	res, _ := RegExpExec(u, "a😀bc")
	if idx, _ := value.GetString(res, "index"); idx != value.Int(1) || u.LastIndex() != 4 {
		t.Errorf("astral match index %s lastIndex %d, want 1 4", value.Inspect(idx), u.LastIndex())
	}

	y := mustRegExp(t, "b", "y")
	if ok, _ := RegExpTest(y, "ab"); ok {
		t.Errorf("sticky must anchor at lastIndex 0")
	}
	if err := value.Set(y.Value(), value.Key("lastIndex"), value.Int(1)); err != nil {
		t.Fatal(err)
	}
	if ok, _ := RegExpTest(y, "ab"); !ok || y.LastIndex() != 2 {
		t.Errorf("sticky at 1: ok=%v lastIndex=%d", ok, y.LastIndex())
	}
}

func TestMatchAndSearch(t *testing.T) {
	all, err := StringMatch("a1b22", mustRegExp(t, `\d+`, "g").Value())
	if err != nil || value.ToString(all) != "1,22" {
		t.Errorf("match(g) = %s, %v", value.Inspect(all), err)
	}
	if none, _ := StringMatch("abc", mustRegExp(t, `\d`, "g").Value()); !none.IsNull() {
		t.Errorf("no match = %s, want null", value.Inspect(none))
	}
	empty, _ := StringMatch("abc", value.Undefined)
	if idx, _ := value.GetString(empty, "index"); idx != value.Int(0) {
		t.Errorf("match(undefined) index = %s", value.Inspect(idx))
	}

	it, err := StringMatchAll("a1b2", mustRegExp(t, `\d`, "g").Value())
	if err != nil {
		t.Fatal(err)
	}
	results, err := value.Collect(it)
	if err != nil || len(results) != 2 {
		t.Fatalf("matchAll = %d results, %v", len(results), err)
	}
	if idx, _ := value.GetString(results[1], "index"); idx != value.Int(3) {
		t.Errorf("second index = %s", value.Inspect(idx))
	}
	if _, err := StringMatchAll("a", mustRegExp(t, "a", "").Value()); errors.KindOf(err) != "TypeError" {
		t.Errorf("non-global matchAll: got %v", err)
	}

	if i, _ := StringSearch("abc", value.String("c")); i != 2 {
		t.Errorf("search(c) = %d", i)
	}
	if i, _ := StringSearch("abc", mustRegExp(t, "z", "").Value()); i != -1 {
		t.Errorf("search(z) = %d", i)
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name        string
		s           string
		pattern     value.Value
		replacement string
		all         bool
		want        string
	}{
		{"first string", "a-b-c", value.String("-"), "+", false, "a+b-c"},
		{"all strings", "a-b-c", value.String("-"), "+", true, "a+b+c"},
		{"empty search", "abc", value.String(""), "-", true, "-a-b-c-"},
		{"captures", "John Smith", mustRegExp(t, `(\w+)\s(\w+)`, "").Value(), "$2, $1", false, "Smith, John"},
		{"context patterns", "abc", mustRegExp(t, "b", "").Value(), "[$`|$&|$'|$$]", false, "a[a|b|c|$]c"},
		{"named", "2024-05", mustRegExp(t, `(?<y>\d+)-(?<m>\d+)`, "").Value(), "$<m>/$<y>", false, "05/2024"},
		{"missing group", "ab", mustRegExp(t, "(a)(b)", "").Value(), "$3$1", false, "$3a"},
		{"one digit fallback", "a", mustRegExp(t, "(a)", "").Value(), "$10", false, "a0"},
		{"global regexp", "a.b.c", mustRegExp(t, `\.`, "g").Value(), "/", false, "a/b/c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replace := StringReplace
			if tt.all {
				replace = StringReplaceAll
			}
			got, err := replace(tt.s, tt.pattern, value.String(tt.replacement))
			if err != nil || got != tt.want {
				t.Errorf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}

	var positions []string
	double := value.Func("double", func(_ value.Value, args []value.Value) (value.Value, error) {
		positions = append(positions, value.ToString(args[1]))
		return value.Number(value.ToNumber(args[0]) * 2), nil
	})
	got, err := StringReplace("a1b2", mustRegExp(t, `\d`, "g").Value(), double)
	if err != nil || got != "a2b4" {
		t.Errorf("function replacer = %q, %v", got, err)
	}
	if len(positions) != 2 || positions[0] != "1" || positions[1] != "3" {
		t.Errorf("positions = %v", positions)
	}

	if _, err := StringReplaceAll("a", mustRegExp(t, "a", "").Value(), value.String("b")); errors.KindOf(err) != "TypeError" {
		t.Errorf("replaceAll with non-global regexp: got %v", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		sep   value.Value
		limit value.Value
		want  string
		n     int
	}{
		{"string", "a,b,,c", value.String(","), value.Undefined, "a,b,,c", 4},
		{"limit", "a,b,c", value.String(","), value.Int(2), "a,b", 2},
		{"zero limit", "a,b", value.String(","), value.Int(0), "", 0},
		{"chars", "abc", value.String(""), value.Undefined, "a,b,c", 3},
		{"no separator", "a,b", value.Undefined, value.Undefined, "a,b", 1},
		{"empty input", "", value.String(","), value.Undefined, "", 1},
		{"captures", "a1b2c", mustRegExp(t, `(\d)`, "").Value(), value.Undefined, "a,1,b,2,c", 5},
		{"empty regexp", "ab", mustRegExp(t, "", "").Value(), value.Undefined, "a,b", 2},
		{"empty input regexp", "", mustRegExp(t, "", "").Value(), value.Undefined, "", 0},
		{"sticky", "a-b", mustRegExp(t, "-", "y").Value(), value.Undefined, "a,b", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringSplit(tt.s, tt.sep, tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			if n := got.AsObject().Len(); n != tt.n || value.ToString(got) != tt.want {
				t.Errorf("got %d pieces %s, want %d %q", n, value.Inspect(got), tt.n, tt.want)
			}
		})
	}
}
