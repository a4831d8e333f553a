package strlib

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

const flagOrder = "dgimsuvy"

// RegExp is a compiled regular expression with ECMAScript semantics. Its
// lastIndex lives on the table as a plain writable field so source code can
// read and reset it.
type RegExp struct {
	re     *regexp2.Regexp
	source string
	flags  string
	// layout lists capture groups in pattern order: "" for a numbered
	// group, the name for a named one.
	layout []string
	named  bool
	obj    *value.Object
}

var lastIndexKey = value.Key("lastIndex")

// NewRegExp compiles pattern with the given flags. Unknown or repeated
// flags and malformed patterns raise SyntaxError.
func NewRegExp(pattern, flags string) (*RegExp, error) {
	for i := 0; i < len(flags); i++ {
		if !strings.ContainsRune(flagOrder, rune(flags[i])) || strings.IndexByte(flags[i+1:], flags[i]) >= 0 {
			return nil, errors.NewSyntaxError("Invalid flags supplied to RegExp constructor '%s'", flags)
		}
	}
	if strings.Contains(flags, "u") && strings.Contains(flags, "v") {
		return nil, errors.NewSyntaxError("Invalid flags supplied to RegExp constructor '%s'", flags)
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range []struct {
		flag byte
		opt  regexp2.RegexOptions
	}{{'i', regexp2.IgnoreCase}, {'m', regexp2.Multiline}, {'s', regexp2.Singleline}, {'u', regexp2.Unicode}, {'v', regexp2.Unicode}} {
		if strings.IndexByte(flags, f.flag) >= 0 {
			opts |= f.opt
		}
	}
	src := pattern
	if src == "" {
		src = "(?:)"
	}
	re, err := regexp2.Compile(src, opts)
	if err != nil {
		return nil, errors.NewSyntaxError("Invalid regular expression: /%s/%s: %v", pattern, flags, err).CausedBy(err)
	}
	r := &RegExp{re: re, source: src, flags: canonicalFlags(flags), layout: captureLayout(src)}
	for _, name := range r.layout {
		r.named = r.named || name != ""
	}
	r.obj = value.NewObjectWithHooks(regexpMethods)
	r.obj.SetInternal(r)
	r.obj.RawSet(lastIndexKey, value.Int(0))
	return r, nil
}

func canonicalFlags(flags string) string {
	var sb strings.Builder
	for i := 0; i < len(flagOrder); i++ {
		if strings.IndexByte(flags, flagOrder[i]) >= 0 {
			sb.WriteByte(flagOrder[i])
		}
	}
	return sb.String()
}

// captureLayout lists the capturing groups of pattern in the order of
// their opening parentheses.
func captureLayout(pattern string) []string {
	var out []string
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			rest := pattern[i+1:]
			switch {
			case !strings.HasPrefix(rest, "?"):
				out = append(out, "")
			case strings.HasPrefix(rest, "?<") && !strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!"):
				if end := strings.IndexByte(rest, '>'); end > 2 {
					out = append(out, rest[2:end])
				}
			}
		}
	}
	return out
}

func (r *RegExp) Source() string { return r.source }
func (r *RegExp) Flags() string  { return r.flags }
func (r *RegExp) has(flag byte) bool {
	return strings.IndexByte(r.flags, flag) >= 0
}
func (r *RegExp) Global() bool { return r.has('g') }
func (r *RegExp) Sticky() bool { return r.has('y') }

// LastIndex reads the lastIndex field as a length.
func (r *RegExp) LastIndex() int {
	v, _ := r.obj.RawGet(lastIndexKey)
	n := value.ToIntegerOrInfinity(v)
	switch {
	case n < 0:
		return 0
	case n > maxStringLength:
		return maxStringLength
	}
	return int(n)
}

func (r *RegExp) SetLastIndex(i int) { r.obj.RawSet(lastIndexKey, value.Int(i)) }

func (r *RegExp) Tag() string { return "RegExp" }

func (r *RegExp) Describe() string { return "/" + r.source + "/" + r.flags }

func (r *RegExp) Value() value.Value { return r.obj.Value() }

// RegExpOf recovers the RegExp behind a regexp table.
func RegExpOf(v value.Value) (*RegExp, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	r, ok := o.Internal().(*RegExp)
	return r, ok
}

// subject is a string prepared for matching: regexp2 works on runes, the
// source language on UTF-16 units, Go slicing on bytes.
type subject struct {
	s     string
	runes []rune
	bytes []int // byte offset of rune i; len(runes)+1 entries
	units []int // UTF-16 offset of rune i
}

func newSubject(s string) *subject {
	sub := &subject{s: s, runes: []rune(s)}
	sub.bytes = make([]int, 0, len(sub.runes)+1)
	sub.units = make([]int, 0, len(sub.runes)+1)
	b, u := 0, 0
	for _, r := range sub.runes {
		sub.bytes = append(sub.bytes, b)
		sub.units = append(sub.units, u)
		b += utf8.RuneLen(r)
		if r >= 0x10000 {
			u += 2
		} else {
			u++
		}
	}
	sub.bytes = append(sub.bytes, b)
	sub.units = append(sub.units, u)
	return sub
}

func (sub *subject) length() int { return sub.units[len(sub.units)-1] }

// runeAtUnit maps a UTF-16 offset to the first rune starting at or after
// it.
func (sub *subject) runeAtUnit(u int) int { return sort.SearchInts(sub.units, u) }

// match is one regexp or string match, in byte offsets of the subject.
type match struct {
	start, end int
	index      int // UTF-16 offset of start
	groups     []value.Value
	named      map[string]value.Value
}

// execAt finds the first match starting at or after UTF-16 offset from.
func (r *RegExp) execAt(sub *subject, from int) (*match, error) {
	ri := sub.runeAtUnit(from)
	if ri > len(sub.runes) {
		return nil, nil
	}
	m, err := r.re.FindRunesMatchStartingAt(sub.runes, ri)
	if err != nil || m == nil {
		return nil, err
	}
	if r.Sticky() && m.Index != ri {
		return nil, nil
	}
	out := &match{
		start: sub.bytes[m.Index],
		end:   sub.bytes[m.Index+m.Length],
		index: sub.units[m.Index],
	}
	if r.named {
		out.named = make(map[string]value.Value)
	}
	plain := 0
	for _, name := range r.layout {
		var g *regexp2.Group
		if name == "" {
			plain++
			g = m.GroupByNumber(plain)
		} else {
			g = m.GroupByName(name)
		}
		v := value.Undefined
		if g != nil && len(g.Captures) > 0 {
			v = value.String(g.String())
		}
		out.groups = append(out.groups, v)
		if name != "" {
			out.named[name] = v
		}
	}
	return out, nil
}

// endUnit is the UTF-16 offset just past m.
func (m *match) endUnit(sub *subject) int {
	return m.index + value.UTF16Len(sub.s[m.start:m.end])
}

// toValue builds the exec result array: the match, its captures, and the
// index, input and groups fields.
func (m *match) toValue(s string) value.Value {
	elems := append([]value.Value{value.String(s[m.start:m.end])}, m.groups...)
	arr := value.NewArray(elems)
	arr.RawSet(value.Key("index"), value.Int(m.index))
	arr.RawSet(value.Key("input"), value.String(s))
	groups := value.Undefined
	if m.named != nil {
		g := value.NewObject()
		for _, name := range sortedNames(m.named) {
			g.RawSet(value.Key(name), m.named[name])
		}
		groups = g.Value()
	}
	arr.RawSet(value.Key("groups"), groups)
	return arr.Value()
}

func sortedNames(named map[string]value.Value) []string {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// exec runs one match honouring lastIndex for global and sticky
// expressions.
func (r *RegExp) exec(sub *subject) (*match, error) {
	tracked := r.Global() || r.Sticky()
	from := 0
	if tracked {
		from = r.LastIndex()
		if from > sub.length() {
			r.SetLastIndex(0)
			return nil, nil
		}
	}
	m, err := r.execAt(sub, from)
	if err != nil {
		return nil, err
	}
	if tracked {
		if m == nil {
			r.SetLastIndex(0)
		} else {
			r.SetLastIndex(m.endUnit(sub))
		}
	}
	return m, nil
}

// all collects every match from the start of the subject, stepping over
// empty matches by one code point.
func (r *RegExp) all(sub *subject) ([]*match, error) {
	var out []*match
	from := 0
	for from <= sub.length() {
		m, err := r.execAt(sub, from)
		if err != nil || m == nil {
			return out, err
		}
		out = append(out, m)
		next := m.endUnit(sub)
		if m.start == m.end {
			next = advance(sub, next)
		}
		from = next
	}
	return out, nil
}

// advance steps one code point past UTF-16 offset u.
func advance(sub *subject, u int) int {
	ri := sub.runeAtUnit(u)
	if ri >= len(sub.runes) {
		return u + 1
	}
	return sub.units[ri+1]
}

// RegExpExec runs the expression once against s and returns the match
// array, or null.
func RegExpExec(r *RegExp, s string) (value.Value, error) {
	m, err := r.exec(newSubject(s))
	if err != nil || m == nil {
		return value.Null, err
	}
	return m.toValue(s), nil
}

func RegExpTest(r *RegExp, s string) (bool, error) {
	m, err := r.exec(newSubject(s))
	return m != nil, err
}

// toRegExp coerces a match/search argument: regexps pass through, anything
// else is compiled as a pattern (undefined matches the empty string).
func toRegExp(v value.Value, flags string) (*RegExp, error) {
	if r, ok := RegExpOf(v); ok {
		return r, nil
	}
	pattern := ""
	if !v.IsUndefined() {
		pattern = value.ToString(v)
	}
	return NewRegExp(pattern, flags)
}

// StringMatch returns the exec result for a non-global pattern and the
// array of all matched substrings (or null) for a global one.
func StringMatch(s string, pattern value.Value) (value.Value, error) {
	r, err := toRegExp(pattern, "")
	if err != nil {
		return value.Undefined, err
	}
	if !r.Global() {
		return RegExpExec(r, s)
	}
	r.SetLastIndex(0)
	ms, err := r.all(newSubject(s))
	if err != nil {
		return value.Undefined, err
	}
	if len(ms) == 0 {
		return value.Null, nil
	}
	out := make([]value.Value, len(ms))
	for i, m := range ms {
		out[i] = value.String(s[m.start:m.end])
	}
	return value.NewArray(out).Value(), nil
}

// StringMatchAll returns an iterator of exec results. A regexp argument
// must be global.
func StringMatchAll(s string, pattern value.Value) (value.Value, error) {
	r, ok := RegExpOf(pattern)
	if ok && !r.Global() {
		return value.Undefined, errors.NewTypeError("String.prototype.matchAll called with a non-global RegExp argument")
	}
	if !ok {
		var err error
		if r, err = toRegExp(pattern, "g"); err != nil {
			return value.Undefined, err
		}
	}
	sub := newSubject(s)
	from, done := r.LastIndex(), false
	return value.NewIteratorObject(value.IteratorFunc(func() (value.Value, bool, error) {
		if done || from > sub.length() {
			return value.Undefined, false, nil
		}
		m, err := r.execAt(sub, from)
		if err != nil || m == nil {
			done = true
			return value.Undefined, false, err
		}
		from = m.endUnit(sub)
		if m.start == m.end {
			from = advance(sub, from)
		}
		return m.toValue(s), true, nil
	})), nil
}

// StringSearch returns the UTF-16 index of the first match, or -1.
// lastIndex is neither used nor changed.
func StringSearch(s string, pattern value.Value) (int, error) {
	r, err := toRegExp(pattern, "")
	if err != nil {
		return -1, err
	}
	m, err := r.execAt(newSubject(s), 0)
	if err != nil || m == nil {
		return -1, err
	}
	return m.index, nil
}

var regexpMethods = &value.MethodTable{
	Name: "RegExp",
	Methods: map[value.PropertyKey]value.Method{
		value.Key("exec"): func(o *value.Object, args []value.Value) (value.Value, error) {
			return RegExpExec(o.Internal().(*RegExp), value.ToString(arg(args, 0)))
		},
		value.Key("test"): func(o *value.Object, args []value.Value) (value.Value, error) {
			ok, err := RegExpTest(o.Internal().(*RegExp), value.ToString(arg(args, 0)))
			return value.Bool(ok), err
		},
		value.Key("toString"): func(o *value.Object, _ []value.Value) (value.Value, error) {
			return value.String(o.Internal().(*RegExp).Describe()), nil
		},
	},
	Getters: map[value.PropertyKey]value.Getter{
		value.Key("source"): func(o *value.Object) (value.Value, error) {
			return value.String(o.Internal().(*RegExp).source), nil
		},
		value.Key("flags"): func(o *value.Object) (value.Value, error) {
			return value.String(o.Internal().(*RegExp).flags), nil
		},
		value.Key("global"):     flagGetter('g'),
		value.Key("ignoreCase"): flagGetter('i'),
		value.Key("multiline"):  flagGetter('m'),
		value.Key("dotAll"):     flagGetter('s'),
		value.Key("unicode"):    flagGetter('u'),
		value.Key("sticky"):     flagGetter('y'),
		value.Key("hasIndices"): flagGetter('d'),
	},
}

func flagGetter(flag byte) value.Getter {
	return func(o *value.Object) (value.Value, error) {
		return value.Bool(o.Internal().(*RegExp).has(flag)), nil
	}
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}
