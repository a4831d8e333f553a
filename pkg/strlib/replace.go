package strlib

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// stringMatches finds occurrences of a literal search string. An empty
// search matches at every code point boundary, including the end.
func stringMatches(s, search string, all bool) []*match {
	var out []*match
	for pos := 0; pos <= len(s); {
		k := strings.Index(s[pos:], search)
		if k < 0 {
			break
		}
		start := pos + k
		out = append(out, &match{start: start, end: start + len(search), index: value.UTF16Len(s[:start])})
		if !all {
			break
		}
		switch {
		case search != "":
			pos = start + len(search)
		case start == len(s):
			return out
		default:
			_, size := utf8.DecodeRuneInString(s[start:])
			pos = start + size
		}
	}
	return out
}

// substitute expands the replacement patterns $$, $&, $`, $', $n, $nn and
// $<name> for one match.
func substitute(tmpl, s string, m *match) string {
	if strings.IndexByte(tmpl, '$') < 0 {
		return tmpl
	}
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '$' || i+1 == len(tmpl) {
			sb.WriteByte(c)
			continue
		}
		switch n := tmpl[i+1]; {
		case n == '$':
			sb.WriteByte('$')
			i++
		case n == '&':
			sb.WriteString(s[m.start:m.end])
			i++
		case n == '`':
			sb.WriteString(s[:m.start])
			i++
		case n == '\'':
			sb.WriteString(s[m.end:])
			i++
		case n >= '0' && n <= '9':
			d, width := int(n-'0'), 1
			if i+2 < len(tmpl) && tmpl[i+2] >= '0' && tmpl[i+2] <= '9' {
				if dd := d*10 + int(tmpl[i+2]-'0'); dd >= 1 && dd <= len(m.groups) {
					d, width = dd, 2
				}
			}
			if d < 1 || d > len(m.groups) {
				sb.WriteByte('$')
				continue
			}
			if g := m.groups[d-1]; !g.IsUndefined() {
				sb.WriteString(g.AsString())
			}
			i += width
		case n == '<' && m.named != nil:
			end := strings.IndexByte(tmpl[i+2:], '>')
			if end < 0 {
				sb.WriteByte('$')
				continue
			}
			if g := m.named[tmpl[i+2:i+2+end]]; !g.IsUndefined() {
				sb.WriteString(g.AsString())
			}
			i += 2 + end
		default:
			sb.WriteByte('$')
		}
	}
	return sb.String()
}

// replacer renders the replacement text for one match, either through the
// pattern language or by calling a replacer function with
// (matched, ...captures, position, input[, groups]).
func replacer(s string, replacement value.Value) func(m *match) (string, error) {
	if !replacement.IsCallable() {
		tmpl := value.ToString(replacement)
		return func(m *match) (string, error) { return substitute(tmpl, s, m), nil }
	}
	return func(m *match) (string, error) {
		args := make([]value.Value, 0, len(m.groups)+4)
		args = append(args, value.String(s[m.start:m.end]))
		args = append(args, m.groups...)
		args = append(args, value.Int(m.index), value.String(s))
		if m.named != nil {
			g := value.NewObject()
			for _, name := range sortedNames(m.named) {
				g.RawSet(value.Key(name), m.named[name])
			}
			args = append(args, g.Value())
		}
		r, err := value.Call(replacement, value.Undefined, args...)
		if err != nil {
			return "", err
		}
		return value.ToString(r), nil
	}
}

func splice(s string, ms []*match, render func(*match) (string, error)) (string, error) {
	if len(ms) == 0 {
		return s, nil
	}
	var sb strings.Builder
	last := 0
	for _, m := range ms {
		r, err := render(m)
		if err != nil {
			return "", err
		}
		sb.WriteString(s[last:m.start])
		sb.WriteString(r)
		last = m.end
	}
	sb.WriteString(s[last:])
	return sb.String(), nil
}

// StringReplace replaces the first occurrence of a string pattern, or the
// match(es) of a regexp: all of them when it is global, otherwise one
// match at lastIndex for sticky expressions.
func StringReplace(s string, pattern, replacement value.Value) (string, error) {
	return replace(s, pattern, replacement, false)
}

// StringReplaceAll replaces every occurrence; a regexp pattern must be
// global.
func StringReplaceAll(s string, pattern, replacement value.Value) (string, error) {
	if r, ok := RegExpOf(pattern); ok && !r.Global() {
		return "", errors.NewTypeError("replaceAll must be called with a global RegExp")
	}
	return replace(s, pattern, replacement, true)
}

func replace(s string, pattern, replacement value.Value, all bool) (string, error) {
	render := replacer(s, replacement)
	r, ok := RegExpOf(pattern)
	if !ok {
		return splice(s, stringMatches(s, value.ToString(pattern), all), render)
	}
	sub := newSubject(s)
	if r.Global() {
		r.SetLastIndex(0)
		ms, err := r.all(sub)
		if err != nil {
			return "", err
		}
		return splice(s, ms, render)
	}
	m, err := r.exec(sub)
	if err != nil || m == nil {
		return s, err
	}
	return splice(s, []*match{m}, render)
}

// StringSplit splits around a string or regexp separator. Captures of a
// regexp separator are spliced into the result; limit caps the number of
// pieces. An empty string separator splits into code points.
func StringSplit(s string, sep, limit value.Value) (value.Value, error) {
	lim := uint32(math.MaxUint32)
	if !limit.IsUndefined() {
		lim = value.ToUint32(limit)
	}
	var out []value.Value
	push := func(v value.Value) bool {
		out = append(out, v)
		return uint32(len(out)) < lim
	}
	result := func() (value.Value, error) { return value.NewArray(out).Value(), nil }
	if lim == 0 {
		return result()
	}
	if sep.IsUndefined() {
		push(value.String(s))
		return result()
	}
	if r, ok := RegExpOf(sep); ok {
		return splitRegExp(s, r, push, result)
	}
	sepStr := value.ToString(sep)
	if sepStr == "" {
		for _, c := range s {
			if !push(value.String(string(c))) {
				break
			}
		}
		return result()
	}
	for _, part := range strings.Split(s, sepStr) {
		if !push(value.String(part)) {
			break
		}
	}
	return result()
}

func splitRegExp(s string, r *RegExp, push func(value.Value) bool, result func() (value.Value, error)) (value.Value, error) {
	if r.Sticky() {
		// Split tries every position itself, so the search is unanchored.
		var err error
		if r, err = NewRegExp(r.source, strings.ReplaceAll(r.flags, "y", "")); err != nil {
			return value.Undefined, err
		}
	}
	sub := newSubject(s)
	size := sub.length()
	if size == 0 {
		m, err := r.execAt(sub, 0)
		if err != nil {
			return value.Undefined, err
		}
		if m == nil {
			push(value.String(s))
		}
		return result()
	}
	p, pb := 0, 0 // end of the last split, in units and bytes
	q := 0
	for q < size {
		m, err := r.execAt(sub, q)
		if err != nil {
			return value.Undefined, err
		}
		if m == nil || m.index >= size {
			break
		}
		e := m.endUnit(sub)
		if e == p {
			q = advance(sub, m.index)
			continue
		}
		if !push(value.String(s[pb:m.start])) {
			return result()
		}
		for _, g := range m.groups {
			if !push(g) {
				return result()
			}
		}
		p, pb = e, m.end
		q = p
	}
	push(value.String(s[pb:]))
	return result()
}
