// Package multi bridges single-value calls and the source language's
// multiple-return convention. A Values is never an array: call sites that
// spread return slots get a Values, call sites that receive an array get an
// array value, and the two cannot be confused by type.
package multi

import (
	"slices"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Values is an ordered group of return slots.
type Values struct {
	vals []value.Value
}

// Pack tags its arguments as a multi-value.
func Pack(vals ...value.Value) Values {
	return Values{vals: vals}
}

// Len returns the number of slots.
func (m Values) Len() int { return len(m.vals) }

// At returns slot i (0-based); missing slots are Undefined.
func (m Values) At(i int) value.Value {
	if i < 0 || i >= len(m.vals) {
		return value.Undefined
	}
	return m.vals[i]
}

// First collapses the multi-value to a single value, as a single-value
// context does.
func (m Values) First() value.Value { return m.At(0) }

// Slice returns the slots. The slice must not be modified.
func (m Values) Slice() []value.Value { return m.vals }

// ToArray materialises the slots as a fresh array value.
func (m Values) ToArray() value.Value {
	return value.NewArray(slices.Clone(m.vals)).Value()
}

// Unpack extracts the 1-based inclusive slot range [from, to] of an array
// (or any iterable). to defaults to the sequence length. Slots past the end
// read as Undefined.
func Unpack(seq value.Value, from int, to ...int) (Values, error) {
	var elems []value.Value
	if o := seq.AsObject(); o != nil && o.IsArray() {
		elems = o.Elements()
	} else {
		var err error
		if elems, err = value.Collect(seq); err != nil {
			return Values{}, err
		}
	}
	last := len(elems)
	if len(to) > 0 {
		last = to[0]
	}
	if from == 1 && last == len(elems) {
		return Values{vals: slices.Clone(elems)}, nil
	}
	if from < 1 {
		from = 1
	}
	if last < from {
		return Values{}, nil
	}
	out := make([]value.Value, 0, last-from+1)
	for i := from; i <= last; i++ {
		if i-1 < len(elems) {
			out = append(out, elems[i-1])
		} else {
			out = append(out, value.Undefined)
		}
	}
	return Values{vals: out}, nil
}

// Spread materialises a string or an iterable and unpacks all of it.
// Strings spread one slot per UTF-16 code unit; a surrogate half on its
// own reads as U+FFFD.
func Spread(iterable value.Value) (Values, error) {
	if iterable.IsNullish() {
		return Values{}, errors.NewTypeError("%s is not iterable", value.Inspect(iterable))
	}
	if iterable.IsString() {
		units := value.ToUTF16(iterable.AsString())
		vals := make([]value.Value, len(units))
		for i, u := range units {
			vals[i] = value.String(value.FromUTF16([]uint16{u}))
		}
		return Values{vals: vals}, nil
	}
	if m, ok := Unwrap(iterable); ok {
		return m, nil
	}
	elems, err := value.Collect(iterable)
	if err != nil {
		return Values{}, err
	}
	return Values{vals: elems}, nil
}

// tag marks a table that carries a multi-value across a value.Function
// boundary.
type tag struct{ m Values }

func (t *tag) Describe() string { return "<multi " + value.ArrayOf(t.m.vals...).String() + ">" }

// Wrap carries m through a single value.Value slot, e.g. as the return value
// of a value.NativeFunction.
func Wrap(m Values) value.Value {
	o := value.NewObject()
	o.SetInternal(&tag{m: m})
	return o.Value()
}

// Unwrap recovers a multi-value carried by Wrap.
func Unwrap(v value.Value) (Values, bool) {
	o := v.AsObject()
	if o == nil {
		return Values{}, false
	}
	t, ok := o.Internal().(*tag)
	if !ok {
		return Values{}, false
	}
	return t.m, true
}

// IsMulti reports whether v carries a multi-value.
func IsMulti(v value.Value) bool {
	_, ok := Unwrap(v)
	return ok
}

// Collapse returns v itself, or the first slot when v carries a multi-value.
func Collapse(v value.Value) value.Value {
	if m, ok := Unwrap(v); ok {
		return m.First()
	}
	return v
}

// Call invokes fn and returns all of its return slots: a wrapped multi-value
// yields its slots, any other result yields exactly one slot.
func Call(fn value.Value, this value.Value, args ...value.Value) (Values, error) {
	r, err := value.Call(fn, this, args...)
	if err != nil {
		return Values{}, err
	}
	if m, ok := Unwrap(r); ok {
		return m, nil
	}
	return Values{vals: []value.Value{r}}, nil
}
