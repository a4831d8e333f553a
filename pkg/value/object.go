package value

import (
	"slices"
	"strconv"
)

// NativeFunction is the Go signature of every callable table.
type NativeFunction func(this Value, args []Value) (Value, error)

// Object is a host table: ordered raw fields, an explicit array part, an
// optional call target and an optional hook table consulted for keys absent
// from the raw fields.
type Object struct {
	keys   []PropertyKey // raw field insertion order
	fields map[PropertyKey]Value

	isArray bool
	elems   []Value

	fn   NativeFunction
	name string

	hooks    Hooks
	internal any // Go-side payload: promise, map, generator, error data...
}

// NewObject creates an empty plain table.
func NewObject() *Object {
	return &Object{}
}

// NewObjectWithHooks creates an empty table whose absent keys resolve
// through h.
func NewObjectWithHooks(h Hooks) *Object {
	return &Object{hooks: h}
}

// NewArray creates an array table that takes ownership of elems.
func NewArray(elems []Value) *Object {
	if elems == nil {
		elems = []Value{}
	}
	return &Object{isArray: true, elems: elems}
}

// ArrayOf creates an array value from its arguments.
func ArrayOf(elems ...Value) Value {
	return NewArray(slices.Clone(elems)).Value()
}

// NewFunction creates a callable table.
func NewFunction(name string, fn NativeFunction) *Object {
	return &Object{fn: fn, name: name}
}

// Func is a shorthand for NewFunction(...).Value().
func Func(name string, fn NativeFunction) Value {
	return NewFunction(name, fn).Value()
}

// Value wraps the table as a source value.
func (o *Object) Value() Value {
	if o == nil {
		return Undefined
	}
	return Value{kind: KindObject, obj: o}
}

func (o *Object) IsArray() bool    { return o.isArray }
func (o *Object) IsCallable() bool { return o.fn != nil }
func (o *Object) Name() string     { return o.name }
func (o *Object) Hooks() Hooks     { return o.hooks }
func (o *Object) SetHooks(h Hooks) { o.hooks = h }
func (o *Object) Internal() any    { return o.internal }
func (o *Object) SetInternal(x any) {
	o.internal = x
}

// Call invokes the table's native function.
func (o *Object) Call(this Value, args []Value) (Value, error) {
	if o.fn == nil {
		return Undefined, notCallable(o.Value())
	}
	return o.fn(this, args)
}

// --- Array part ---

// Len returns the array length (0 for non-arrays).
func (o *Object) Len() int { return len(o.elems) }

// Elements exposes the live array part. Callers must not retain it across
// mutations of the array.
func (o *Object) Elements() []Value { return o.elems }

// SetElements replaces the array part.
func (o *Object) SetElements(elems []Value) {
	if elems == nil {
		elems = []Value{}
	}
	o.elems = elems
}

// Index reads element i; out-of-range reads yield Undefined.
func (o *Object) Index(i int) Value {
	if i < 0 || i >= len(o.elems) {
		return Undefined
	}
	return o.elems[i]
}

// SetIndex writes element i, growing the array with Undefined as needed.
func (o *Object) SetIndex(i int, v Value) {
	if i < 0 {
		return
	}
	if i >= len(o.elems) {
		o.SetLength(i + 1)
	}
	o.elems[i] = v
}

// SetLength truncates or extends the array part.
func (o *Object) SetLength(n int) {
	switch {
	case n < len(o.elems):
		clear(o.elems[n:])
		o.elems = o.elems[:n]
	case n > len(o.elems):
		for len(o.elems) < n {
			o.elems = append(o.elems, Undefined)
		}
	}
}

// Push appends to the array part and returns the new length.
func (o *Object) Push(vals ...Value) int {
	o.elems = append(o.elems, vals...)
	return len(o.elems)
}

// --- Raw fields ---

// RawGet reads an own raw field without consulting hooks.
func (o *Object) RawGet(key PropertyKey) (Value, bool) {
	if o.isArray {
		if i, ok := key.ArrayIndex(); ok {
			if i < len(o.elems) {
				return o.elems[i], true
			}
			return Undefined, false
		}
		if key.sym == nil && key.name == "length" {
			return Int(len(o.elems)), true
		}
	}
	v, ok := o.fields[key]
	return v, ok
}

// RawHas reports whether an own raw field exists.
func (o *Object) RawHas(key PropertyKey) bool {
	_, ok := o.RawGet(key)
	return ok
}

// RawSet writes an own raw field without consulting hooks. Array indices
// land in the array part; assigning "length" on an array resizes it.
func (o *Object) RawSet(key PropertyKey, v Value) {
	if o.isArray {
		if i, ok := key.ArrayIndex(); ok {
			o.SetIndex(i, v)
			return
		}
		if key.sym == nil && key.name == "length" {
			if n, ok := ArrayLength(v); ok {
				o.SetLength(n)
			}
			return
		}
	}
	if o.fields == nil {
		o.fields = make(map[PropertyKey]Value)
	}
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// RawDelete removes an own raw field. It reports whether a value was
// present.
func (o *Object) RawDelete(key PropertyKey) bool {
	if o.isArray {
		if i, ok := key.ArrayIndex(); ok {
			if i >= len(o.elems) {
				return false
			}
			if i == len(o.elems)-1 {
				o.elems = o.elems[:i]
			} else {
				o.elems[i] = Undefined
			}
			return true
		}
	}
	if _, ok := o.fields[key]; !ok {
		return false
	}
	delete(o.fields, key)
	o.keys = slices.DeleteFunc(o.keys, func(k PropertyKey) bool { return k == key })
	return true
}

// RawKeys lists own raw keys: array indices ascending, then fields in
// insertion order.
func (o *Object) RawKeys() []PropertyKey {
	out := make([]PropertyKey, 0, len(o.elems)+len(o.keys))
	for i := range o.elems {
		out = append(out, PropertyKey{name: strconv.Itoa(i)})
	}
	return append(out, o.keys...)
}

// ArrayLength validates v as an array length (a uint32 integral number).
func ArrayLength(v Value) (int, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f := v.num
	if f < 0 || f > maxArrayLength || f != float64(int64(f)) {
		return 0, false
	}
	return int(f), true
}
