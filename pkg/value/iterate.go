package value

import "unicode/utf8"

// Iterator is the Go side of the iteration protocol. Next returns the next
// value and true, or false once exhausted.
type Iterator interface {
	Next() (Value, bool, error)
}

// Iterable is implemented by Go-backed tables that can be iterated without
// going through a source-level Symbol.iterator method.
type Iterable interface {
	Iterator() Iterator
}

// IteratorFunc adapts a function to Iterator.
type IteratorFunc func() (Value, bool, error)

func (f IteratorFunc) Next() (Value, bool, error) { return f() }

// GetIterator opens an iterator over v: strings iterate by code point,
// arrays by index (observing growth during iteration), Go iterables
// natively, and any other table through its Symbol.iterator method.
func GetIterator(v Value) (Iterator, error) {
	switch v.kind {
	case KindString:
		s := v.str
		pos := 0
		return IteratorFunc(func() (Value, bool, error) {
			if pos >= len(s) {
				return Undefined, false, nil
			}
			_, size := utf8.DecodeRuneInString(s[pos:])
			r := s[pos : pos+size]
			pos += size
			return String(r), true, nil
		}), nil
	case KindObject:
		o := v.obj
		if o.isArray && o.hooks == nil {
			i := 0
			return IteratorFunc(func() (Value, bool, error) {
				if i >= len(o.elems) {
					return Undefined, false, nil
				}
				e := o.elems[i]
				i++
				return e, true, nil
			}), nil
		}
		if it, ok := o.internal.(Iterable); ok {
			return it.Iterator(), nil
		}
		method, err := Get(v, SymbolKey(SymbolIterator))
		if err != nil {
			return nil, err
		}
		if method.IsCallable() {
			itv, err := Call(method, v)
			if err != nil {
				return nil, err
			}
			return protocolIterator(itv)
		}
	}
	return nil, typeErrorf("%s is not iterable", Inspect(v))
}

// protocolIterator drives a source-level iterator object: next() returning
// {value, done} records.
func protocolIterator(itv Value) (Iterator, error) {
	if !itv.IsObject() {
		return nil, typeErrorf("Result of the Symbol.iterator method is not an object")
	}
	if it, ok := itv.obj.internal.(Iterator); ok {
		return it, nil
	}
	next, err := Get(itv, Key("next"))
	if err != nil {
		return nil, err
	}
	if !next.IsCallable() {
		return nil, typeErrorf("%s is not a function", Inspect(next))
	}
	done := false
	return IteratorFunc(func() (Value, bool, error) {
		if done {
			return Undefined, false, nil
		}
		res, err := Call(next, itv)
		if err != nil {
			return Undefined, false, err
		}
		if !res.IsObject() {
			return Undefined, false, typeErrorf("Iterator result %s is not an object", Inspect(res))
		}
		d, err := Get(res, Key("done"))
		if err != nil {
			return Undefined, false, err
		}
		if ToBoolean(d) {
			done = true
			return Undefined, false, nil
		}
		val, err := Get(res, Key("value"))
		return val, err == nil, err
	}), nil
}

// Iterate calls fn for every value produced by v. Returning false from fn
// stops early.
func Iterate(v Value, fn func(Value) (bool, error)) error {
	it, err := GetIterator(v)
	if err != nil {
		return err
	}
	for {
		e, ok, err := it.Next()
		if err != nil || !ok {
			return err
		}
		cont, err := fn(e)
		if err != nil || !cont {
			return err
		}
	}
}

// Collect drains v into a slice.
func Collect(v Value) ([]Value, error) {
	if o := v.AsObject(); o != nil && o.isArray && o.hooks == nil {
		out := make([]Value, len(o.elems))
		copy(out, o.elems)
		return out, nil
	}
	var out []Value
	err := Iterate(v, func(e Value) (bool, error) {
		out = append(out, e)
		return true, nil
	})
	return out, err
}

// IterResult builds a {value, done} record.
func IterResult(v Value, done bool) Value {
	o := NewObject()
	o.RawSet(Key("value"), v)
	o.RawSet(Key("done"), Bool(done))
	return o.Value()
}

var iteratorMethods = &MethodTable{
	Name: "Iterator",
	Methods: map[PropertyKey]Method{
		Key("next"): func(o *Object, _ []Value) (Value, error) {
			v, ok, err := o.internal.(Iterator).Next()
			if err != nil {
				return Undefined, err
			}
			return IterResult(v, !ok), nil
		},
		SymbolKey(SymbolIterator): func(o *Object, _ []Value) (Value, error) {
			return o.Value(), nil
		},
	},
}

// NewIteratorObject exposes a Go iterator as a source-level iterator object
// (next() and Symbol.iterator returning itself).
func NewIteratorObject(it Iterator) Value {
	o := NewObjectWithHooks(iteratorMethods)
	o.internal = it
	return o.Value()
}
