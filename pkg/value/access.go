package value

import (
	"github.com/nooga/tsrt/pkg/errors"
)

func typeErrorf(format string, args ...any) error {
	return errors.NewTypeError(format, args...)
}

func rangeErrorf(format string, args ...any) error {
	return errors.NewRangeError(format, args...)
}

func notCallable(v Value) error {
	return typeErrorf("%s is not a function", Inspect(v))
}

// Get reads a member of any value. Tables answer from their raw fields
// first and fall back to their hooks; strings expose length and code-unit
// indices; other primitives have no members.
func Get(v Value, key PropertyKey) (Value, error) {
	switch v.kind {
	case KindObject:
		o := v.obj
		if r, ok := o.RawGet(key); ok {
			return r, nil
		}
		if o.hooks != nil {
			r, _, err := o.hooks.Read(o, key)
			return r, err
		}
		return Undefined, nil
	case KindString:
		return stringMember(v.str, key), nil
	case KindUndefined, KindNull:
		return Undefined, typeErrorf("Cannot read properties of %s (reading '%s')", v.kind, key)
	default:
		return Undefined, nil
	}
}

// GetString is Get with a string key.
func GetString(v Value, name string) (Value, error) {
	return Get(v, Key(name))
}

// Set writes a member. Existing raw fields are overwritten in place; absent
// keys go through the hooks, if any, else become raw fields.
func Set(v Value, key PropertyKey, val Value) error {
	if v.kind != KindObject {
		if v.IsNullish() {
			return typeErrorf("Cannot set properties of %s (setting '%s')", v.kind, key)
		}
		return typeErrorf("Cannot create property '%s' on %s %s", key, v.kind, Inspect(v))
	}
	o := v.obj
	if o.isArray && key.sym == nil && key.name == "length" {
		n, ok := ArrayLength(val)
		if !ok {
			return rangeErrorf("Invalid array length")
		}
		o.SetLength(n)
		return nil
	}
	if o.hooks == nil || o.RawHas(key) {
		o.RawSet(key, val)
		return nil
	}
	return o.hooks.Write(o, key, val)
}

// Has reports whether key resolves to something other than "not found" on
// v, consulting hooks.
func Has(v Value, key PropertyKey) (bool, error) {
	o := v.AsObject()
	if o == nil {
		if v.kind == KindString {
			return !stringMember(v.str, key).IsUndefined(), nil
		}
		return false, nil
	}
	if o.RawHas(key) {
		return true, nil
	}
	if o.hooks == nil {
		return false, nil
	}
	_, found, err := o.hooks.Read(o, key)
	return found, err
}

// Call invokes fn with the given receiver.
func Call(fn Value, this Value, args ...Value) (Value, error) {
	if !fn.IsCallable() {
		return Undefined, notCallable(fn)
	}
	return fn.obj.fn(this, args)
}

// CallMethod reads v[name] and calls it with v as receiver.
func CallMethod(v Value, name string, args ...Value) (Value, error) {
	fn, err := Get(v, Key(name))
	if err != nil {
		return Undefined, err
	}
	if !fn.IsCallable() {
		return Undefined, typeErrorf("%s.%s is not a function", Inspect(v), name)
	}
	return fn.obj.fn(v, args)
}

func stringMember(s string, key PropertyKey) Value {
	if key.sym != nil {
		return Undefined
	}
	if key.name == "length" {
		return Int(UTF16Len(s))
	}
	if i, ok := key.ArrayIndex(); ok {
		units := ToUTF16(s)
		if i < len(units) {
			return String(FromUTF16(units[i : i+1]))
		}
	}
	return Undefined
}
