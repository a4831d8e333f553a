package rt

import (
	"github.com/nooga/tsrt/pkg/class"
	"github.com/nooga/tsrt/pkg/descriptor"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

func classOf(v value.Value) (*class.Class, error) {
	c, ok := class.FromValue(v)
	if !ok {
		return nil, errors.NewTypeError("%s is not a constructor", value.Inspect(v))
	}
	return c, nil
}

func objectArg(v value.Value, fn string) (*value.Object, error) {
	o := v.AsObject()
	if o == nil {
		return nil, errors.NewTypeError("%s called on non-object", fn)
	}
	return o, nil
}

// New implements the new expression on a class value.
func New(cls value.Value, args ...value.Value) (value.Value, error) {
	c, err := classOf(cls)
	if err != nil {
		return value.Undefined, err
	}
	return class.New(c, args...)
}

// InstanceOf implements instanceof. A right-hand side that is not a class
// raises; a left-hand side that is not an instance is simply false.
func InstanceOf(v, cls value.Value) (bool, error) {
	c, err := classOf(cls)
	if err != nil {
		return false, errors.NewTypeError("Right-hand side of 'instanceof' is not callable")
	}
	return class.InstanceOf(v, c), nil
}

// Get implements obj[key].
func Get(obj, key value.Value) (value.Value, error) {
	return value.Get(obj, value.ToPropertyKey(key))
}

// Set implements obj[key] = v.
func Set(obj, key, v value.Value) error {
	return value.Set(obj, value.ToPropertyKey(key), v)
}

// Has implements the in operator.
func Has(obj, key value.Value) (bool, error) {
	if !obj.IsObject() {
		return false, errors.NewTypeError("Cannot use 'in' operator to search for '%s' in %s", value.ToString(key), value.Inspect(obj))
	}
	return value.Has(obj, value.ToPropertyKey(key))
}

// Delete implements the delete operator. Deleting from a primitive is a
// no-op that succeeds; deleting a non-configurable property raises.
func Delete(obj, key value.Value) (bool, error) {
	if obj.IsNullish() {
		return false, errors.NewTypeError("Cannot convert undefined or null to object")
	}
	o := obj.AsObject()
	if o == nil {
		return true, nil
	}
	return descriptor.Delete(o, value.ToPropertyKey(key))
}

// DefineProperty implements Object.defineProperty and returns obj.
func DefineProperty(obj, key, desc value.Value) (value.Value, error) {
	o, err := objectArg(obj, "Object.defineProperty")
	if err != nil {
		return value.Undefined, err
	}
	d, err := descriptor.FromValue(desc)
	if err != nil {
		return value.Undefined, err
	}
	if err := descriptor.Define(o, value.ToPropertyKey(key), d); err != nil {
		return value.Undefined, err
	}
	return obj, nil
}

// DefineProperties applies every own enumerable entry of props.
func DefineProperties(obj, props value.Value) (value.Value, error) {
	o, err := objectArg(obj, "Object.defineProperties")
	if err != nil {
		return value.Undefined, err
	}
	p, err := objectArg(props, "Object.defineProperties")
	if err != nil {
		return value.Undefined, err
	}
	for _, k := range descriptor.Keys(p) {
		dv, err := value.Get(props, k)
		if err != nil {
			return value.Undefined, err
		}
		d, err := descriptor.FromValue(dv)
		if err != nil {
			return value.Undefined, err
		}
		if err := descriptor.Define(o, k, d); err != nil {
			return value.Undefined, err
		}
	}
	return obj, nil
}

// GetOwnPropertyDescriptor describes one own property, or returns
// undefined.
func GetOwnPropertyDescriptor(obj, key value.Value) (value.Value, error) {
	o, err := objectArg(obj, "Object.getOwnPropertyDescriptor")
	if err != nil {
		return value.Undefined, err
	}
	p, ok := descriptor.GetOwnDescriptor(o, value.ToPropertyKey(key))
	if !ok {
		return value.Undefined, nil
	}
	return descriptor.ToValue(p), nil
}

// GetOwnPropertyDescriptors returns the descriptor table of obj as a table
// of descriptor records, in definition order. Raw fields are not listed: an
// object nobody defined a property on yields an empty table.
func GetOwnPropertyDescriptors(obj value.Value) (value.Value, error) {
	o, err := objectArg(obj, "Object.getOwnPropertyDescriptors")
	if err != nil {
		return value.Undefined, err
	}
	props := descriptor.GetOwnDescriptors(o)
	out := value.NewObject()
	for _, k := range descriptor.DefinedKeys(o) {
		out.RawSet(k, descriptor.ToValue(props[k]))
	}
	return out.Value(), nil
}

// Keys implements Object.keys.
func Keys(obj value.Value) (value.Value, error) {
	o, err := objectArg(obj, "Object.keys")
	if err != nil {
		return value.Undefined, err
	}
	keys := descriptor.Keys(o)
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = k.Value()
	}
	return value.NewArray(out).Value(), nil
}

// Entries implements Object.entries for non-array tables.
func Entries(obj value.Value) (value.Value, error) {
	o, err := objectArg(obj, "Object.entries")
	if err != nil {
		return value.Undefined, err
	}
	return descriptor.Entries(o)
}

// Freeze implements Object.freeze and returns obj. Primitives are returned
// unchanged.
func Freeze(obj value.Value) (value.Value, error) {
	o := obj.AsObject()
	if o == nil {
		return obj, nil
	}
	if err := descriptor.Freeze(o); err != nil {
		return value.Undefined, err
	}
	return obj, nil
}

// IsFrozen implements Object.isFrozen.
func IsFrozen(obj value.Value) bool {
	o := obj.AsObject()
	return o == nil || descriptor.IsFrozen(o)
}

// Throw raises v. The error converts back to v itself in a catch clause.
func Throw(v value.Value) error { return value.ToError(v) }
