package descriptor

import (
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Keys lists the enumerable own string keys of o: raw fields first, then
// enumerable descriptors in definition order.
func Keys(o *value.Object) []value.PropertyKey {
	var out []value.PropertyKey
	for _, k := range o.RawKeys() {
		if !k.IsSymbol() {
			out = append(out, k)
		}
	}
	if t := tableOf(o); t != nil {
		for _, k := range t.keys {
			if !k.IsSymbol() && t.props[k].Enumerable {
				out = append(out, k)
			}
		}
	}
	return out
}

// Entries returns [key, value] pairs for Keys(o), reading accessors.
func Entries(o *value.Object) (value.Value, error) {
	keys := Keys(o)
	out := make([]value.Value, 0, len(keys))
	for _, k := range keys {
		v, err := value.Get(o.Value(), k)
		if err != nil {
			return value.Undefined, err
		}
		out = append(out, value.ArrayOf(k.Value(), v))
	}
	return value.NewArray(out).Value(), nil
}

// Freeze turns every own property of o into a non-writable,
// non-configurable one and forbids new properties. Array tables keep their
// elements in the array part, which descriptors do not cover, so they are
// rejected.
func Freeze(o *value.Object) error {
	if o.IsArray() {
		return errors.NewTypeError("Cannot freeze array tables")
	}
	f := false
	for _, k := range o.RawKeys() {
		if err := Define(o, k, Descriptor{Writable: &f, Configurable: &f}); err != nil {
			return err
		}
	}
	t := install(o)
	for _, p := range t.props {
		p.Configurable = false
		if !p.Accessor {
			p.Writable = false
		}
	}
	t.sealed = true
	return nil
}

// IsFrozen reports whether Freeze semantics hold for o.
func IsFrozen(o *value.Object) bool {
	t := tableOf(o)
	if t == nil || !t.sealed || len(o.RawKeys()) > 0 {
		return false
	}
	for _, p := range t.props {
		if p.Configurable || (!p.Accessor && p.Writable) {
			return false
		}
	}
	return true
}

// ToValue renders p as a source-level descriptor record.
func ToValue(p Property) value.Value {
	o := value.NewObject()
	if p.Accessor {
		o.RawSet(value.Key("get"), p.Get)
		o.RawSet(value.Key("set"), p.Set)
	} else {
		o.RawSet(value.Key("value"), p.Value)
		o.RawSet(value.Key("writable"), value.Bool(p.Writable))
	}
	o.RawSet(value.Key("enumerable"), value.Bool(p.Enumerable))
	o.RawSet(value.Key("configurable"), value.Bool(p.Configurable))
	return o.Value()
}

// FromValue reads a source-level descriptor record, as passed to
// Object.defineProperty.
func FromValue(v value.Value) (Descriptor, error) {
	if !v.IsObject() {
		return Descriptor{}, errors.NewTypeError("Property description must be an object: %s", value.Inspect(v))
	}
	d := Descriptor{Get: value.Undefined, Set: value.Undefined, Value: value.Undefined}
	field := func(name string) (value.Value, bool, error) {
		k := value.Key(name)
		ok, err := value.Has(v, k)
		if err != nil || !ok {
			return value.Undefined, false, err
		}
		f, err := value.Get(v, k)
		return f, true, err
	}
	flag := func(name string, dst **bool) error {
		f, ok, err := field(name)
		if err != nil || !ok {
			return err
		}
		b := value.ToBoolean(f)
		*dst = &b
		return nil
	}
	var err error
	if d.Get, _, err = field("get"); err != nil {
		return d, err
	}
	if d.Set, _, err = field("set"); err != nil {
		return d, err
	}
	if d.Value, d.HasValue, err = field("value"); err != nil {
		return d, err
	}
	for name, dst := range map[string]**bool{"enumerable": &d.Enumerable, "configurable": &d.Configurable, "writable": &d.Writable} {
		if err := flag(name, dst); err != nil {
			return d, err
		}
	}
	return d, nil
}
