// Package descriptor layers per-property getter/setter/enumerable/
// configurable/writable metadata over raw tables.
//
// A table gets a descriptor table the first time a property is defined on
// it. The descriptor table is installed as the outermost layer of the
// table's hooks and delegates keys it does not know to the layer below (a
// class dispatch table, usually), so descriptors are checked first and the
// chain walk happens on a miss.
package descriptor

import (
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Descriptor is the input form of Define. Absent fields are Undefined or
// nil; HasValue distinguishes an explicit undefined value from no value.
type Descriptor struct {
	Get      value.Value
	Set      value.Value
	Value    value.Value
	HasValue bool

	Enumerable   *bool
	Configurable *bool
	Writable     *bool
}

// Property is a fully resolved descriptor-table entry.
type Property struct {
	Accessor bool
	Get      value.Value
	Set      value.Value
	Value    value.Value

	Enumerable   bool
	Configurable bool
	Writable     bool
}

func (d Descriptor) isAccessor() bool {
	return !d.Get.IsUndefined() || !d.Set.IsUndefined()
}

// table is the per-object descriptor table, in definition order.
type table struct {
	keys   []value.PropertyKey
	props  map[value.PropertyKey]*Property
	sealed bool
	next   value.Hooks
}

func (t *table) Unwrap() value.Hooks { return t.next }

func (t *table) Read(o *value.Object, key value.PropertyKey) (value.Value, bool, error) {
	if p, ok := t.props[key]; ok {
		v, err := ReadProperty(p, o.Value())
		return v, true, err
	}
	if t.next != nil {
		return t.next.Read(o, key)
	}
	return value.Undefined, false, nil
}

func (t *table) Write(o *value.Object, key value.PropertyKey, v value.Value) error {
	if p, ok := t.props[key]; ok {
		return WriteProperty(p, key, o.Value(), v)
	}
	if t.sealed {
		return errors.NewTypeError("Cannot add property %s, object is not extensible", key)
	}
	if t.next != nil {
		return t.next.Write(o, key, v)
	}
	o.RawSet(key, v)
	return nil
}

func (t *table) remove(key value.PropertyKey) {
	delete(t.props, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

func tableOf(o *value.Object) *table {
	h := value.FindHooks(o.Hooks(), func(h value.Hooks) bool {
		_, ok := h.(*table)
		return ok
	})
	if h == nil {
		return nil
	}
	return h.(*table)
}

// install returns the descriptor table of o, creating it on first use.
func install(o *value.Object) *table {
	if t := tableOf(o); t != nil {
		return t
	}
	t := &table{props: make(map[value.PropertyKey]*Property), next: o.Hooks()}
	o.SetHooks(t)
	return t
}

// ReadProperty reads p on behalf of receiver.
func ReadProperty(p *Property, receiver value.Value) (value.Value, error) {
	if !p.Accessor {
		return p.Value, nil
	}
	if p.Get.IsUndefined() {
		return value.Undefined, nil
	}
	return value.Call(p.Get, receiver)
}

// WriteProperty assigns through p on behalf of receiver. Module code is
// strict, so writing a getter-only accessor or a read-only value raises.
func WriteProperty(p *Property, key value.PropertyKey, receiver, v value.Value) error {
	if p.Accessor {
		if p.Set.IsUndefined() {
			return errors.NewTypeError("Cannot set property %s of %s which has only a getter", key, value.Inspect(receiver))
		}
		_, err := value.Call(p.Set, receiver, v)
		return err
	}
	if !p.Writable {
		return errors.NewTypeError("Cannot assign to read only property '%s' of object '%s'", key, value.Inspect(receiver))
	}
	p.Value = v
	return nil
}

// Define installs or updates the descriptor of key on o. Flags left
// unspecified default to true when o already held a raw value at key and
// to false otherwise; the raw value also becomes the default value.
func Define(o *value.Object, key value.PropertyKey, d Descriptor) error {
	if d.isAccessor() && (d.HasValue || d.Writable != nil) {
		return errors.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	for _, fn := range []value.Value{d.Get, d.Set} {
		if !fn.IsUndefined() && !fn.IsCallable() {
			return errors.NewTypeError("Getter or setter must be a function: %s", value.Inspect(fn))
		}
	}
	if o.IsArray() {
		if _, isIndex := key.ArrayIndex(); isIndex || key == value.Key("length") {
			return errors.NewTypeError("Cannot define property %s on an array table", key)
		}
	}

	t := install(o)
	if p, ok := t.props[key]; ok {
		return redefine(p, key, d)
	}
	if t.sealed {
		return errors.NewTypeError("Cannot define property %s, object is not extensible", key)
	}

	raw, hadRaw := o.RawGet(key)
	p := &Property{
		Enumerable:   pick(d.Enumerable, hadRaw),
		Configurable: pick(d.Configurable, hadRaw),
	}
	if d.isAccessor() {
		p.Accessor = true
		p.Get, p.Set = d.Get, d.Set
	} else {
		p.Writable = pick(d.Writable, hadRaw)
		switch {
		case d.HasValue:
			p.Value = d.Value
		case hadRaw:
			p.Value = raw
		default:
			p.Value = value.Undefined
		}
	}
	if hadRaw {
		o.RawDelete(key)
	}
	t.keys = append(t.keys, key)
	t.props[key] = p
	return nil
}

func pick(b *bool, dflt bool) bool {
	if b == nil {
		return dflt
	}
	return *b
}

// redefine merges d into an existing entry, honouring configurable.
func redefine(p *Property, key value.PropertyKey, d Descriptor) error {
	if !p.Configurable {
		if !sameAsExisting(p, d) {
			return errors.NewTypeError("Cannot redefine property: %s", key)
		}
		if !p.Accessor && p.Writable && d.HasValue {
			p.Value = d.Value
		}
		if !p.Accessor && p.Writable && d.Writable != nil && !*d.Writable {
			p.Writable = false
		}
		return nil
	}
	switch {
	case d.isAccessor():
		if !p.Accessor {
			*p = Property{Accessor: true, Enumerable: p.Enumerable, Configurable: p.Configurable}
		}
		if !d.Get.IsUndefined() {
			p.Get = d.Get
		}
		if !d.Set.IsUndefined() {
			p.Set = d.Set
		}
	case d.HasValue || d.Writable != nil:
		if p.Accessor {
			*p = Property{Enumerable: p.Enumerable, Configurable: p.Configurable, Value: value.Undefined}
		}
		if d.HasValue {
			p.Value = d.Value
		}
		if d.Writable != nil {
			p.Writable = *d.Writable
		}
	}
	if d.Enumerable != nil {
		p.Enumerable = *d.Enumerable
	}
	if d.Configurable != nil {
		p.Configurable = *d.Configurable
	}
	return nil
}

// sameAsExisting reports whether applying d to a non-configurable p is
// allowed: nothing changes except a writable value (or writable going false).
func sameAsExisting(p *Property, d Descriptor) bool {
	if d.Configurable != nil && *d.Configurable {
		return false
	}
	if d.Enumerable != nil && *d.Enumerable != p.Enumerable {
		return false
	}
	if p.Accessor {
		if d.HasValue || d.Writable != nil {
			return false
		}
		if !d.Get.IsUndefined() && !value.SameValue(d.Get, p.Get) {
			return false
		}
		if !d.Set.IsUndefined() && !value.SameValue(d.Set, p.Set) {
			return false
		}
		return true
	}
	if d.isAccessor() {
		return false
	}
	if !p.Writable {
		if d.Writable != nil && *d.Writable {
			return false
		}
		if d.HasValue && !value.SameValue(d.Value, p.Value) {
			return false
		}
	}
	return true
}

// Delete removes key from o. Without a descriptor it is a raw delete that
// reports whether a value was present; a non-configurable descriptor raises.
func Delete(o *value.Object, key value.PropertyKey) (bool, error) {
	t := tableOf(o)
	if t == nil {
		return o.RawDelete(key), nil
	}
	p, ok := t.props[key]
	if !ok {
		if t.sealed && o.RawHas(key) {
			return false, errors.NewTypeError("Cannot delete property '%s' of %s", key, value.Inspect(o.Value()))
		}
		return o.RawDelete(key), nil
	}
	if !p.Configurable {
		return false, errors.NewTypeError("Cannot delete property '%s' of %s", key, value.Inspect(o.Value()))
	}
	t.remove(key)
	return true, nil
}

// Lookup returns the own descriptor-table entry of key, if any.
func Lookup(o *value.Object, key value.PropertyKey) (*Property, bool) {
	t := tableOf(o)
	if t == nil {
		return nil, false
	}
	p, ok := t.props[key]
	return p, ok
}

// GetOwnDescriptors returns a copy of o's descriptor table; it is empty when
// no descriptor was ever defined on o.
func GetOwnDescriptors(o *value.Object) map[value.PropertyKey]Property {
	out := make(map[value.PropertyKey]Property)
	t := tableOf(o)
	if t == nil {
		return out
	}
	for k, p := range t.props {
		out[k] = *p
	}
	return out
}

// GetOwnDescriptor describes an own property: a descriptor-table entry, or
// a raw field reported as a writable, enumerable, configurable data
// property.
func GetOwnDescriptor(o *value.Object, key value.PropertyKey) (Property, bool) {
	if p, ok := Lookup(o, key); ok {
		return *p, true
	}
	if v, ok := o.RawGet(key); ok {
		if o.IsArray() && key == value.Key("length") {
			return Property{Value: v, Writable: true}, true
		}
		return Property{Value: v, Writable: true, Enumerable: true, Configurable: true}, true
	}
	return Property{}, false
}

// DefinedKeys lists the keys of o's descriptor table in definition order,
// symbols and non-enumerable keys included.
func DefinedKeys(o *value.Object) []value.PropertyKey {
	t := tableOf(o)
	if t == nil {
		return nil
	}
	return append([]value.PropertyKey(nil), t.keys...)
}
