// Package class implements single-inheritance classes over hooked tables:
// member resolution through the class chain, construction, and runtime
// instance-of tests.
//
// Class descriptors live in a Registry arena and refer to their parent by
// ID, never by pointer, so chains are index hops and a class never owns its
// ancestors.
package class

import (
	"github.com/nooga/tsrt/pkg/descriptor"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// ID addresses a class in its Registry.
type ID int32

// NoParent is the parent ID of a root class.
const NoParent ID = -1

// FieldInit is one instance field initializer. Init may be nil, in which
// case the field starts as undefined.
type FieldInit struct {
	Key  value.PropertyKey
	Init func(this value.Value) (value.Value, error)
}

// Class is one source-level class.
type Class struct {
	reg    *Registry
	id     ID
	name   string
	parent ID

	fields  []FieldInit
	proto   *value.Object // dispatch table: methods and prototype fields
	getters map[value.PropertyKey]value.Value
	setters map[value.PropertyKey]value.Value
	statics *value.Object
	ctor    value.Value

	// coerce replaces allocation for the primitive box classes.
	coerce func(args []value.Value) (value.Value, error)
}

func (c *Class) ID() ID                   { return c.id }
func (c *Class) Name() string             { return c.name }
func (c *Class) Prototype() *value.Object { return c.proto }
func (c *Class) Statics() *value.Object   { return c.statics }

// Value returns the class as a source value: its statics table, which is
// callable only to report that classes need new.
func (c *Class) Value() value.Value { return c.statics.Value() }

// Parent returns the parent class, or nil for a root class.
func (c *Class) Parent() *Class {
	if c.parent == NoParent {
		return nil
	}
	return c.reg.classes[c.parent]
}

// AddField appends an instance field initializer.
func (c *Class) AddField(key value.PropertyKey, init func(this value.Value) (value.Value, error)) *Class {
	c.fields = append(c.fields, FieldInit{Key: key, Init: init})
	return c
}

// AddMethod installs a method on the dispatch table.
func (c *Class) AddMethod(name string, fn value.NativeFunction) *Class {
	c.proto.RawSet(value.Key(name), value.Func(name, fn))
	return c
}

// AddMethodKey installs a method under an arbitrary key (e.g. a symbol).
func (c *Class) AddMethodKey(key value.PropertyKey, fn value.NativeFunction) *Class {
	c.proto.RawSet(key, value.Func(key.String(), fn))
	return c
}

// AddGetter installs an accessor read function.
func (c *Class) AddGetter(name string, fn value.NativeFunction) *Class {
	if c.getters == nil {
		c.getters = make(map[value.PropertyKey]value.Value)
	}
	c.getters[value.Key(name)] = value.Func("get "+name, fn)
	return c
}

// AddSetter installs an accessor write function.
func (c *Class) AddSetter(name string, fn value.NativeFunction) *Class {
	if c.setters == nil {
		c.setters = make(map[value.PropertyKey]value.Value)
	}
	c.setters[value.Key(name)] = value.Func("set "+name, fn)
	return c
}

// AddStatic sets a static member.
func (c *Class) AddStatic(name string, v value.Value) *Class {
	c.statics.RawSet(value.Key(name), v)
	return c
}

// SetConstructor sets the constructor body; this is the new instance.
func (c *Class) SetConstructor(fn value.NativeFunction) *Class {
	c.ctor = value.Func(c.name, fn)
	return c
}

// Read resolves a key absent from an instance through the class chain.
// Each level is checked for a raw dispatch-table field, then a getter, then
// a descriptor defined on the dispatch table; the first hit wins.
func (c *Class) Read(o *value.Object, key value.PropertyKey) (value.Value, bool, error) {
	return c.lookup(o.Value(), key)
}

func (c *Class) lookup(receiver value.Value, key value.PropertyKey) (value.Value, bool, error) {
	depth := 0
	for cur := c; cur != nil; cur = cur.Parent() {
		if depth++; depth > c.reg.opts.MaxChainDepth {
			return value.Undefined, false, errChainTooDeep(c)
		}
		if v, ok := cur.proto.RawGet(key); ok {
			return v, true, nil
		}
		if g, ok := cur.getters[key]; ok {
			v, err := value.Call(g, receiver)
			return v, true, err
		}
		if p, ok := descriptor.Lookup(cur.proto, key); ok {
			v, err := descriptor.ReadProperty(p, receiver)
			return v, true, err
		}
	}
	return value.Undefined, false, nil
}

// Write handles an assignment to a key absent from an instance. The chain
// is walked for a setter; without one the value lands as a raw field of
// the instance itself, never on an ancestor.
func (c *Class) Write(o *value.Object, key value.PropertyKey, v value.Value) error {
	receiver := o.Value()
	depth := 0
	for cur := c; cur != nil; cur = cur.Parent() {
		if depth++; depth > c.reg.opts.MaxChainDepth {
			return errChainTooDeep(c)
		}
		if s, ok := cur.setters[key]; ok {
			_, err := value.Call(s, receiver, v)
			return err
		}
		if p, ok := descriptor.Lookup(cur.proto, key); ok {
			if (p.Accessor && !p.Set.IsUndefined()) || (!p.Accessor && !p.Writable) {
				return descriptor.WriteProperty(p, key, receiver, v)
			}
		}
	}
	o.RawSet(key, v)
	return nil
}

// SuperGet reads key starting at c's parent with this as receiver
// (super.key inside a method of c).
func (c *Class) SuperGet(this value.Value, key value.PropertyKey) (value.Value, error) {
	p := c.Parent()
	if p == nil {
		return value.Undefined, nil
	}
	v, _, err := p.lookup(this, key)
	return v, err
}

// SuperCall runs the parent's construction on this (super(...args) inside
// the constructor of c), then initializes c's own fields. A second call
// from the same constructor raises a ReferenceError.
func (c *Class) SuperCall(this value.Value, args ...value.Value) error {
	p := c.Parent()
	if p == nil {
		return nil
	}
	f := frame{this.AsObject(), c.id}
	if c.reg.running[f] {
		return errors.NewReferenceError("Super constructor may only be called once")
	}
	if _, err := p.construct(this, args); err != nil {
		return err
	}
	if _, ok := c.reg.running[f]; ok {
		c.reg.running[f] = true
	}
	return c.initFields(this)
}

func errChainTooDeep(c *Class) error {
	return errors.NewRangeError("prototype chain of %s is too deep (cyclic extends?)", c.name)
}

// staticHooks resolves static members through the parent classes' statics.
type staticHooks struct{ c *Class }

func (h staticHooks) Read(o *value.Object, key value.PropertyKey) (value.Value, bool, error) {
	if key == value.Key("prototype") {
		return h.c.proto.Value(), true, nil
	}
	if key == value.Key("name") {
		return value.String(h.c.name), true, nil
	}
	depth := 0
	for cur := h.c.Parent(); cur != nil; cur = cur.Parent() {
		if depth++; depth > h.c.reg.opts.MaxChainDepth {
			return value.Undefined, false, errChainTooDeep(h.c)
		}
		if v, ok := cur.statics.RawGet(key); ok {
			return v, true, nil
		}
		if p, ok := descriptor.Lookup(cur.statics, key); ok {
			v, err := descriptor.ReadProperty(p, o.Value())
			return v, true, err
		}
	}
	return value.Undefined, false, nil
}

func (h staticHooks) Write(o *value.Object, key value.PropertyKey, v value.Value) error {
	o.RawSet(key, v)
	return nil
}
