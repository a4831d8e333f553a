package rt

import (
	"github.com/nooga/tsrt/pkg/class"
	"github.com/nooga/tsrt/pkg/descriptor"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// ModuleBuilder declares the exports of a Go-implemented module. Methods
// chain; the first failure is reported by DeclareModule.
type ModuleBuilder struct {
	realm   *Realm
	names   []string
	exports map[string]value.Value
	err     error
}

func newModuleBuilder(r *Realm) *ModuleBuilder {
	return &ModuleBuilder{realm: r, exports: make(map[string]value.Value)}
}

func (m *ModuleBuilder) export(name string, v value.Value) *ModuleBuilder {
	if _, dup := m.exports[name]; dup {
		m.fail(errors.NewSyntaxError("Duplicate export of '%s'", name))
		return m
	}
	m.names = append(m.names, name)
	m.exports[name] = v
	return m
}

func (m *ModuleBuilder) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

// Const exports a Go value converted with FromGo.
func (m *ModuleBuilder) Const(name string, x any) *ModuleBuilder {
	return m.export(name, FromGo(x))
}

// Function exports a Go function wrapped with Func.
func (m *ModuleBuilder) Function(name string, fn any) *ModuleBuilder {
	v, err := Func(name, fn)
	if err != nil {
		m.fail(err)
		return m
	}
	return m.export(name, v)
}

// Class defines a class in the module's realm, lets build add its members,
// and exports it.
func (m *ModuleBuilder) Class(name string, build func(c *class.Class)) *ModuleBuilder {
	c := m.realm.Class(name)
	if build != nil {
		build(c)
	}
	return m.export(name, c.Value())
}

// Namespace exports a nested frozen table built the same way.
func (m *ModuleBuilder) Namespace(name string, build func(ns *ModuleBuilder)) *ModuleBuilder {
	ns := newModuleBuilder(m.realm)
	build(ns)
	v, err := ns.table()
	if err != nil {
		m.fail(err)
		return m
	}
	return m.export(name, v)
}

// Default sets the default export.
func (m *ModuleBuilder) Default(x any) *ModuleBuilder {
	return m.export("default", FromGo(x))
}

// table freezes the exports into a namespace table, in declaration order.
func (m *ModuleBuilder) table() (value.Value, error) {
	if m.err != nil {
		return value.Undefined, m.err
	}
	o := value.NewObject()
	for _, name := range m.names {
		o.RawSet(value.Key(name), m.exports[name])
	}
	if err := descriptor.Freeze(o); err != nil {
		return value.Undefined, err
	}
	return o.Value(), nil
}

// DeclareModule registers a Go-implemented module under name. Its namespace
// table is built on the first Import.
func (r *Realm) DeclareModule(name string, build func(m *ModuleBuilder)) {
	if r.modules == nil {
		r.modules = make(map[string]*nativeModule)
	}
	r.modules[name] = &nativeModule{build: build}
}

type nativeModule struct {
	build func(m *ModuleBuilder)
	ns    value.Value
	err   error
	done  bool
}

// Import returns the namespace table of a declared module.
func (r *Realm) Import(name string) (value.Value, error) {
	mod, ok := r.modules[name]
	if !ok {
		return value.Undefined, errors.NewReferenceError("Cannot find module '%s'", name)
	}
	if !mod.done {
		mb := newModuleBuilder(r)
		mod.build(mb)
		mod.ns, mod.err = mb.table()
		mod.done = true
		r.log.Debug("module initialized", "module", name, "exports", len(mb.names))
	}
	return mod.ns, mod.err
}
