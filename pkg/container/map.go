package container

import (
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Map is an insertion-ordered map with SameValueZero keys.
type Map struct {
	t   ordered
	obj *value.Object
}

// NewMap builds a map from an iterable of [key, value] entries; undefined
// or null give an empty map.
func NewMap(entries value.Value) (*Map, error) {
	m := &Map{}
	if entries.IsNullish() {
		return m, nil
	}
	err := value.Iterate(entries, func(e value.Value) (bool, error) {
		if !e.IsObject() {
			return false, errors.NewTypeError("Iterator value %s is not an entry object", value.Inspect(e))
		}
		k, err := value.Get(e, value.IndexKey(0))
		if err != nil {
			return false, err
		}
		v, err := value.Get(e, value.IndexKey(1))
		if err != nil {
			return false, err
		}
		m.t.set(k, v)
		return true, nil
	})
	return m, err
}

func MapSet(m *Map, k, v value.Value) *Map {
	m.t.set(k, v)
	return m
}

func MapGet(m *Map, k value.Value) value.Value {
	v, _ := m.t.get(k)
	return v
}

func MapHas(m *Map, k value.Value) bool {
	_, ok := m.t.lookup(k)
	return ok
}

func MapDelete(m *Map, k value.Value) bool { return m.t.remove(k) }
func MapClear(m *Map)                      { m.t.clear() }
func MapSize(m *Map) int                   { return m.t.size }

// MapForEach calls fn(value, key, map) in insertion order.
func MapForEach(m *Map, fn, thisArg value.Value) error {
	if !fn.IsCallable() {
		return errors.NewTypeError("%s is not a function", value.Inspect(fn))
	}
	self := m.Value()
	return m.t.each(func(k, v value.Value) (bool, error) {
		_, err := value.Call(fn, thisArg, v, k, self)
		return true, err
	})
}

func MapKeys(m *Map) value.Value    { return value.NewIteratorObject(m.t.iterator(iterKeys)) }
func MapValues(m *Map) value.Value  { return value.NewIteratorObject(m.t.iterator(iterValues)) }
func MapEntries(m *Map) value.Value { return value.NewIteratorObject(m.t.iterator(iterEntries)) }

// MapGroupBy groups the items of an iterable under the keys returned by
// fn(item, index); each group is an array in encounter order.
func MapGroupBy(items, fn value.Value) (*Map, error) {
	if !fn.IsCallable() {
		return nil, errors.NewTypeError("%s is not a function", value.Inspect(fn))
	}
	m := &Map{}
	i := 0
	err := value.Iterate(items, func(item value.Value) (bool, error) {
		k, err := value.Call(fn, value.Undefined, item, value.Int(i))
		if err != nil {
			return false, err
		}
		i++
		if g, ok := m.t.get(k); ok {
			g.AsObject().Push(item)
		} else {
			m.t.set(k, value.ArrayOf(item))
		}
		return true, nil
	})
	return m, err
}

// Iterator iterates [key, value] entries.
func (m *Map) Iterator() value.Iterator { return m.t.iterator(iterEntries) }

func (m *Map) Tag() string { return "Map" }

// Value returns the map as a source value.
func (m *Map) Value() value.Value {
	if m.obj == nil {
		m.obj = value.NewObjectWithHooks(mapMethods)
		m.obj.SetInternal(m)
	}
	return m.obj.Value()
}

// MapOf recovers the map behind a map table.
func MapOf(v value.Value) (*Map, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	m, ok := o.Internal().(*Map)
	return m, ok
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}

func self[T any](o *value.Object) T { return o.Internal().(T) }

var mapMethods *value.MethodTable

func init() {
	mapMethods = &value.MethodTable{
		Name: "Map",
		Methods: map[value.PropertyKey]value.Method{
			value.Key("get"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return MapGet(self[*Map](o), arg(args, 0)), nil
			},
			value.Key("set"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return MapSet(self[*Map](o), arg(args, 0), arg(args, 1)).Value(), nil
			},
			value.Key("has"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(MapHas(self[*Map](o), arg(args, 0))), nil
			},
			value.Key("delete"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(MapDelete(self[*Map](o), arg(args, 0))), nil
			},
			value.Key("clear"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				MapClear(self[*Map](o))
				return value.Undefined, nil
			},
			value.Key("forEach"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Undefined, MapForEach(self[*Map](o), arg(args, 0), arg(args, 1))
			},
			value.Key("keys"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return MapKeys(self[*Map](o)), nil
			},
			value.Key("values"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return MapValues(self[*Map](o)), nil
			},
			value.Key("entries"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return MapEntries(self[*Map](o)), nil
			},
			value.SymbolKey(value.SymbolIterator): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return MapEntries(self[*Map](o)), nil
			},
		},
		Getters: map[value.PropertyKey]value.Getter{
			value.Key("size"): func(o *value.Object) (value.Value, error) {
				return value.Int(MapSize(self[*Map](o))), nil
			},
		},
	}
}

// Set is an insertion-ordered set with SameValueZero membership.
type Set struct {
	t   ordered
	obj *value.Object
}

// NewSet builds a set from an iterable; undefined or null give an empty
// set.
func NewSet(iterable value.Value) (*Set, error) {
	s := &Set{}
	if iterable.IsNullish() {
		return s, nil
	}
	err := value.Iterate(iterable, func(v value.Value) (bool, error) {
		s.t.set(v, v)
		return true, nil
	})
	return s, err
}

func SetAdd(s *Set, v value.Value) *Set {
	if _, ok := s.t.lookup(v); !ok {
		s.t.set(v, v)
	}
	return s
}

func SetHas(s *Set, v value.Value) bool {
	_, ok := s.t.lookup(v)
	return ok
}

func SetDelete(s *Set, v value.Value) bool { return s.t.remove(v) }
func SetClear(s *Set)                      { s.t.clear() }
func SetSize(s *Set) int                   { return s.t.size }

// SetForEach calls fn(value, value, set) in insertion order.
func SetForEach(s *Set, fn, thisArg value.Value) error {
	if !fn.IsCallable() {
		return errors.NewTypeError("%s is not a function", value.Inspect(fn))
	}
	obj := s.Value()
	return s.t.each(func(k, _ value.Value) (bool, error) {
		_, err := value.Call(fn, thisArg, k, k, obj)
		return true, err
	})
}

func SetValues(s *Set) value.Value  { return value.NewIteratorObject(s.t.iterator(iterKeys)) }
func SetEntries(s *Set) value.Value { return value.NewIteratorObject(s.t.iterator(iterEntries)) }

func (s *Set) Iterator() value.Iterator { return s.t.iterator(iterKeys) }

func (s *Set) Tag() string { return "Set" }

// Value returns the set as a source value.
func (s *Set) Value() value.Value {
	if s.obj == nil {
		s.obj = value.NewObjectWithHooks(setMethods)
		s.obj.SetInternal(s)
	}
	return s.obj.Value()
}

// SetOf recovers the set behind a set table.
func SetOf(v value.Value) (*Set, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	s, ok := o.Internal().(*Set)
	return s, ok
}

var setMethods *value.MethodTable

func init() {
	setMethods = &value.MethodTable{
		Name: "Set",
		Methods: map[value.PropertyKey]value.Method{
			value.Key("add"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return SetAdd(self[*Set](o), arg(args, 0)).Value(), nil
			},
			value.Key("has"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(SetHas(self[*Set](o), arg(args, 0))), nil
			},
			value.Key("delete"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(SetDelete(self[*Set](o), arg(args, 0))), nil
			},
			value.Key("clear"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				SetClear(self[*Set](o))
				return value.Undefined, nil
			},
			value.Key("forEach"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Undefined, SetForEach(self[*Set](o), arg(args, 0), arg(args, 1))
			},
			value.Key("values"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return SetValues(self[*Set](o)), nil
			},
			value.Key("keys"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return SetValues(self[*Set](o)), nil
			},
			value.Key("entries"): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return SetEntries(self[*Set](o)), nil
			},
			value.SymbolKey(value.SymbolIterator): func(o *value.Object, _ []value.Value) (value.Value, error) {
				return SetValues(self[*Set](o)), nil
			},
		},
		Getters: map[value.PropertyKey]value.Getter{
			value.Key("size"): func(o *value.Object) (value.Value, error) {
				return value.Int(SetSize(self[*Set](o))), nil
			},
		},
	}
}
