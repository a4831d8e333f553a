package container

import (
	"runtime"
	"sync"
	"weak"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Weak collections hold their keys through weak pointers. When a key is
// collected a cleanup removes its entry, so nothing is observable for a key
// nobody can reach any more. Values are held strongly: a value that refers
// back to its own key keeps that key alive (there are no ephemerons).
//
// Cleanups run on the runtime's cleanup goroutine, hence the mutex.

type weakKey = weak.Pointer[value.Object]

type weakTable struct {
	mu      sync.Mutex
	entries map[weakKey]value.Value
}

// sweep identifies the entry to drop once a key is collected. It refers to
// the table weakly too, so a live key does not pin a dead table.
type sweep struct {
	table weak.Pointer[weakTable]
	key   weakKey
}

func (t *weakTable) set(o *value.Object, v value.Value) {
	k := weak.Make(o)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[weakKey]value.Value)
	}
	if _, ok := t.entries[k]; !ok {
		runtime.AddCleanup(o, func(s sweep) {
			if tbl := s.table.Value(); tbl != nil {
				tbl.mu.Lock()
				delete(tbl.entries, s.key)
				tbl.mu.Unlock()
			}
		}, sweep{table: weak.Make(t), key: k})
	}
	t.entries[k] = v
}

func (t *weakTable) get(o *value.Object) (value.Value, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[weak.Make(o)]
	return v, ok
}

func (t *weakTable) remove(o *value.Object) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := weak.Make(o)
	_, ok := t.entries[k]
	delete(t.entries, k)
	return ok
}

func (t *weakTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// WeakMap maps object keys to values without keeping the keys alive.
type WeakMap struct {
	t   *weakTable
	obj *value.Object
}

func NewWeakMap() *WeakMap { return &WeakMap{t: &weakTable{}} }

func weakKeyOf(k value.Value, what string) (*value.Object, error) {
	o := k.AsObject()
	if o == nil {
		return nil, errors.NewTypeError("Invalid value used %s", what)
	}
	return o, nil
}

func WeakMapSet(m *WeakMap, k, v value.Value) (*WeakMap, error) {
	o, err := weakKeyOf(k, "as weak map key")
	if err != nil {
		return m, err
	}
	m.t.set(o, v)
	return m, nil
}

// WeakMapGet returns undefined for absent keys and for non-object keys.
func WeakMapGet(m *WeakMap, k value.Value) value.Value {
	if o := k.AsObject(); o != nil {
		if v, ok := m.t.get(o); ok {
			return v
		}
	}
	return value.Undefined
}

func WeakMapHas(m *WeakMap, k value.Value) bool {
	if o := k.AsObject(); o != nil {
		_, ok := m.t.get(o)
		return ok
	}
	return false
}

func WeakMapDelete(m *WeakMap, k value.Value) bool {
	if o := k.AsObject(); o != nil {
		return m.t.remove(o)
	}
	return false
}

// Len reports the number of entries whose key has not been swept yet.
func (m *WeakMap) Len() int { return m.t.len() }

func (m *WeakMap) Tag() string { return "WeakMap" }

func (m *WeakMap) Value() value.Value {
	if m.obj == nil {
		m.obj = value.NewObjectWithHooks(weakMapMethods)
		m.obj.SetInternal(m)
	}
	return m.obj.Value()
}

var weakMapMethods *value.MethodTable

func init() {
	weakMapMethods = &value.MethodTable{
		Name: "WeakMap",
		Methods: map[value.PropertyKey]value.Method{
			value.Key("get"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return WeakMapGet(self[*WeakMap](o), arg(args, 0)), nil
			},
			value.Key("set"): func(o *value.Object, args []value.Value) (value.Value, error) {
				m, err := WeakMapSet(self[*WeakMap](o), arg(args, 0), arg(args, 1))
				return m.Value(), err
			},
			value.Key("has"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(WeakMapHas(self[*WeakMap](o), arg(args, 0))), nil
			},
			value.Key("delete"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(WeakMapDelete(self[*WeakMap](o), arg(args, 0))), nil
			},
		},
	}
}

// WeakSet holds object members without keeping them alive.
type WeakSet struct {
	t   *weakTable
	obj *value.Object
}

func NewWeakSet() *WeakSet { return &WeakSet{t: &weakTable{}} }

func WeakSetAdd(s *WeakSet, v value.Value) (*WeakSet, error) {
	o, err := weakKeyOf(v, "in weak set")
	if err != nil {
		return s, err
	}
	s.t.set(o, value.True)
	return s, nil
}

func WeakSetHas(s *WeakSet, v value.Value) bool {
	if o := v.AsObject(); o != nil {
		_, ok := s.t.get(o)
		return ok
	}
	return false
}

func WeakSetDelete(s *WeakSet, v value.Value) bool {
	if o := v.AsObject(); o != nil {
		return s.t.remove(o)
	}
	return false
}

func (s *WeakSet) Len() int { return s.t.len() }

func (s *WeakSet) Tag() string { return "WeakSet" }

func (s *WeakSet) Value() value.Value {
	if s.obj == nil {
		s.obj = value.NewObjectWithHooks(weakSetMethods)
		s.obj.SetInternal(s)
	}
	return s.obj.Value()
}

var weakSetMethods *value.MethodTable

func init() {
	weakSetMethods = &value.MethodTable{
		Name: "WeakSet",
		Methods: map[value.PropertyKey]value.Method{
			value.Key("add"): func(o *value.Object, args []value.Value) (value.Value, error) {
				s, err := WeakSetAdd(self[*WeakSet](o), arg(args, 0))
				return s.Value(), err
			},
			value.Key("has"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(WeakSetHas(self[*WeakSet](o), arg(args, 0))), nil
			},
			value.Key("delete"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return value.Bool(WeakSetDelete(self[*WeakSet](o), arg(args, 0))), nil
			},
		},
	}
}
