package value

// Hooks is a dispatch table attached to a table. It is consulted only for
// keys absent from the table's raw fields: Read resolves a missing key,
// Write handles an assignment to a missing key (and must store the value
// somewhere, typically the raw fields, when nothing intercepts it).
type Hooks interface {
	Read(o *Object, key PropertyKey) (Value, bool, error)
	Write(o *Object, key PropertyKey, v Value) error
}

// HookWrapper is implemented by hooks layered over other hooks, such as a
// descriptor table over a class dispatch table.
type HookWrapper interface {
	Unwrap() Hooks
}

// FindHooks walks a hook stack from the outermost layer and returns the
// first layer accepted by match.
func FindHooks(h Hooks, match func(Hooks) bool) Hooks {
	for h != nil {
		if match(h) {
			return h
		}
		w, ok := h.(HookWrapper)
		if !ok {
			return nil
		}
		h = w.Unwrap()
	}
	return nil
}

// Method is a Go method exposed on a Go-backed table.
type Method func(o *Object, args []Value) (Value, error)

// Getter computes a read-only property of a Go-backed table.
type Getter func(o *Object) (Value, error)

// MethodTable exposes Go methods and getters as members of Go-backed
// tables (promises, generators, maps). Methods are bound to the table they
// are read from.
type MethodTable struct {
	Name    string
	Methods map[PropertyKey]Method
	Getters map[PropertyKey]Getter
}

func (t *MethodTable) Read(o *Object, key PropertyKey) (Value, bool, error) {
	if g, ok := t.Getters[key]; ok {
		v, err := g(o)
		return v, true, err
	}
	if m, ok := t.Methods[key]; ok {
		return Func(key.String(), func(_ Value, args []Value) (Value, error) {
			return m(o, args)
		}), true, nil
	}
	return Undefined, false, nil
}

func (t *MethodTable) Write(o *Object, key PropertyKey, v Value) error {
	if _, ok := t.Getters[key]; ok {
		return typeErrorf("Cannot set property %s of %s which has only a getter", key, t.Name)
	}
	o.RawSet(key, v)
	return nil
}
