package class

import (
	"testing"

	"github.com/nooga/tsrt/pkg/config"
	"github.com/nooga/tsrt/pkg/descriptor"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

func newRegistry() *Registry {
	return NewRegistry(config.Default(), nil)
}

func TestInstanceOf(t *testing.T) {
	r := newRegistry()
	base := r.Define("B")
	derived := r.Define("D")
	if err := r.Extend(derived, base); err != nil {
		t.Fatal(err)
	}
	unrelated := r.Define("U")

	i, err := New(derived)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		class *Class
		want  bool
	}{
		{derived, true},
		{base, true},
		{unrelated, false},
	}
	for _, tt := range tests {
		if got := InstanceOf(i, tt.class); got != tt.want {
			t.Errorf("InstanceOf(i, %s) = %v, want %v", tt.class.Name(), got, tt.want)
		}
	}
	if InstanceOf(value.Int(1), base) {
		t.Errorf("a number is not an instance of anything")
	}

	// A second class with the same shape in another registry never matches.
	other := newRegistry().Define("B")
	if InstanceOf(i, other) {
		t.Errorf("InstanceOf matched a class from another realm")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	r := newRegistry()
	c := r.Define("Point")
	v, err := New(c)
	if err != nil {
		t.Fatal(err)
	}
	if err := value.Set(v, value.Key("x"), value.Int(3)); err != nil {
		t.Fatal(err)
	}
	got, err := value.Get(v, value.Key("x"))
	if err != nil || !value.StrictEquals(got, value.Int(3)) {
		t.Errorf("x = %s, %v; want 3", value.Inspect(got), err)
	}
	if _, ok := v.AsObject().RawGet(value.Key("x")); !ok {
		t.Errorf("plain field write did not land on the instance")
	}
}

func TestInheritedSetterNeverTouchesRawField(t *testing.T) {
	r := newRegistry()
	base := r.Define("Base")
	var seen value.Value
	base.AddSetter("x", func(_ value.Value, args []value.Value) (value.Value, error) {
		seen = args[0]
		return value.Undefined, nil
	})
	base.AddGetter("x", func(value.Value, []value.Value) (value.Value, error) {
		return value.Int(42), nil
	})
	derived := r.Define("Derived")
	_ = r.Extend(derived, base)

	v, _ := New(derived)
	if err := value.Set(v, value.Key("x"), value.Int(7)); err != nil {
		t.Fatal(err)
	}
	if v.AsObject().RawHas(value.Key("x")) {
		t.Errorf("setter in the chain, yet the raw field was written")
	}
	if !value.StrictEquals(seen, value.Int(7)) {
		t.Errorf("setter saw %s, want 7", value.Inspect(seen))
	}
	got, _ := value.Get(v, value.Key("x"))
	if !value.StrictEquals(got, value.Int(42)) {
		t.Errorf("getter result = %s, want 42", value.Inspect(got))
	}
	if base.Prototype().RawHas(value.Key("x")) {
		t.Errorf("write landed on an ancestor")
	}
}

func TestMethodResolutionAndSuper(t *testing.T) {
	r := newRegistry()
	animal := r.Define("Animal")
	animal.AddMethod("speak", func(value.Value, []value.Value) (value.Value, error) {
		return value.String("..."), nil
	})
	animal.AddMethod("kind", func(value.Value, []value.Value) (value.Value, error) {
		return value.String("animal"), nil
	})
	dog := r.Define("Dog")
	_ = r.Extend(dog, animal)
	dog.AddMethod("speak", func(this value.Value, _ []value.Value) (value.Value, error) {
		up, err := dog.SuperGet(this, value.Key("speak"))
		if err != nil {
			return value.Undefined, err
		}
		s, err := value.Call(up, this)
		return value.String("woof" + s.AsString()), err
	})

	d, _ := New(dog)
	tests := []struct{ method, want string }{
		{"speak", "woof..."},
		{"kind", "animal"},
	}
	for _, tt := range tests {
		got, err := value.CallMethod(d, tt.method)
		if err != nil {
			t.Fatalf("%s: %v", tt.method, err)
		}
		if got.AsString() != tt.want {
			t.Errorf("%s() = %q, want %q", tt.method, got.AsString(), tt.want)
		}
	}
}

func TestConstructionOrder(t *testing.T) {
	r := newRegistry()
	var log []string
	base := r.Define("Base")
	base.AddField(value.Key("a"), func(value.Value) (value.Value, error) {
		log = append(log, "field a")
		return value.Int(1), nil
	})
	base.SetConstructor(func(this value.Value, args []value.Value) (value.Value, error) {
		log = append(log, "base ctor")
		return value.Undefined, value.Set(this, value.Key("n"), args[0])
	})
	derived := r.Define("Derived")
	_ = r.Extend(derived, base)
	derived.AddField(value.Key("b"), func(this value.Value) (value.Value, error) {
		log = append(log, "field b")
		n, err := value.Get(this, value.Key("n"))
		return value.Number(value.ToNumber(n) * 2), err
	})
	derived.SetConstructor(func(this value.Value, args []value.Value) (value.Value, error) {
		log = append(log, "derived ctor")
		return value.Undefined, derived.SuperCall(this, args...)
	})

	v, err := New(derived, value.Int(9))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"derived ctor", "field a", "base ctor", "field b"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	b, found := v.AsObject().RawGet(value.Key("b"))
	if !found || !value.StrictEquals(b, value.Int(18)) {
		t.Errorf("b = %s (%v), want 18 computed from the base constructor's n", value.Inspect(b), found)
	}
}

func TestDerivedFieldsOverrideBaseConstructor(t *testing.T) {
	r := newRegistry()
	base := r.Define("B").SetConstructor(func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.Undefined, value.Set(this, value.Key("x"), value.Int(1))
	})
	// no constructor: behaves as super(...args)
	derived := r.Define("D").AddField(value.Key("x"), func(value.Value) (value.Value, error) {
		return value.Int(2), nil
	})
	_ = r.Extend(derived, base)

	v, err := New(derived)
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := value.Get(v, value.Key("x")); !value.StrictEquals(x, value.Int(2)) {
		t.Errorf("new D().x = %s, want 2", value.Inspect(x))
	}
}

func TestSuperCallDiscipline(t *testing.T) {
	r := newRegistry()
	base := r.Define("Base")
	skips := r.Define("Skips").SetConstructor(func(value.Value, []value.Value) (value.Value, error) {
		return value.Undefined, nil
	})
	_ = r.Extend(skips, base)
	if _, err := New(skips); errors.KindOf(err) != "ReferenceError" {
		t.Errorf("constructor without super: err = %v, want ReferenceError", err)
	}

	twice := r.Define("Twice")
	twice.SetConstructor(func(this value.Value, _ []value.Value) (value.Value, error) {
		if err := twice.SuperCall(this); err != nil {
			return value.Undefined, err
		}
		return value.Undefined, twice.SuperCall(this)
	})
	_ = r.Extend(twice, base)
	if _, err := New(twice); errors.KindOf(err) != "ReferenceError" {
		t.Errorf("super called twice: err = %v, want ReferenceError", err)
	}

	replaced := value.NewObject().Value()
	returns := r.Define("Returns").SetConstructor(func(value.Value, []value.Value) (value.Value, error) {
		return replaced, nil
	})
	_ = r.Extend(returns, base)
	if v, err := New(returns); err != nil || v != replaced {
		t.Errorf("constructor returning a table: got %s, %v", value.Inspect(v), err)
	}
}

func TestBoxConstructors(t *testing.T) {
	r := newRegistry()
	tests := []struct {
		class string
		arg   value.Value
		want  value.Value
	}{
		{"String", value.Int(12), value.String("12")},
		{"Number", value.String(" 0x10 "), value.Int(16)},
		{"Boolean", value.String(""), value.False},
	}
	for _, tt := range tests {
		got, err := New(r.Builtin(tt.class), tt.arg)
		if err != nil {
			t.Fatalf("new %s: %v", tt.class, err)
		}
		if !value.SameValue(got, tt.want) {
			t.Errorf("new %s(%s) = %s, want %s", tt.class, value.Inspect(tt.arg), value.Inspect(got), value.Inspect(tt.want))
		}
	}
	if _, err := New(r.Builtin("Symbol")); errors.KindOf(err) != "TypeError" {
		t.Errorf("new Symbol() = %v, want TypeError", err)
	}
}

func TestCyclicChainIsBounded(t *testing.T) {
	opts := config.Default()
	opts.MaxChainDepth = 8
	r := NewRegistry(opts, nil)
	a, b := r.Define("A"), r.Define("B")
	_ = r.Extend(a, b)
	_ = r.Extend(b, a)
	if _, err := New(a); errors.KindOf(err) != "RangeError" {
		t.Errorf("New on a cyclic chain = %v, want RangeError", err)
	}
	if InstanceOf(value.NewObjectWithHooks(a).Value(), r.Define("C")) {
		t.Errorf("InstanceOf on a cyclic chain should report false")
	}
}

func TestDescriptorsComposeWithChain(t *testing.T) {
	r := newRegistry()
	c := r.Define("C")
	c.AddMethod("m", func(value.Value, []value.Value) (value.Value, error) {
		return value.String("method"), nil
	})
	v, _ := New(c)
	o := v.AsObject()
	if err := descriptor.Define(o, value.Key("own"), descriptor.Descriptor{Value: value.Int(1), HasValue: true, Writable: new(bool), Configurable: ptr(true)}); err != nil {
		t.Fatal(err)
	}
	got, err := value.CallMethod(v, "m")
	if err != nil || got.AsString() != "method" {
		t.Errorf("method lookup through a descriptor layer = %s, %v", value.Inspect(got), err)
	}
	if !InstanceOf(v, c) {
		t.Errorf("descriptor layer hid the class dispatch")
	}
	if ok, err := descriptor.Delete(o, value.Key("own")); !ok || err != nil {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	c.Prototype().RawSet(value.Key("own"), value.String("inherited"))
	got, _ = value.Get(v, value.Key("own"))
	if got.AsString() != "inherited" {
		t.Errorf("after delete, own = %s, want the inherited value", value.Inspect(got))
	}
}

func ptr[T any](v T) *T { return &v }

func TestErrorValue(t *testing.T) {
	r := newRegistry()
	v := r.ErrorValue(errors.NewTypeError("bad %s", "thing"))
	if !InstanceOf(v, r.Builtin("TypeError")) || !InstanceOf(v, r.Builtin("Error")) {
		t.Errorf("TypeError value is not an instance of TypeError and Error")
	}
	if got := value.ToString(v); got != "TypeError: bad thing" {
		t.Errorf("ToString = %q", got)
	}

	agg := r.ErrorValue(&errors.AggregateError{Msg: "All promises were rejected", Reasons: []any{value.String("a"), value.String("b")}})
	errs, _ := value.GetString(agg, "errors")
	if n, _ := value.ArrayLength(mustGet(t, errs, "length")); n != 2 {
		t.Errorf("aggregate errors = %s", value.Inspect(errs))
	}
	msg, _ := value.GetString(agg, "message")
	if msg.AsString() != "All promises were rejected" {
		t.Errorf("aggregate message = %s", value.Inspect(msg))
	}

	thrown := value.Int(5)
	if got := r.ErrorValue(value.ToError(thrown)); !value.StrictEquals(got, thrown) {
		t.Errorf("thrown value changed identity: %s", value.Inspect(got))
	}
}

func mustGet(t *testing.T, v value.Value, name string) value.Value {
	t.Helper()
	got, err := value.GetString(v, name)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestSymbolRegistry(t *testing.T) {
	r := newRegistry()
	s := r.SymbolFor("app.key")
	if r.SymbolFor("app.key") != s {
		t.Errorf("SymbolFor is not stable")
	}
	if k, ok := r.KeyFor(s); !ok || k != "app.key" {
		t.Errorf("KeyFor = %q, %v", k, ok)
	}
	if _, ok := r.KeyFor(value.NewSymbol("app.key")); ok {
		t.Errorf("KeyFor found an unregistered symbol")
	}
}

func TestClassValueRequiresNew(t *testing.T) {
	r := newRegistry()
	c := r.Define("K")
	c.AddStatic("answer", value.Int(42))
	sub := r.Define("Sub")
	_ = r.Extend(sub, c)
	if _, err := value.Call(sub.Value(), value.Undefined); errors.KindOf(err) != "TypeError" {
		t.Errorf("calling a class = %v, want TypeError", err)
	}
	got, _ := value.GetString(sub.Value(), "answer")
	if !value.StrictEquals(got, value.Int(42)) {
		t.Errorf("inherited static = %s", value.Inspect(got))
	}
	if back, ok := FromValue(sub.Value()); !ok || back != sub {
		t.Errorf("FromValue did not recover the class")
	}
}
