package class

import (
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

func (r *Registry) defineBuiltins() {
	base := r.Define("Error")
	base.proto.RawSet(value.Key("name"), value.String("Error"))
	base.proto.RawSet(value.Key("message"), value.String(""))
	base.SetConstructor(errorConstructor)
	base.AddMethod("toString", func(this value.Value, _ []value.Value) (value.Value, error) {
		name, err := value.GetString(this, "name")
		if err != nil {
			return value.Undefined, err
		}
		msg, err := value.GetString(this, "message")
		if err != nil {
			return value.Undefined, err
		}
		if value.ToString(msg) == "" {
			return value.String(value.ToString(name)), nil
		}
		return value.String(value.ToString(name) + ": " + value.ToString(msg)), nil
	})
	r.builtins["Error"] = base
	for _, name := range []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "AggregateError"} {
		c := r.Define(name)
		c.proto.RawSet(value.Key("name"), value.String(name))
		_ = r.Extend(c, base)
		r.builtins[name] = c
	}
	agg := r.builtins["AggregateError"]
	agg.SetConstructor(func(this value.Value, args []value.Value) (value.Value, error) {
		var reasons []value.Value
		if len(args) > 0 {
			var err error
			if reasons, err = value.Collect(args[0]); err != nil {
				return value.Undefined, err
			}
		}
		if err := agg.SuperCall(this, args[min(1, len(args)):]...); err != nil {
			return value.Undefined, err
		}
		this.AsObject().RawSet(value.Key("errors"), value.NewArray(reasons).Value())
		return value.Undefined, nil
	})

	r.box("String", func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.String(""), nil
		}
		return value.String(value.ToString(args[0])), nil
	})
	r.box("Number", func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Int(0), nil
		}
		return value.Number(value.ToNumber(args[0])), nil
	})
	r.box("Boolean", func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.False, nil
		}
		return value.Bool(value.ToBoolean(args[0])), nil
	})
	r.box("Symbol", func([]value.Value) (value.Value, error) {
		return value.Undefined, errors.NewTypeError("Symbol is not a constructor")
	})
}

// box defines a primitive box class. Constructing one yields the coerced
// primitive instead of a wrapper table.
func (r *Registry) box(name string, coerce func([]value.Value) (value.Value, error)) {
	c := r.Define(name)
	c.coerce = coerce
	r.builtins[name] = c
}

// errorConstructor is shared by the whole Error family: the name comes from
// the prototype chain of the instance being built.
func errorConstructor(this value.Value, args []value.Value) (value.Value, error) {
	o := this.AsObject()
	msg := ""
	if len(args) > 0 && !args[0].IsUndefined() {
		msg = value.ToString(args[0])
		o.RawSet(value.Key("message"), value.String(msg))
	}
	if len(args) > 1 && args[1].IsObject() {
		if ok, _ := value.Has(args[1], value.Key("cause")); ok {
			cause, err := value.GetString(args[1], "cause")
			if err != nil {
				return value.Undefined, err
			}
			o.RawSet(value.Key("cause"), cause)
		}
	}
	name, err := value.GetString(this, "name")
	if err != nil {
		return value.Undefined, err
	}
	o.SetInternal(&value.ErrorData{Name: value.ToString(name), Message: msg})
	return value.Undefined, nil
}
