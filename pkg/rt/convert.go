package rt

import (
	"cmp"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/nooga/tsrt/pkg/descriptor"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// maxConvertDepth cuts off cyclic Go or runtime structures.
const maxConvertDepth = 64

var (
	errorType = reflect.TypeFor[error]()
	valueType = reflect.TypeFor[value.Value]()
)

// FromGo converts a Go value into a runtime value. Numbers, strings and
// bools map to primitives, nil to null, slices and arrays to array tables,
// maps and structs to plain tables (struct fields named by their json tag),
// and functions to callables through Func. A value.Value is returned as is.
func FromGo(x any) value.Value {
	if x == nil {
		return value.Null
	}
	if v, ok := x.(value.Value); ok {
		return v
	}
	return fromReflect(reflect.ValueOf(x), 0)
}

func fromReflect(rv reflect.Value, depth int) value.Value {
	if !rv.IsValid() {
		return value.Null
	}
	if rv.Type() == valueType {
		return rv.Interface().(value.Value)
	}
	if depth > maxConvertDepth {
		return value.Undefined
	}
	switch rv.Kind() {
	case reflect.String:
		return value.String(rv.String())
	case reflect.Bool:
		return value.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return value.Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return value.Number(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return value.Null
		}
		return fromReflect(rv.Elem(), depth+1)
	case reflect.Slice:
		if rv.IsNil() {
			return value.Null
		}
		fallthrough
	case reflect.Array:
		elems := make([]value.Value, rv.Len())
		for i := range elems {
			elems[i] = fromReflect(rv.Index(i), depth+1)
		}
		return value.NewArray(elems).Value()
	case reflect.Map:
		if rv.IsNil() {
			return value.Null
		}
		type kv struct {
			key string
			val reflect.Value
		}
		entries := make([]kv, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, kv{value.ToString(fromReflect(iter.Key(), depth+1)), iter.Value()})
		}
		slices.SortFunc(entries, func(a, b kv) int { return cmp.Compare(a.key, b.key) })
		o := value.NewObject()
		for _, e := range entries {
			o.RawSet(value.Key(e.key), fromReflect(e.val, depth+1))
		}
		return o.Value()
	case reflect.Struct:
		o := value.NewObject()
		t := rv.Type()
		for i := range t.NumField() {
			if name, ok := fieldName(t.Field(i)); ok {
				o.RawSet(value.Key(name), fromReflect(rv.Field(i), depth+1))
			}
		}
		return o.Value()
	case reflect.Func:
		if rv.IsNil() {
			return value.Null
		}
		return wrapFunc("", rv)
	}
	return value.Undefined
}

// fieldName returns the property name of an exported struct field: its json
// tag name when it has one. Fields tagged "-" are skipped.
func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return f.Name, true
}

// ToGo converts a runtime value into plain Go data: nil, bool, float64,
// string, []any for arrays and map[string]any for tables (own enumerable
// keys, accessors read). Functions and Go-backed tables are returned as
// value.Value.
func ToGo(v value.Value) any { return toGo(v, 0) }

func toGo(v value.Value, depth int) any {
	switch v.Kind() {
	case value.KindUndefined, value.KindNull:
		return nil
	case value.KindBoolean:
		return v.AsBool()
	case value.KindNumber:
		return v.AsNumber()
	case value.KindString:
		return v.AsString()
	case value.KindSymbol:
		return v
	}
	o := v.AsObject()
	if o.IsCallable() || o.Internal() != nil || depth > maxConvertDepth {
		return v
	}
	if o.IsArray() {
		out := make([]any, o.Len())
		for i, e := range o.Elements() {
			out[i] = toGo(e, depth+1)
		}
		return out
	}
	out := make(map[string]any)
	for _, k := range descriptor.Keys(o) {
		fv, err := value.Get(v, k)
		if err != nil {
			continue
		}
		out[k.Name()] = toGo(fv, depth+1)
	}
	return out
}

// Func wraps a Go function as a callable. Arguments are converted to the
// parameter types (missing ones become zero values), a trailing error
// result is raised, and the first other result is converted with FromGo.
func Func(name string, fn any) (value.Value, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return value.Undefined, errors.NewTypeError("%T is not a function", fn)
	}
	return wrapFunc(name, rv), nil
}

func wrapFunc(name string, rv reflect.Value) value.Value {
	t := rv.Type()
	return value.Func(name, func(_ value.Value, args []value.Value) (value.Value, error) {
		in := make([]reflect.Value, 0, t.NumIn())
		for i := range t.NumIn() {
			if t.IsVariadic() && i == t.NumIn()-1 {
				for j := i; j < len(args); j++ {
					a, err := toReflect(args[j], t.In(i).Elem(), 0)
					if err != nil {
						return value.Undefined, err
					}
					in = append(in, a)
				}
				break
			}
			arg := value.Undefined
			if i < len(args) {
				arg = args[i]
			}
			a, err := toReflect(arg, t.In(i), 0)
			if err != nil {
				return value.Undefined, err
			}
			in = append(in, a)
		}
		out := rv.Call(in)
		if n := len(out); n > 0 && t.Out(n-1) == errorType {
			if e := out[n-1]; !e.IsNil() {
				return value.Undefined, e.Interface().(error)
			}
			out = out[:n-1]
		}
		if len(out) == 0 {
			return value.Undefined, nil
		}
		return fromReflect(out[0], 0), nil
	})
}

// ToGoType converts v into a Go value of type t.
func ToGoType(v value.Value, t reflect.Type) (reflect.Value, error) {
	return toReflect(v, t, 0)
}

func toReflect(v value.Value, t reflect.Type, depth int) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}
	if depth > maxConvertDepth {
		return reflect.Value{}, errors.NewRangeError("Maximum call stack size exceeded")
	}
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(value.ToString(v)).Convert(t), nil
	case reflect.Bool:
		return reflect.ValueOf(value.ToBoolean(v)).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(value.ToNumber(v)).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := value.ToIntegerOrInfinity(v)
		if n >= math.MaxInt64 || n < math.MinInt64 || reflect.Zero(t).OverflowInt(int64(n)) {
			return reflect.Value{}, errors.NewRangeError("%s is out of range for %s", value.Inspect(v), t)
		}
		return reflect.ValueOf(int64(n)).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := value.ToIntegerOrInfinity(v)
		if n < 0 || n >= math.MaxUint64 || reflect.Zero(t).OverflowUint(uint64(n)) {
			return reflect.Value{}, errors.NewRangeError("%s is out of range for %s", value.Inspect(v), t)
		}
		return reflect.ValueOf(uint64(n)).Convert(t), nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			g := toGo(v, depth)
			if g == nil {
				return reflect.Zero(t), nil
			}
			return reflect.ValueOf(g), nil
		}
	case reflect.Pointer:
		if v.IsNullish() {
			return reflect.Zero(t), nil
		}
		e, err := toReflect(v, t.Elem(), depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(e)
		return p, nil
	case reflect.Slice:
		if v.IsNullish() {
			return reflect.Zero(t), nil
		}
		elems, err := value.Collect(v)
		if err != nil {
			return reflect.Value{}, err
		}
		s := reflect.MakeSlice(t, len(elems), len(elems))
		for i, e := range elems {
			ev, err := toReflect(e, t.Elem(), depth+1)
			if err != nil {
				return reflect.Value{}, err
			}
			s.Index(i).Set(ev)
		}
		return s, nil
	case reflect.Map:
		if v.IsNullish() {
			return reflect.Zero(t), nil
		}
		o := v.AsObject()
		if o == nil || t.Key().Kind() != reflect.String {
			break
		}
		m := reflect.MakeMap(t)
		for _, k := range descriptor.Keys(o) {
			fv, err := value.Get(v, k)
			if err != nil {
				return reflect.Value{}, err
			}
			ev, err := toReflect(fv, t.Elem(), depth+1)
			if err != nil {
				return reflect.Value{}, err
			}
			m.SetMapIndex(reflect.ValueOf(k.Name()).Convert(t.Key()), ev)
		}
		return m, nil
	case reflect.Struct:
		if !v.IsObject() {
			break
		}
		s := reflect.New(t).Elem()
		for i := range t.NumField() {
			name, ok := fieldName(t.Field(i))
			if !ok {
				continue
			}
			fv, err := value.Get(v, value.Key(name))
			if err != nil {
				return reflect.Value{}, err
			}
			if fv.IsUndefined() {
				continue
			}
			ev, err := toReflect(fv, t.Field(i).Type, depth+1)
			if err != nil {
				return reflect.Value{}, err
			}
			s.Field(i).Set(ev)
		}
		return s, nil
	case reflect.Func:
		if v.IsNullish() {
			return reflect.Zero(t), nil
		}
		if v.IsCallable() {
			return goFunc(v, t), nil
		}
	}
	return reflect.Value{}, errors.NewTypeError("cannot convert %s to %s", value.Inspect(v), t)
}

// goFunc builds a Go function of type t that calls fn. When t has a
// trailing error result, failures of the call or of the result conversion
// land there; otherwise they panic.
func goFunc(fn value.Value, t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		args := make([]value.Value, 0, len(in))
		for i, a := range in {
			if t.IsVariadic() && i == len(in)-1 {
				for j := range a.Len() {
					args = append(args, fromReflect(a.Index(j), 0))
				}
				break
			}
			args = append(args, fromReflect(a, 0))
		}
		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		hasErr := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType
		fail := func(err error) []reflect.Value {
			if !hasErr {
				panic(err)
			}
			out[len(out)-1] = reflect.ValueOf(&err).Elem()
			return out
		}
		res, err := value.Call(fn, value.Undefined, args...)
		if err != nil {
			return fail(err)
		}
		if t.NumOut() > 0 && t.Out(0) != errorType {
			rv, err := toReflect(res, t.Out(0), 0)
			if err != nil {
				return fail(err)
			}
			out[0] = rv
		}
		return out
	})
}
