package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind represents the type of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota // Default/uninitialized/implicit return
	KindNull                  // Explicit null value
	KindBoolean
	KindNumber
	KindString
	KindSymbol
	KindObject // Tables: plain objects, arrays, functions, and Go-backed objects
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a source-level value. It is a small comparable tagged union:
// primitives live inline, tables are referenced through *Object.
type Value struct {
	kind Kind
	num  float64 // numbers, and booleans as 0/1
	str  string
	sym  *Symbol
	obj  *Object
}

var (
	Undefined = Value{kind: KindUndefined}
	Null      = Value{kind: KindNull}
	True      = Value{kind: KindBoolean, num: 1}
	False     = Value{kind: KindBoolean}
	NaN       = Value{kind: KindNumber, num: math.NaN()}
)

// Constructors

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func Int(i int) Value {
	return Value{kind: KindNumber, num: float64(i)}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Type checkers

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsBool() bool      { return v.kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsSymbol() bool    { return v.kind == KindSymbol }
func (v Value) IsObject() bool    { return v.kind == KindObject }
func (v Value) IsArray() bool     { return v.kind == KindObject && v.obj.isArray }
func (v Value) IsCallable() bool  { return v.kind == KindObject && v.obj.fn != nil }
func (v Value) IsNaN() bool       { return v.kind == KindNumber && v.num != v.num }
func (v Value) IsPrimitive() bool { return v.kind != KindObject }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsBool() bool      { return v.kind == KindBoolean && v.num != 0 }
func (v Value) AsString() string  { return v.str }
func (v Value) AsSymbol() *Symbol { return v.sym }

// AsObject returns the referenced table, or nil for primitives.
func (v Value) AsObject() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// TypeOf implements the typeof operator.
func TypeOf(v Value) string {
	switch v.kind {
	case KindObject:
		if v.obj.fn != nil {
			return "function"
		}
		return "object"
	case KindNull:
		return "object"
	default:
		return v.kind.String()
	}
}

// String renders the value for diagnostics and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindSymbol:
		return v.sym.String()
	case KindObject:
		return inspectObject(v.obj, 0)
	default:
		return ToString(v)
	}
}

// Inspect renders a value the way an error message quotes it: strings are
// quoted, everything else matches String().
func Inspect(v Value) string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	return v.String()
}

func inspectObject(o *Object, depth int) string {
	if o.fn != nil {
		if o.name == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + o.name + "]"
	}
	if ed, ok := o.internal.(*ErrorData); ok {
		return ed.Name + ": " + ed.Message
	}
	if d, ok := o.internal.(interface{ Describe() string }); ok {
		return d.Describe()
	}
	if depth > 2 {
		if o.isArray {
			return "[Array]"
		}
		return "[Object]"
	}
	var sb strings.Builder
	if o.isArray {
		sb.WriteByte('[')
		for i, e := range o.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(inspectNested(e, depth))
		}
		sb.WriteByte(']')
		return sb.String()
	}
	sb.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte(' ')
		sb.WriteString(k.String())
		sb.WriteString(": ")
		sb.WriteString(inspectNested(o.fields[k], depth))
	}
	if len(o.keys) > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteByte('}')
	return sb.String()
}

func inspectNested(v Value, depth int) string {
	if v.kind == KindObject {
		return inspectObject(v.obj, depth+1)
	}
	return Inspect(v)
}
