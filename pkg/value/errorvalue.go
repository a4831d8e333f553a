package value

import (
	goerrors "errors"

	"github.com/nooga/tsrt/pkg/errors"
)

// ErrorData is the Go-side payload of error tables.
type ErrorData struct {
	Name    string
	Message string
	Cause   error // the Go error the table was built from, if any
}

// NewError builds a plain error table carrying name and message fields.
func NewError(name, message string) *Object {
	o := NewObject()
	o.RawSet(Key("name"), String(name))
	o.RawSet(Key("message"), String(message))
	o.internal = &ErrorData{Name: name, Message: message}
	return o
}

// FromError converts a Go error raised by the runtime into the value a
// source-level catch clause receives. Thrown values come back unchanged;
// runtime errors become error tables named after their kind.
func FromError(err error) Value {
	if err == nil {
		return Undefined
	}
	var exc *errors.Exception
	if goerrors.As(err, &exc) {
		if v, ok := exc.Value.(Value); ok {
			return v
		}
	}
	var agg *errors.AggregateError
	if goerrors.As(err, &agg) {
		o := NewError("AggregateError", agg.Msg)
		o.RawSet(Key("errors"), ArrayOf(ReasonValues(agg.Reasons)...))
		o.internal.(*ErrorData).Cause = err
		return o.Value()
	}
	var re errors.RuntimeError
	if goerrors.As(err, &re) {
		o := NewError(re.Kind(), re.Message())
		o.internal.(*ErrorData).Cause = err
		return o.Value()
	}
	o := NewError("Error", err.Error())
	o.internal.(*ErrorData).Cause = err
	return o.Value()
}

// ReasonValues converts AggregateError reasons back to values.
func ReasonValues(reasons []any) []Value {
	out := make([]Value, len(reasons))
	for i, r := range reasons {
		if v, ok := r.(Value); ok {
			out[i] = v
		} else {
			out[i] = Undefined
		}
	}
	return out
}

// ToError raises v as a Go error. FromError(ToError(v)) is v itself, so a
// rethrown value keeps its identity.
func ToError(v Value) error {
	return errors.Throw(v)
}
