package async

import (
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// members resolves every element of iterable to a promise of this runtime.
// Reactions are attached in input order, so members that are already
// settled are seen in input order before any pending one settles.
func (rt *Runtime) members(iterable value.Value) ([]*Promise, error) {
	items, err := value.Collect(iterable)
	if err != nil {
		return nil, err
	}
	out := make([]*Promise, len(items))
	for i, it := range items {
		out[i] = rt.Resolve(it)
	}
	return out, nil
}

// All fulfills with the values of every member in input order, or rejects
// with the first rejection.
func (rt *Runtime) All(iterable value.Value) *Promise {
	ps, err := rt.members(iterable)
	if err != nil {
		return rt.Reject(rt.errorValue(err))
	}
	result, resolve, reject := rt.WithResolvers()
	values := make([]value.Value, len(ps))
	remaining := len(ps)
	if remaining == 0 {
		resolve(value.NewArray(values).Value())
	}
	for i, m := range ps {
		m.react(func(v value.Value) {
			values[i] = v
			if remaining--; remaining == 0 {
				resolve(value.NewArray(values).Value())
			}
		}, reject)
	}
	return result
}

func settledRecord(status string, key string, v value.Value) value.Value {
	o := value.NewObject()
	o.RawSet(value.Key("status"), value.String(status))
	o.RawSet(value.Key(key), v)
	return o.Value()
}

// AllSettled fulfills once every member settled, with {status, value} or
// {status, reason} records in input order. It never rejects.
func (rt *Runtime) AllSettled(iterable value.Value) *Promise {
	ps, err := rt.members(iterable)
	if err != nil {
		return rt.Reject(rt.errorValue(err))
	}
	result, resolve, _ := rt.WithResolvers()
	records := make([]value.Value, len(ps))
	remaining := len(ps)
	if remaining == 0 {
		resolve(value.NewArray(records).Value())
	}
	done := func(i int, rec value.Value) {
		records[i] = rec
		if remaining--; remaining == 0 {
			resolve(value.NewArray(records).Value())
		}
	}
	for i, m := range ps {
		m.react(func(v value.Value) {
			done(i, settledRecord("fulfilled", "value", v))
		}, func(r value.Value) {
			done(i, settledRecord("rejected", "reason", r))
		})
	}
	return result
}

// Any fulfills with the first fulfillment. If every member rejects it
// rejects with an AggregateError carrying all reasons in input order.
func (rt *Runtime) Any(iterable value.Value) *Promise {
	ps, err := rt.members(iterable)
	if err != nil {
		return rt.Reject(rt.errorValue(err))
	}
	result, resolve, reject := rt.WithResolvers()
	reasons := make([]any, len(ps))
	remaining := len(ps)
	fail := func() {
		reject(rt.errorValue(&errors.AggregateError{Msg: "All promises were rejected", Reasons: reasons}))
	}
	if remaining == 0 {
		fail()
	}
	for i, m := range ps {
		m.react(resolve, func(r value.Value) {
			reasons[i] = r
			if remaining--; remaining == 0 {
				fail()
			}
		})
	}
	return result
}

// Race settles like the first member to settle. An empty input never
// settles.
func (rt *Runtime) Race(iterable value.Value) *Promise {
	ps, err := rt.members(iterable)
	if err != nil {
		return rt.Reject(rt.errorValue(err))
	}
	result, resolve, reject := rt.WithResolvers()
	for _, m := range ps {
		m.react(resolve, reject)
	}
	return result
}
