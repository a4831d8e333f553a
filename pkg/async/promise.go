package async

import (
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// State is the settlement state of a promise.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	}
	return "pending"
}

// reaction is a pair of continuations registered while a promise is
// pending. Exactly one of them runs, once, as a job.
type reaction struct {
	onFulfilled func(value.Value)
	onRejected  func(value.Value)
}

// Promise is a one-way state machine: Pending to Fulfilled or Rejected.
// Settling twice is a no-op.
type Promise struct {
	rt        *Runtime
	state     State
	result    value.Value
	reactions []reaction
	locked    bool // resolve or reject already called
	handled   bool
	obj       *value.Object
}

func (rt *Runtime) newPromise() *Promise {
	return &Promise{rt: rt, result: value.Undefined}
}

// State returns the current state.
func (p *Promise) State() State { return p.state }

// Result returns the fulfillment value or rejection reason (undefined while
// pending).
func (p *Promise) Result() value.Value { return p.result }

// Tag names promise tables when converted to strings.
func (p *Promise) Tag() string { return "Promise" }

// Describe renders the promise for inspection.
func (p *Promise) Describe() string {
	switch p.state {
	case Fulfilled:
		return "Promise { " + value.Inspect(p.result) + " }"
	case Rejected:
		return "Promise { <rejected> " + value.Inspect(p.result) + " }"
	}
	return "Promise { <pending> }"
}

// WithResolvers creates a pending promise together with its resolving
// functions.
func (rt *Runtime) WithResolvers() (p *Promise, resolve, reject func(value.Value)) {
	p = rt.newPromise()
	return p, p.resolve, p.reject
}

// NewPromise runs executor(resolve, reject) synchronously. An error thrown
// by the executor rejects the promise unless it was already resolved.
func (rt *Runtime) NewPromise(executor value.Value) (*Promise, error) {
	if !executor.IsCallable() {
		return nil, errors.NewTypeError("Promise resolver %s is not a function", value.Inspect(executor))
	}
	p := rt.newPromise()
	resolve, reject := resolvingFunctions(p.resolve, p.reject)
	if _, err := value.Call(executor, value.Undefined, resolve, reject); err != nil {
		p.reject(rt.errorValue(err))
	}
	return p, nil
}

// resolvingFunctions wraps a resolve/reject pair as source-level callables
// sharing one "already resolved" flag.
func resolvingFunctions(onResolve, onReject func(value.Value)) (resolve, reject value.Value) {
	used := false
	resolve = value.Func("resolve", func(_ value.Value, args []value.Value) (value.Value, error) {
		if !used {
			used = true
			onResolve(first(args))
		}
		return value.Undefined, nil
	})
	reject = value.Func("reject", func(_ value.Value, args []value.Value) (value.Value, error) {
		if !used {
			used = true
			onReject(first(args))
		}
		return value.Undefined, nil
	})
	return resolve, reject
}

func first(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Undefined
	}
	return args[0]
}

// Resolve returns v itself if it is a promise of this runtime, else a new
// promise resolved with v.
func (rt *Runtime) Resolve(v value.Value) *Promise {
	if q, ok := FromValue(v); ok && q.rt == rt {
		return q
	}
	p := rt.newPromise()
	p.resolve(v)
	return p
}

// Reject returns a new promise rejected with reason.
func (rt *Runtime) Reject(reason value.Value) *Promise {
	p := rt.newPromise()
	p.reject(reason)
	return p
}

// resolve and reject are the first-wins entry points: once either ran, the
// promise is locked even if it is still pending on an adopted value.
func (p *Promise) resolve(v value.Value) {
	if p.locked {
		return
	}
	p.locked = true
	p.adopt(v)
}

func (p *Promise) reject(reason value.Value) {
	if p.locked {
		return
	}
	p.locked = true
	p.rejectNow(reason)
}

// adopt is the promise resolution procedure: promises of this runtime and
// thenables are followed from a later job, anything else fulfills.
func (p *Promise) adopt(v value.Value) {
	if o := v.AsObject(); o != nil && o == p.obj {
		p.rejectNow(p.rt.errorValue(errors.NewTypeError("Chaining cycle detected for promise #<Promise>")))
		return
	}
	if q, ok := FromValue(v); ok && q.rt == p.rt {
		p.rt.sched.Enqueue(func() { q.react(p.fulfill, p.rejectNow) })
		return
	}
	if !v.IsObject() {
		p.fulfill(v)
		return
	}
	then, err := value.Get(v, value.Key("then"))
	if err != nil {
		p.rejectNow(p.rt.errorValue(err))
		return
	}
	if !then.IsCallable() {
		p.fulfill(v)
		return
	}
	p.rt.sched.Enqueue(func() {
		resolve, reject := resolvingFunctions(p.adopt, p.rejectNow)
		if _, err := value.Call(then, v, resolve, reject); err != nil {
			_, _ = value.Call(reject, value.Undefined, p.rt.errorValue(err))
		}
	})
}

func (p *Promise) fulfill(v value.Value) {
	if p.state != Pending {
		return
	}
	p.state, p.result = Fulfilled, v
	p.trigger()
}

func (p *Promise) rejectNow(reason value.Value) {
	if p.state != Pending {
		return
	}
	p.state, p.result = Rejected, reason
	if !p.handled {
		p.rt.trackRejection(p)
	}
	p.trigger()
}

// trigger queues every pending reaction, in registration order.
func (p *Promise) trigger() {
	reactions := p.reactions
	p.reactions = nil
	for _, r := range reactions {
		p.schedule(r)
	}
}

func (p *Promise) schedule(r reaction) {
	state, result := p.state, p.result
	p.rt.sched.Enqueue(func() {
		if state == Fulfilled {
			r.onFulfilled(result)
		} else {
			r.onRejected(result)
		}
	})
}

// react registers Go continuations. On a settled promise the matching one
// is queued right away; it never runs inside react.
func (p *Promise) react(onFulfilled, onRejected func(value.Value)) {
	p.markHandled()
	r := reaction{onFulfilled: onFulfilled, onRejected: onRejected}
	if p.state == Pending {
		p.reactions = append(p.reactions, r)
		return
	}
	p.schedule(r)
}

func (p *Promise) markHandled() { p.handled = true }

// ThenFunc chains Go handlers. A nil handler passes the value or reason
// through to the returned promise.
func (p *Promise) ThenFunc(onFulfilled, onRejected func(value.Value) (value.Value, error)) *Promise {
	next := p.rt.newPromise()
	run := func(h func(value.Value) (value.Value, error), passThrough func(value.Value)) func(value.Value) {
		return func(v value.Value) {
			if h == nil {
				passThrough(v)
				return
			}
			r, err := h(v)
			if err != nil {
				next.reject(p.rt.errorValue(err))
				return
			}
			next.resolve(r)
		}
	}
	p.react(run(onFulfilled, next.resolve), run(onRejected, next.reject))
	return next
}

// callable adapts a source-level handler; non-callables pass through.
func callable(h value.Value) func(value.Value) (value.Value, error) {
	if !h.IsCallable() {
		return nil
	}
	return func(v value.Value) (value.Value, error) {
		return value.Call(h, value.Undefined, v)
	}
}

// Then is promise.then(onFulfilled, onRejected).
func (p *Promise) Then(onFulfilled, onRejected value.Value) *Promise {
	return p.ThenFunc(callable(onFulfilled), callable(onRejected))
}

// Catch is promise.catch(onRejected).
func (p *Promise) Catch(onRejected value.Value) *Promise {
	return p.ThenFunc(nil, callable(onRejected))
}

// Finally is promise.finally(onFinally): the callback runs on either outcome
// and the original outcome passes through unless the callback fails.
func (p *Promise) Finally(onFinally value.Value) *Promise {
	if !onFinally.IsCallable() {
		return p.ThenFunc(nil, nil)
	}
	after := func(outcome func() (value.Value, error)) func(value.Value) (value.Value, error) {
		return func(value.Value) (value.Value, error) {
			r, err := value.Call(onFinally, value.Undefined)
			if err != nil {
				return value.Undefined, err
			}
			return p.rt.Resolve(r).ThenFunc(func(value.Value) (value.Value, error) {
				return outcome()
			}, nil).Value(), nil
		}
	}
	return p.ThenFunc(
		after(func() (value.Value, error) { return p.result, nil }),
		after(func() (value.Value, error) { return value.Undefined, value.ToError(p.result) }),
	)
}

var promiseMethods *value.MethodTable

func init() {
	promiseMethods = &value.MethodTable{
		Name: "Promise",
		Methods: map[value.PropertyKey]value.Method{
			value.Key("then"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return o.Internal().(*Promise).Then(arg(args, 0), arg(args, 1)).Value(), nil
			},
			value.Key("catch"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return o.Internal().(*Promise).Catch(arg(args, 0)).Value(), nil
			},
			value.Key("finally"): func(o *value.Object, args []value.Value) (value.Value, error) {
				return o.Internal().(*Promise).Finally(arg(args, 0)).Value(), nil
			},
		},
	}
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}

// Value returns the promise as a source value. The same table is returned
// every time.
func (p *Promise) Value() value.Value {
	if p.obj == nil {
		p.obj = value.NewObjectWithHooks(promiseMethods)
		p.obj.SetInternal(p)
	}
	return p.obj.Value()
}

// FromValue recovers the promise behind a promise table.
func FromValue(v value.Value) (*Promise, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	p, ok := o.Internal().(*Promise)
	return p, ok
}
