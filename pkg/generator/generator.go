// Package generator turns a fiber into a lazy, single-pass sequence with
// {value, done} results.
package generator

import (
	"context"
	"runtime"

	"github.com/nooga/tsrt/pkg/fiber"
	"github.com/nooga/tsrt/pkg/value"
)

// Result is one step of a generator.
type Result struct {
	Value value.Value
	Done  bool
}

// Body is a generator function body. It produces values with Yield and its
// return value becomes the final {value, done: true} result.
type Body func(ctx context.Context) (value.Value, error)

// Generator drives a fiber. Once it has completed or failed, every further
// Next reports {undefined, true} without resuming anything.
type Generator struct {
	f    *fiber.Fiber
	done bool
}

// New creates a suspended generator; the body starts on the first Next.
func New(ctx context.Context, body Body) *Generator {
	f := fiber.New(ctx, func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
		v, err := body(ctx)
		return []value.Value{v}, err
	})
	g := &Generator{f: f}
	// A generator dropped while suspended would otherwise pin its goroutine.
	runtime.AddCleanup(g, func(f *fiber.Fiber) { _ = f.Close() }, f)
	return g
}

func first(vals []value.Value) value.Value {
	if len(vals) == 0 {
		return value.Undefined
	}
	return vals[0]
}

func (g *Generator) step(vals []value.Value, done bool, err error) (Result, error) {
	if err != nil {
		g.done = true
		return Result{Value: value.Undefined, Done: true}, err
	}
	if done {
		g.done = true
	}
	return Result{Value: first(vals), Done: done}, nil
}

// Next resumes the body; arg becomes the result of the pending Yield. The
// argument of the first Next is dropped, as there is no Yield waiting.
func (g *Generator) Next(arg value.Value) (Result, error) {
	if g.done {
		return Result{Value: value.Undefined, Done: true}, nil
	}
	return g.step(g.f.Resume(arg))
}

// Return finishes the generator with v. A suspended body is unwound, running
// its deferred calls.
func (g *Generator) Return(v value.Value) (Result, error) {
	if !g.done {
		g.done = true
		if err := g.f.Close(); err != nil {
			return Result{Value: value.Undefined, Done: true}, err
		}
	}
	return Result{Value: v, Done: true}, nil
}

// Throw raises reason inside the body at its pending Yield. The body may
// handle it and keep yielding; otherwise the error comes back to the caller.
func (g *Generator) Throw(reason error) (Result, error) {
	if g.done {
		return Result{Value: value.Undefined, Done: true}, reason
	}
	return g.step(g.f.Throw(reason))
}

// Done reports whether the generator has finished.
func (g *Generator) Done() bool { return g.done }

// Yield suspends the running generator body with v and returns the value
// passed to the next Next.
func Yield(ctx context.Context, v value.Value) (value.Value, error) {
	in, err := fiber.Yield(ctx, v)
	if err != nil {
		return value.Undefined, err
	}
	return first(in), nil
}

// YieldFrom delegates to another sequence (yield*). Values sent to the outer
// generator are forwarded when the inner one is a generator, and its return
// value is the result.
func YieldFrom(ctx context.Context, v value.Value) (value.Value, error) {
	if inner, ok := FromValue(v); ok {
		r, err := inner.Next(value.Undefined)
		for {
			if err != nil {
				return value.Undefined, err
			}
			if r.Done {
				return r.Value, nil
			}
			sent, yerr := Yield(ctx, r.Value)
			if yerr != nil {
				r, err = inner.Throw(yerr)
			} else {
				r, err = inner.Next(sent)
			}
		}
	}
	err := value.Iterate(v, func(e value.Value) (bool, error) {
		_, err := Yield(ctx, e)
		return err == nil, err
	})
	return value.Undefined, err
}

// Iterator adapts the generator to the Go iteration protocol.
func (g *Generator) Iterator() value.Iterator {
	return value.IteratorFunc(func() (value.Value, bool, error) {
		r, err := g.Next(value.Undefined)
		if err != nil || r.Done {
			return value.Undefined, false, err
		}
		return r.Value, true, nil
	})
}

var methods = &value.MethodTable{
	Name: "Generator",
	Methods: map[value.PropertyKey]value.Method{
		value.Key("next"): func(o *value.Object, args []value.Value) (value.Value, error) {
			return wrap(o.Internal().(*Generator).Next(arg(args)))
		},
		value.Key("return"): func(o *value.Object, args []value.Value) (value.Value, error) {
			return wrap(o.Internal().(*Generator).Return(arg(args)))
		},
		value.Key("throw"): func(o *value.Object, args []value.Value) (value.Value, error) {
			return wrap(o.Internal().(*Generator).Throw(value.ToError(arg(args))))
		},
		value.SymbolKey(value.SymbolIterator): func(o *value.Object, _ []value.Value) (value.Value, error) {
			return o.Value(), nil
		},
	},
}

func arg(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Undefined
	}
	return args[0]
}

func wrap(r Result, err error) (value.Value, error) {
	if err != nil {
		return value.Undefined, err
	}
	return value.IterResult(r.Value, r.Done), nil
}

// Value exposes the generator as a source-level generator object.
func (g *Generator) Value() value.Value {
	o := value.NewObjectWithHooks(methods)
	o.SetInternal(g)
	return o.Value()
}

// FromValue recovers the generator behind a generator object.
func FromValue(v value.Value) (*Generator, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	g, ok := o.Internal().(*Generator)
	return g, ok
}
