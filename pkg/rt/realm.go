// Package rt is the flat namespace compiled programs call into. Calls that
// need per-program state (classes, the symbol registry, the job queue) are
// methods of a Realm; the rest are plain package functions.
package rt

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nooga/tsrt/pkg/async"
	"github.com/nooga/tsrt/pkg/class"
	"github.com/nooga/tsrt/pkg/config"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

const debugRealm = false

func debugPrintf(format string, args ...any) {
	if debugRealm {
		fmt.Printf(format, args...)
	}
}

// Realm is the runtime state of one program: its class registry and its
// async runtime, configured from the same options. A Realm is not safe for
// concurrent use; run every call for it from one goroutine.
type Realm struct {
	opts    config.Options
	log     *slog.Logger
	classes *class.Registry
	jobs    *async.Runtime
	modules map[string]*nativeModule
}

// NewRealm creates a realm. A nil logger means slog.Default().
func NewRealm(opts config.Options, log *slog.Logger) *Realm {
	if log == nil {
		log = slog.Default()
	}
	r := &Realm{
		opts:    opts,
		log:     log,
		classes: class.NewRegistry(opts, log),
	}
	r.jobs = async.New(
		async.WithConfig(opts),
		async.WithLogger(log),
		async.WithErrorValue(r.classes.ErrorValue),
	)
	debugPrintf("// [Realm] created: max_chain_depth=%d max_drain_turns=%d\n", opts.MaxChainDepth, opts.MaxDrainTurns)
	return r
}

// DefaultRealm creates a realm with default options logging to stderr.
func DefaultRealm() *Realm {
	opts := config.Default()
	return NewRealm(opts, opts.Logger(os.Stderr))
}

// LoadRealm creates a realm from a YAML options file.
func LoadRealm(path string) (*Realm, error) {
	opts, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return NewRealm(opts, opts.Logger(os.Stderr)), nil
}

func (r *Realm) Options() config.Options   { return r.opts }
func (r *Realm) Logger() *slog.Logger      { return r.log }
func (r *Realm) Registry() *class.Registry { return r.classes }
func (r *Realm) Runtime() *async.Runtime   { return r.jobs }

// Class defines a new root class. Members are added through the returned
// descriptor; Extend links it to a parent.
func (r *Realm) Class(name string) *class.Class {
	return r.classes.Define(name)
}

// Extend makes base the parent class of target. Both are class values of
// this realm.
func (r *Realm) Extend(target, base value.Value) error {
	t, err := classOf(target)
	if err != nil {
		return err
	}
	b, err := classOf(base)
	if err != nil {
		return err
	}
	return r.classes.Extend(t, b)
}

// Builtin returns the class value of a builtin ("Error", "TypeError",
// "String", ...), or undefined.
func (r *Realm) Builtin(name string) value.Value {
	c := r.classes.Builtin(name)
	if c == nil {
		return value.Undefined
	}
	return c.Value()
}

// NewError constructs an instance of a builtin error class.
func (r *Realm) NewError(kind, message string) (value.Value, error) {
	c := r.classes.Builtin(kind)
	if c == nil {
		return value.Undefined, errors.NewReferenceError("%s is not defined", kind)
	}
	return class.New(c, value.String(message))
}

// Catch converts an error returned by any runtime call into the value a
// catch clause binds.
func (r *Realm) Catch(err error) value.Value { return r.classes.ErrorValue(err) }

// SymbolFor implements Symbol.for.
func (r *Realm) SymbolFor(key string) value.Value { return r.classes.SymbolFor(key).Value() }

// SymbolKeyFor implements Symbol.keyFor: the registry key, or undefined for
// a symbol that did not come from SymbolFor.
func (r *Realm) SymbolKeyFor(sym value.Value) (value.Value, error) {
	if !sym.IsSymbol() {
		return value.Undefined, errors.NewTypeError("%s is not a symbol", value.Inspect(sym))
	}
	if k, ok := r.classes.KeyFor(sym.AsSymbol()); ok {
		return value.String(k), nil
	}
	return value.Undefined, nil
}

// Promises. Every call returns the promise as a value; Wait and Then accept
// that value back.

func (r *Realm) PromiseResolve(v value.Value) value.Value     { return r.jobs.Resolve(v).Value() }
func (r *Realm) PromiseReject(reason value.Value) value.Value { return r.jobs.Reject(reason).Value() }
func (r *Realm) PromiseAll(iterable value.Value) value.Value  { return r.jobs.All(iterable).Value() }
func (r *Realm) PromiseAny(iterable value.Value) value.Value  { return r.jobs.Any(iterable).Value() }
func (r *Realm) PromiseRace(iterable value.Value) value.Value { return r.jobs.Race(iterable).Value() }
func (r *Realm) PromiseAllSettled(iterable value.Value) value.Value {
	return r.jobs.AllSettled(iterable).Value()
}

// NewPromise implements new Promise(executor).
func (r *Realm) NewPromise(executor value.Value) (value.Value, error) {
	p, err := r.jobs.NewPromise(executor)
	if err != nil {
		return value.Undefined, err
	}
	return p.Value(), nil
}

// WithResolvers implements Promise.withResolvers for Go callers.
func (r *Realm) WithResolvers() (p value.Value, resolve, reject func(value.Value)) {
	pr, resolve, reject := r.jobs.WithResolvers()
	return pr.Value(), resolve, reject
}

// Async runs an async function body and returns its promise.
func (r *Realm) Async(ctx context.Context, fn async.AsyncFunc) value.Value {
	return r.jobs.Async(ctx, fn).Value()
}

// Spawn runs fn on its own goroutine and settles the returned promise on
// the realm's queue once it finishes.
func (r *Realm) Spawn(ctx context.Context, fn func(ctx context.Context) (value.Value, error)) value.Value {
	return r.jobs.Spawn(ctx, fn).Value()
}

// Drain runs queued jobs until none remain.
func (r *Realm) Drain() error { return r.jobs.Drain() }

// Wait drains until the promise p settles and returns its value, or its
// rejection reason as an error. A non-promise is returned as is.
func (r *Realm) Wait(p value.Value) (value.Value, error) {
	pr, ok := async.FromValue(p)
	if !ok {
		return p, nil
	}
	return r.jobs.Wait(pr)
}

// Then implements p.then(onFulfilled, onRejected).
func Then(p, onFulfilled, onRejected value.Value) (value.Value, error) {
	pr, ok := async.FromValue(p)
	if !ok {
		return value.Undefined, errors.NewTypeError("%s is not a promise", value.Inspect(p))
	}
	return pr.Then(onFulfilled, onRejected).Value(), nil
}

// Run is the program entry point: it runs main as an async function, drains
// the queue and returns main's result.
func (r *Realm) Run(ctx context.Context, main async.AsyncFunc) (value.Value, error) {
	v, err := r.Wait(r.Async(ctx, main))
	if err != nil {
		r.log.Debug("program failed", "reason", value.Inspect(r.Catch(err)))
		return value.Undefined, err
	}
	return v, nil
}
