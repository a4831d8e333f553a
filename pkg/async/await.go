package async

import (
	"context"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/fiber"
	"github.com/nooga/tsrt/pkg/value"
)

// AsyncFunc is the body of an async function.
type AsyncFunc func(ctx context.Context) (value.Value, error)

type frameKey struct{}

// frame marks a context as belonging to an async function body.
type frame struct {
	rt *Runtime
	f  *fiber.Fiber
}

// Async starts fn in a fiber and returns the promise of its result. The
// body runs synchronously up to its first suspending Await; an error it
// returns (or a panic) rejects the promise.
func (rt *Runtime) Async(ctx context.Context, fn AsyncFunc) *Promise {
	p := rt.newPromise()
	fr := &frame{rt: rt}
	fr.f = fiber.New(context.WithValue(ctx, frameKey{}, fr), func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
		v, err := fn(ctx)
		return []value.Value{v}, err
	})
	fr.step(p, value.Undefined, nil)
	return p
}

// step resumes the body once and either settles p or parks on the awaited
// promise the body yielded.
func (fr *frame) step(p *Promise, in value.Value, raise error) {
	var (
		vals []value.Value
		done bool
		err  error
	)
	if raise != nil {
		vals, done, err = fr.f.Throw(raise)
	} else {
		vals, done, err = fr.f.Resume(in)
	}
	switch {
	case err != nil:
		p.reject(fr.rt.errorValue(err))
	case done:
		p.resolve(first(vals))
	default:
		awaited, ok := FromValue(first(vals))
		if !ok {
			// The body suspended without Await; continue it on the next turn.
			fr.rt.sched.Enqueue(func() { fr.step(p, first(vals), nil) })
			return
		}
		awaited.react(func(v value.Value) {
			fr.step(p, v, nil)
		}, func(r value.Value) {
			fr.step(p, value.Undefined, value.ToError(r))
		})
	}
}

// Await suspends the async body ctx belongs to until v settles. A plain
// value is wrapped in a fulfilled promise, so the body always resumes on a
// later turn. A rejection comes back as an error whose value is the reason.
func Await(ctx context.Context, v value.Value) (value.Value, error) {
	fr, _ := ctx.Value(frameKey{}).(*frame)
	if fr == nil || fiber.Current(ctx) != fr.f {
		return value.Undefined, errors.NewReferenceError("await is only valid in async functions")
	}
	in, err := fiber.Yield(ctx, fr.rt.Resolve(v).Value())
	if err != nil {
		return value.Undefined, err
	}
	return first(in), nil
}

// Spawn runs fn on its own goroutine as an external operation and returns
// a promise settled back on the loop when fn returns. fn must not touch
// runtime values shared with the loop.
func (rt *Runtime) Spawn(ctx context.Context, fn func(ctx context.Context) (value.Value, error)) *Promise {
	p := rt.newPromise()
	rt.sched.BeginExternalOp()
	go func() {
		v, err := fn(ctx)
		rt.sched.Enqueue(func() {
			if err != nil {
				p.reject(rt.errorValue(err))
				return
			}
			p.resolve(v)
		})
		rt.sched.EndExternalOp()
	}()
	return p
}
