// Package fiber provides single-shot resumable execution contexts.
//
// A fiber runs its body on its own goroutine, but control is handed back
// and forth over unbuffered channels so exactly one side runs at any time:
// the resumer blocks in Resume until the body yields or finishes, and the
// body blocks in Yield until it is resumed again.
package fiber

import (
	"context"
	"fmt"
	"runtime"

	"github.com/nooga/tsrt/pkg/value"
)

const debugFiber = false

// Status is the lifecycle state of a fiber.
type Status int

const (
	Suspended Status = iota // created, or parked in Yield
	Running
	Dead
)

func (s Status) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Dead:
		return "dead"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Body is the code a fiber runs. ctx identifies the fiber to Yield; args are
// the values of the first Resume.
type Body func(ctx context.Context, args []value.Value) ([]value.Value, error)

type message struct {
	vals  []value.Value
	err   error
	done  bool
	close bool
}

// Fiber is a cooperative coroutine.
type Fiber struct {
	ctx     context.Context
	body    Body
	status  Status
	started bool
	resume  chan message
	yield   chan message
}

type fiberKey struct{}

// New creates a suspended fiber. The body does not start until the first
// Resume.
func New(ctx context.Context, body Body) *Fiber {
	return &Fiber{
		ctx:    ctx,
		body:   body,
		resume: make(chan message),
		yield:  make(chan message),
	}
}

// Status returns the current state.
func (f *Fiber) Status() Status { return f.status }

// Current returns the fiber whose body ctx belongs to, or nil outside any
// fiber.
func Current(ctx context.Context) *Fiber {
	f, _ := ctx.Value(fiberKey{}).(*Fiber)
	return f
}

// Resume transfers control into the fiber and blocks until it yields or
// finishes. done reports that the body returned (or failed); vals are the
// yielded or returned values.
func (f *Fiber) Resume(args ...value.Value) (vals []value.Value, done bool, err error) {
	return f.transfer(message{vals: args})
}

// Throw resumes the fiber by raising err at its suspension point. A fiber
// that never started dies without running its body.
func (f *Fiber) Throw(err error) ([]value.Value, bool, error) {
	if !f.started && f.status == Suspended {
		f.status = Dead
		return nil, true, err
	}
	return f.transfer(message{err: err})
}

func (f *Fiber) transfer(m message) ([]value.Value, bool, error) {
	switch f.status {
	case Dead:
		return nil, true, fmt.Errorf("cannot resume dead fiber")
	case Running:
		return nil, false, fmt.Errorf("cannot resume non-suspended fiber")
	}
	f.status = Running
	if !f.started {
		f.started = true
		go f.run(m.vals)
	} else {
		f.resume <- m
	}
	out := <-f.yield
	if out.done {
		f.status = Dead
	} else {
		f.status = Suspended
	}
	if debugFiber {
		fmt.Printf("[fiber %p] -> %s (%d values, err=%v)\n", f, f.status, len(out.vals), out.err)
	}
	return out.vals, out.done, out.err
}

func (f *Fiber) run(args []value.Value) {
	var out message
	defer func() {
		if r := recover(); r != nil {
			out = message{err: fmt.Errorf("fiber panicked: %v", r)}
		}
		out.done = true
		f.yield <- out
	}()
	vals, err := f.body(context.WithValue(f.ctx, fiberKey{}, f), args)
	out = message{vals: vals, err: err}
}

// Yield suspends the fiber ctx belongs to, handing vals to its resumer, and
// returns the values of the next Resume (or the error of the next Throw).
// If the fiber is closed while suspended, Yield never returns: the body's
// goroutine unwinds running its deferred calls.
func Yield(ctx context.Context, vals ...value.Value) ([]value.Value, error) {
	f := Current(ctx)
	if f == nil {
		return nil, fmt.Errorf("yield outside of a fiber")
	}
	f.yield <- message{vals: vals}
	m := <-f.resume
	if m.close {
		runtime.Goexit()
	}
	return m.vals, m.err
}

// Close unwinds a suspended fiber. Closing a fiber that never started or
// already finished only marks it dead.
func (f *Fiber) Close() error {
	switch {
	case f.status == Running:
		return fmt.Errorf("cannot close running fiber")
	case f.status == Dead:
		return nil
	case !f.started:
		f.status = Dead
		return nil
	}
	f.status = Running
	f.resume <- message{close: true}
	<-f.yield
	f.status = Dead
	return nil
}
