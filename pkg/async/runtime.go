// Package async implements the promise state machine, the promise
// combinators and async/await on top of fibers.
//
// Everything here runs on one goroutine, the one calling Drain or Wait.
// Promise reactions are never run inside the call that settles a promise:
// they are queued as jobs on the Runtime's scheduler and run on a later
// turn, in registration order.
package async

import (
	"log/slog"

	"github.com/nooga/tsrt/pkg/config"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/runtime"
	"github.com/nooga/tsrt/pkg/value"
)

// Runtime owns the job queue and the unhandled-rejection tracker of one
// program.
type Runtime struct {
	sched       runtime.Scheduler
	opts        config.Options
	log         *slog.Logger
	errorValue  func(error) value.Value
	onUnhandled func(value.Value)

	unhandled []*Promise
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithScheduler replaces the default FIFO queue.
func WithScheduler(s runtime.Scheduler) Option {
	return func(rt *Runtime) { rt.sched = s }
}

// WithConfig sets the drain bound and unhandled-rejection reporting.
func WithConfig(opts config.Options) Option {
	return func(rt *Runtime) { rt.opts = opts }
}

// WithLogger sets the logger used for unhandled rejections.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) { rt.log = l }
}

// WithErrorValue sets how Go errors raised by handlers become rejection
// reasons (by default value.FromError).
func WithErrorValue(fn func(error) value.Value) Option {
	return func(rt *Runtime) { rt.errorValue = fn }
}

// OnUnhandledRejection replaces the default reporter, which logs a warning.
func OnUnhandledRejection(fn func(reason value.Value)) Option {
	return func(rt *Runtime) { rt.onUnhandled = fn }
}

// New creates a runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		sched:      runtime.NewQueue(),
		opts:       config.Default(),
		errorValue: value.FromError,
	}
	for _, o := range opts {
		o(rt)
	}
	if rt.log == nil {
		rt.log = slog.Default()
	}
	if rt.onUnhandled == nil {
		rt.onUnhandled = func(reason value.Value) {
			rt.log.Warn("unhandled promise rejection", "reason", value.Inspect(reason))
		}
	}
	return rt
}

// Scheduler returns the job queue.
func (rt *Runtime) Scheduler() runtime.Scheduler { return rt.sched }

// ErrorValue converts a Go error into a rejection reason.
func (rt *Runtime) ErrorValue(err error) value.Value { return rt.errorValue(err) }

// Drain runs jobs until the queue is empty and no external operation is in
// flight. It fails if the queue keeps refilling for more than MaxDrainTurns
// turns.
func (rt *Runtime) Drain() error {
	turns := 0
	for {
		if rt.sched.RunTurn() {
			turns++
			if max := rt.opts.MaxDrainTurns; max > 0 && turns >= max && rt.sched.Pending() > 0 {
				return errors.NewRangeError("job queue still busy after %d turns", turns)
			}
			continue
		}
		if !rt.sched.HasPendingExternalOps() && rt.sched.Pending() == 0 {
			break
		}
		rt.sched.WaitForWork()
	}
	rt.reportUnhandled()
	return nil
}

// Wait drains until p settles and returns its outcome: the value, or the
// reason raised as an error. A promise that can no longer settle is an
// error.
func (rt *Runtime) Wait(p *Promise) (value.Value, error) {
	p.markHandled()
	turns := 0
	for p.state == Pending {
		if rt.sched.RunTurn() {
			turns++
			if max := rt.opts.MaxDrainTurns; max > 0 && turns >= max {
				return value.Undefined, errors.NewRangeError("job queue still busy after %d turns", turns)
			}
			continue
		}
		if !rt.sched.HasPendingExternalOps() && rt.sched.Pending() == 0 {
			break
		}
		rt.sched.WaitForWork()
	}
	rt.reportUnhandled()
	switch p.state {
	case Fulfilled:
		return p.result, nil
	case Rejected:
		return value.Undefined, value.ToError(p.result)
	}
	return value.Undefined, errors.NewTypeError("promise can never settle: no jobs or external operations left")
}

func (rt *Runtime) trackRejection(p *Promise) {
	rt.unhandled = append(rt.unhandled, p)
}

func (rt *Runtime) reportUnhandled() {
	pending := rt.unhandled
	rt.unhandled = nil
	if !rt.opts.ReportUnhandledRejections {
		return
	}
	for _, p := range pending {
		if !p.handled {
			rt.onUnhandled(p.result)
		}
	}
}
