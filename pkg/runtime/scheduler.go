// Package runtime holds the job queue the promise machinery runs on.
package runtime

import "sync"

// Scheduler is the execution environment of promise jobs. Implementations
// decide how jobs are queued (FIFO in-process, deterministic test doubles,
// host event loops).
type Scheduler interface {
	// Enqueue appends a job. Jobs never run inside Enqueue.
	Enqueue(job func())

	// RunTurn runs the jobs queued before the call, in order. Jobs queued
	// while it runs wait for the next turn. Reports whether anything ran.
	RunTurn() bool

	// Pending reports the number of queued jobs.
	Pending() int

	// Reset drops all queued jobs and forgets external operations.
	Reset()

	// BeginExternalOp records a host operation (a goroutine doing blocking
	// work) that will enqueue a job when it completes.
	BeginExternalOp()

	// EndExternalOp marks a host operation finished. Its job must already
	// be enqueued.
	EndExternalOp()

	// HasPendingExternalOps reports whether host operations are in flight.
	HasPendingExternalOps() bool

	// WaitForWork blocks while host operations are in flight and no job is
	// queued.
	WaitForWork()
}

// Queue is the default Scheduler: a mutex-guarded FIFO. Enqueue and the
// external-op calls are safe from any goroutine; RunTurn must only be called
// from the goroutine that owns the loop.
type Queue struct {
	mu              sync.Mutex
	jobs            []func()
	pendingExternal int
	wake            *sync.Cond
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{jobs: make([]func(), 0, 16)}
	q.wake = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) Enqueue(job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	q.wake.Broadcast()
}

func (q *Queue) RunTurn() bool {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = make([]func(), 0, 16)
	q.mu.Unlock()

	for _, job := range jobs {
		job()
	}
	return len(jobs) > 0
}

func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = make([]func(), 0, 16)
	q.pendingExternal = 0
	q.wake.Broadcast()
}

func (q *Queue) BeginExternalOp() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pendingExternal++
}

func (q *Queue) EndExternalOp() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pendingExternal--
	q.wake.Broadcast()
}

func (q *Queue) HasPendingExternalOps() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pendingExternal > 0
}

func (q *Queue) WaitForWork() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pendingExternal > 0 && len(q.jobs) == 0 {
		q.wake.Wait()
	}
}
