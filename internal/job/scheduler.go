package job

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Scheduler owns the worker pool and the priority queue. Higher-priority
// jobs dequeue first; equal priorities run in schedule order. Exactly one
// worker runs a given job.
type Scheduler struct {
	log *log.Logger

	shutdownCtx context.Context
	shutdown    context.CancelFunc

	mu     sync.Mutex
	cond   *sync.Cond
	queue  jobHeap
	closed bool

	wg      sync.WaitGroup
	nextSeq atomic.Uint64

	running   atomic.Int64
	completed atomic.Uint64
	cancelled atomic.Uint64
	faulted   atomic.Uint64
}

// NewScheduler starts a pool of workers goroutines. workers must be >= 1.
func NewScheduler(workers int, logger *log.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		log:         logger,
		shutdownCtx: ctx,
		shutdown:    cancel,
	}
	s.cond = sync.NewCond(&s.mu)
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// Schedule enqueues a job and returns its completion handle. The job's
// context is linked to scheduler shutdown, so either Handle.Cancel or
// Shutdown aborts it. Scheduling after Shutdown settles the handle
// Cancelled immediately.
func (s *Scheduler) Schedule(j Job) *Handle {
	jobCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(s.shutdownCtx, cancel)

	h := newHandle(j.Name, s.nextSeq.Add(1), cancel)
	q := &queued{job: j, handle: h, ctx: jobCtx}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stop()
		cancel()
		h.settle(Cancelled, nil, ErrCancelled)
		s.cancelled.Add(1)
		return h
	}
	heap.Push(&s.queue, q)
	s.mu.Unlock()
	s.cond.Signal()

	// Release the shutdown link once the job settles, whichever way.
	go func() {
		<-h.done
		stop()
		cancel()
	}()
	return h
}

// QueueLen returns the number of jobs waiting for a worker.
func (s *Scheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Stats is a point-in-time snapshot of scheduler counters.
type Stats struct {
	Queued    int
	Running   int
	Completed uint64
	Cancelled uint64
	Faulted   uint64
}

func (s *Scheduler) Snapshot() Stats {
	return Stats{
		Queued:    s.QueueLen(),
		Running:   int(s.running.Load()),
		Completed: s.completed.Load(),
		Cancelled: s.cancelled.Load(),
		Faulted:   s.faulted.Load(),
	}
}

// Shutdown cancels all queued and running jobs and waits for the workers to
// drain, or for ctx to expire.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.shutdown()
	s.cond.Broadcast()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job scheduler shutdown: %w", ctx.Err())
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		for s.queue.Len() == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.queue.Len() == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		q := heap.Pop(&s.queue).(*queued)
		s.mu.Unlock()

		s.execute(q)
	}
}

func (s *Scheduler) execute(q *queued) {
	// Cancelled before pickup: never run the body.
	if q.ctx.Err() != nil {
		if q.handle.settle(Cancelled, nil, ErrCancelled) {
			s.cancelled.Add(1)
		}
		return
	}
	if !q.handle.markRunning() {
		return
	}

	s.running.Add(1)
	defer s.running.Add(-1)

	value, err := s.runBody(q)
	switch {
	case err == nil:
		if q.handle.settle(Completed, value, nil) {
			s.completed.Add(1)
		}
	case errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled):
		if q.handle.settle(Cancelled, nil, ErrCancelled) {
			s.cancelled.Add(1)
		}
	default:
		if q.handle.settle(Faulted, nil, err) {
			s.faulted.Add(1)
		}
		if s.log != nil {
			s.log.Printf("job %q faulted: %v", q.job.Name, err)
		}
	}
}

// runBody invokes the job function, converting a panic into a Faulted error
// so one bad build cannot take a worker down.
func (s *Scheduler) runBody(q *queued) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %q panicked: %v\n%s", q.job.Name, r, debug.Stack())
		}
	}()
	return q.job.Run(q.ctx)
}
