package job

import "sync"

// MainQueue routes work that must run on the designated main thread (GPU
// buffer creation and release). Workers enqueue from anywhere; the frame
// loop drains on its own goroutine once per frame.
type MainQueue struct {
	mu  sync.Mutex
	fns []func()
}

func NewMainQueue() *MainQueue {
	return &MainQueue{}
}

// RunOnMain enqueues fn for the next drain. Safe from any goroutine.
func (q *MainQueue) RunOnMain(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

// Len returns the number of pending closures.
func (q *MainQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

// Drain runs up to budget pending closures (all of them when budget <= 0)
// on the calling goroutine and returns how many ran. The batch is taken
// under the lock, then executed outside it, so callbacks may re-enqueue.
func (q *MainQueue) Drain(budget int) int {
	q.mu.Lock()
	n := len(q.fns)
	if budget > 0 && budget < n {
		n = budget
	}
	batch := q.fns[:n]
	q.fns = append([]func(){}, q.fns[n:]...)
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return n
}
