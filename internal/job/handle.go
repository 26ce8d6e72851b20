package job

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is the terminal error of a cancelled job.
var ErrCancelled = errors.New("job cancelled")

// Handle is the completion signal for one scheduled job. Any number of
// goroutines may observe it; all see the same terminal outcome.
type Handle struct {
	name string
	seq  uint64

	cancel context.CancelFunc

	mu    sync.Mutex
	state State
	value any
	err   error
	done  chan struct{}
}

func newHandle(name string, seq uint64, cancel context.CancelFunc) *Handle {
	return &Handle{
		name:   name,
		seq:    seq,
		cancel: cancel,
		state:  Queued,
		done:   make(chan struct{}),
	}
}

// Name returns the job's name.
func (h *Handle) Name() string { return h.name }

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done returns a channel closed when the job reaches a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Value returns the job's result after Completed; nil otherwise.
func (h *Handle) Value() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Err returns nil after Completed, ErrCancelled after Cancelled, and the
// captured failure after Faulted. Before a terminal state it returns nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Cancel requests cooperative cancellation. Safe to call at any time, any
// number of times; after a terminal state it has no effect.
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the job settles or ctx expires. On settle it returns the
// job's value and terminal error.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.Value(), h.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// markRunning flips Queued -> Running. Returns false if the handle already
// settled (cancelled before pickup).
func (h *Handle) markRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Queued {
		return false
	}
	h.state = Running
	return true
}

// settle records the terminal outcome exactly once.
func (h *Handle) settle(state State, value any, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Terminal() {
		return false
	}
	h.state = state
	h.value = value
	h.err = err
	close(h.done)
	return true
}
