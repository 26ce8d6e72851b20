// Package job runs named, prioritized background jobs on a fixed worker
// pool, with cooperative cancellation and a main-thread queue for work that
// must not run on workers (GPU buffer uploads).
package job

import "context"

// State is a job's position in its lifecycle. Terminal states are
// Completed, Cancelled and Faulted; a handle settles exactly once.
type State uint8

const (
	Queued State = iota
	Running
	Completed
	Cancelled
	Faulted
)

var stateNames = [...]string{"queued", "running", "completed", "cancelled", "faulted"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled || s == Faulted
}

// Job describes one unit of background work. Run receives a context linked
// to both the job's own cancellation and scheduler shutdown; it must return
// promptly once that context is done.
type Job struct {
	Name     string
	Priority int
	Run      func(ctx context.Context) (any, error)
}
