package job

import (
	"container/heap"
	"context"
)

// queued pairs a job with its handle and merged context while it waits for a
// worker.
type queued struct {
	job    Job
	handle *Handle
	ctx    context.Context
}

// jobHeap orders by priority (higher first), tie-broken by creation sequence
// so equal-priority jobs stay FIFO regardless of timer resolution.
type jobHeap []*queued

func (q jobHeap) Len() int { return len(q) }

func (q jobHeap) Less(i, j int) bool {
	if q[i].job.Priority != q[j].job.Priority {
		return q[i].job.Priority > q[j].job.Priority
	}
	return q[i].handle.seq < q[j].handle.seq
}

func (q jobHeap) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *jobHeap) Push(x any) { *q = append(*q, x.(*queued)) }

func (q *jobHeap) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

var _ heap.Interface = (*jobHeap)(nil)
