package engine

import (
	"container/heap"
	"time"
)

// VirtualScheduler is a deterministic Scheduler driven by an explicit clock.
// Nothing fires until Advance is called; callbacks run on the caller's goroutine.
type VirtualScheduler struct {
	now   time.Duration
	seq   uint64
	queue timerQueue
}

// NewVirtualScheduler returns a scheduler at virtual time zero.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{}
}

// After implements Scheduler.
func (v *VirtualScheduler) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	v.seq++
	heap.Push(&v.queue, &virtualTimer{at: v.now + d, seq: v.seq, fn: fn})
}

// EveryUntil implements Scheduler.
func (v *VirtualScheduler) EveryUntil(interval time.Duration, fn func(), stop func() bool) {
	everyUntil(v, interval, fn, stop)
}

// Advance moves the clock forward by d, firing every callback due on the way
// in fire-time order (ties in scheduling order). Callbacks scheduled while
// advancing fire too if they fall inside the window.
func (v *VirtualScheduler) Advance(d time.Duration) {
	target := v.now + d
	for v.queue.Len() > 0 && v.queue[0].at <= target {
		t := heap.Pop(&v.queue).(*virtualTimer)
		v.now = t.at
		t.fn()
	}
	v.now = target
}

// RunUntilIdle fires pending callbacks until none remain or limit have run.
// It returns the number fired.
func (v *VirtualScheduler) RunUntilIdle(limit int) int {
	n := 0
	for v.queue.Len() > 0 && n < limit {
		t := heap.Pop(&v.queue).(*virtualTimer)
		v.now = t.at
		t.fn()
		n++
	}
	return n
}

// Now returns the elapsed virtual time.
func (v *VirtualScheduler) Now() time.Duration {
	return v.now
}

// Pending returns the number of scheduled callbacks.
func (v *VirtualScheduler) Pending() int {
	return v.queue.Len()
}

type virtualTimer struct {
	at  time.Duration
	seq uint64
	fn  func()
}

type timerQueue []*virtualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timerQueue) Push(x interface{}) { *q = append(*q, x.(*virtualTimer)) }

func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
