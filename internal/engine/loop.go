package engine

import (
	"context"
	"time"
)

// Loop is the single goroutine a live session runs on. Input events and timer
// callbacks are posted as tasks and executed one at a time, to completion.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

// NewLoop creates a loop whose task queue holds buffer pending tasks.
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run drains tasks until ctx is cancelled. Call in a goroutine.
// Tasks still queued, and timers that fire later, are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn for execution on the loop. It reports false once the loop
// has stopped. Must not be called from inside a task when the queue may be full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case <-l.done:
		return false
	case l.tasks <- fn:
		return true
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}

// EveryUntil implements Scheduler.
func (l *Loop) EveryUntil(interval time.Duration, fn func(), stop func() bool) {
	everyUntil(l, interval, fn, stop)
}
