package engine

import "time"

// Scheduler is the timer facade every engine schedules through.
// Implementations must run callbacks on the same goroutine as input handlers,
// one at a time, and fire callbacks scheduled at the same instant with
// delays D1 < D2 in that order.
type Scheduler interface {
	// After runs fn once, d from now.
	After(d time.Duration, fn func())
	// EveryUntil runs fn every interval until stop reports true.
	// stop is checked before and after each call, so the repetition is
	// cleared the instant the final call has run.
	EveryUntil(interval time.Duration, fn func(), stop func() bool)
}

// everyUntil implements EveryUntil on top of After by re-arming one timer per tick.
func everyUntil(s Scheduler, interval time.Duration, fn func(), stop func() bool) {
	var tick func()
	tick = func() {
		if stop() {
			return
		}
		fn()
		if stop() {
			return
		}
		s.After(interval, tick)
	}
	s.After(interval, tick)
}
