package sched

import (
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

const (
	// DefaultWindowMs is the rolling window length.
	DefaultWindowMs int64 = 1000
	// MaxWindowMs is the longest window WithWindow and Config accept.
	MaxWindowMs int64 = 24 * 60 * 60 * 1000
)

// charge is work admitted to the window at start.
type charge struct {
	start    int64
	duration int64
}

// WindowTracker is a sliding log of admitted work. A record charges its full
// duration at its start instant and the charge leaves the window once
// window ms have passed, so the usage at s covers starts in (s-window, s].
//
// A start is admissible while the usage is below the limit. The admitted
// task may carry the usage past the limit; that excess is the overshoot
// reported by Commit. Query times must be non-decreasing: expired charges
// are dropped for good.
type WindowTracker struct {
	limit  int64
	window int64
	log    *linkedlistqueue.Queue // charges ordered by start
	usage  int64                  // sum of durations in log
}

// NewWindowTracker creates a tracker allowing limit ms of work per window ms.
func NewWindowTracker(limit, window int64) *WindowTracker {
	return &WindowTracker{
		limit:  limit,
		window: window,
		log:    linkedlistqueue.New(),
	}
}

// trim drops charges that have left the window at s.
func (w *WindowTracker) trim(s int64) {
	for {
		v, ok := w.log.Peek()
		if !ok {
			return
		}
		c := v.(charge)
		if c.start+w.window > s {
			return
		}
		w.log.Dequeue()
		w.usage -= c.duration
	}
}

// Usage returns the work charged in (at-window, at].
func (w *WindowTracker) Usage(at int64) int64 {
	w.trim(at)
	return w.usage
}

// EarliestStart returns the first time >= at with headroom in the window.
// Each iteration retires the oldest charge, so the sweep terminates.
func (w *WindowTracker) EarliestStart(at int64) int64 {
	s := at
	w.trim(s)
	for w.usage >= w.limit {
		v, _ := w.log.Peek()
		c := v.(charge)
		s = max(s, c.start+w.window)
		w.trim(s)
	}
	return s
}

// Commit charges duration at start and returns how far the window usage now
// exceeds the limit, or 0.
func (w *WindowTracker) Commit(start, duration int64) int64 {
	w.trim(start)
	w.log.Enqueue(charge{start: start, duration: duration})
	w.usage += duration
	return max(0, w.usage-w.limit)
}
