// internal/sched/event.go

package sched

import (
	"encoding/csv"
	"io"
	"strconv"
)

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusArrive StatusKind = iota
	StatusIdle
	StatusThrottle
	StatusDispatch
	StatusFinish
	StatusOvershoot
)

// StatusEvent is emitted on every scheduling decision. At is simulated time.
type StatusEvent struct {
	At       int64
	Kind     StatusKind
	TaskID   string
	Priority int
	Usage    int64 // work charged to the rolling window at At
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusArrive:
		return "Arrive"
	case StatusIdle:
		return "Idle"
	case StatusThrottle:
		return "Throttle"
	case StatusDispatch:
		return "Dispatch"
	case StatusFinish:
		return "Finish"
	case StatusOvershoot:
		return "Overshoot"
	default:
		return "Unknown"
	}
}

// EventLog writes StatusEvents as CSV rows. Pass its Handle method to
// WithEventHook.
type EventLog struct {
	w   *csv.Writer
	err error
}

// NewEventLog writes the header immediately.
func NewEventLog(w io.Writer) *EventLog {
	l := &EventLog{w: csv.NewWriter(w)}
	l.err = l.w.Write([]string{"time_ms", "event", "task_id", "priority", "window_usage_ms"})
	return l
}

// Handle records one event. The first write error sticks and is returned by
// Flush.
func (l *EventLog) Handle(ev StatusEvent) {
	if l.err != nil {
		return
	}
	l.err = l.w.Write([]string{
		strconv.FormatInt(ev.At, 10),
		ev.Kind.String(),
		ev.TaskID,
		strconv.Itoa(ev.Priority),
		strconv.FormatInt(ev.Usage, 10),
	})
}

// Flush writes buffered rows and reports the first error seen.
func (l *EventLog) Flush() error {
	l.w.Flush()
	if l.err != nil {
		return l.err
	}
	return l.w.Error()
}
