package sched

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ValidationError describes one malformed task or configuration value.
// Index is the task's position in the batch, or -1 for batch-level fields.
type ValidationError struct {
	Index  int
	TaskID string
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := "invalid " + e.Field
	if e.Index >= 0 {
		msg = "task " + strconv.Itoa(e.Index)
		if e.TaskID != "" {
			msg += " (" + strconv.Quote(e.TaskID) + ")"
		}
		msg += ": invalid " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// validate collects every problem in the batch. The result is nil or an
// errors.Join of *ValidationError values.
func validate(tasks []Task, rateLimitMs, startTime int64) error {
	var errs []error
	fail := func(i int, id, field, reason string) {
		errs = append(errs, &ValidationError{Index: i, TaskID: id, Field: field, Reason: reason})
	}

	if rateLimitMs <= 0 {
		fail(-1, "", "rateLimitMs", fmt.Sprintf("must be positive, got %d", rateLimitMs))
	}
	if startTime < 0 {
		fail(-1, "", "startTime", fmt.Sprintf("must not be negative, got %d", startTime))
	}

	seen := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			fail(i, "", "id", "missing")
		} else if first, dup := seen[t.ID]; dup {
			fail(i, t.ID, "id", fmt.Sprintf("duplicate of task %d", first))
		} else {
			seen[t.ID] = i
		}
		if t.Duration <= 0 {
			fail(i, t.ID, "duration", fmt.Sprintf("must be positive, got %d", t.Duration))
		}
		if t.CreatedAt < 0 {
			fail(i, t.ID, "createdAt", fmt.Sprintf("must not be negative, got %d", t.CreatedAt))
		}
		if t.Deadline < 0 {
			fail(i, t.ID, "deadline", fmt.Sprintf("must not be negative, got %d", t.Deadline))
		}
		if t.CreatedAt >= 0 && t.Duration > 0 {
			if _, ok := addTime(t.CreatedAt, t.Duration); !ok {
				fail(i, t.ID, "duration", fmt.Sprintf("createdAt %d + duration %d overflows int64", t.CreatedAt, t.Duration))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	// Each start is at most one window past the later of the previous end and
	// the task's arrival, so this bounds every End the simulation can reach.
	horizon := startTime
	for _, t := range tasks {
		horizon = max(horizon, t.CreatedAt)
	}
	for _, t := range tasks {
		var ok bool
		if horizon, ok = addTime(horizon, t.Duration); ok {
			horizon, ok = addTime(horizon, MaxWindowMs)
		}
		if !ok {
			fail(-1, "", "tasks", "timeline end overflows int64")
			break
		}
	}

	return errors.Join(errs...)
}

// addTime adds two non-negative times, reporting false on overflow.
func addTime(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}
