package timeline

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"ratesched/internal/sched"
)

// Entry describes how one task fared.
type Entry struct {
	ID        string
	Priority  int
	CreatedAt int64
	Start     int64
	End       int64
	Wait      int64 // Start - max(CreatedAt, batch start)
	Overshoot int64 // window usage past the limit once this task was admitted
	Late      int64 // End - Deadline when a deadline was missed
}

// Report summarises a computed timeline.
type Report struct {
	RateLimitMs int64
	WindowMs    int64
	Entries     []Entry // in execution order
	Makespan    int64   // last end - batch start
	Busy        int64
	Utilization float64 // Busy / Makespan
	PeakUsage   int64   // highest window usage right after an admission
	MaxWait     int64
	MeanWait    float64
}

// Analyze computes a Report for records produced from b. Records must be in
// start order, as the scheduler returns them.
func Analyze(b sched.Batch, records []sched.ExecutionRecord, windowMs int64) Report {
	if windowMs <= 0 {
		windowMs = sched.DefaultWindowMs
	}
	rep := Report{RateLimitMs: b.RateLimitMs(), WindowMs: windowMs}
	if len(records) == 0 {
		return rep
	}

	tasks := make(map[string]sched.Task, b.Len())
	for _, t := range b.Tasks() {
		tasks[t.ID] = t
	}

	// Replay admissions through a fresh tracker to recover window usage.
	window := sched.NewWindowTracker(b.RateLimitMs(), windowMs)

	var totalWait int64
	for _, r := range records {
		t := tasks[r.ID]
		e := Entry{
			ID:        r.ID,
			Priority:  t.Priority,
			CreatedAt: t.CreatedAt,
			Start:     r.Start,
			End:       r.End,
			Wait:      r.Start - max(t.CreatedAt, b.StartTime()),
		}

		usage := window.Usage(r.Start) + r.Duration()
		e.Overshoot = window.Commit(r.Start, r.Duration())
		rep.PeakUsage = max(rep.PeakUsage, usage)

		if t.Deadline > 0 && r.End > t.Deadline {
			e.Late = r.End - t.Deadline
		}

		rep.Busy += r.Duration()
		rep.MaxWait = max(rep.MaxWait, e.Wait)
		totalWait += e.Wait
		rep.Entries = append(rep.Entries, e)
	}

	rep.Makespan = records[len(records)-1].End - b.StartTime()
	if rep.Makespan > 0 {
		rep.Utilization = float64(rep.Busy) / float64(rep.Makespan)
	}
	rep.MeanWait = float64(totalWait) / float64(len(records))
	return rep
}

// Overshoots returns the entries whose admission pushed the window past the
// limit.
func (r Report) Overshoots() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Overshoot > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Missed returns the entries that finished after their deadline.
func (r Report) Missed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Late > 0 {
			out = append(out, e)
		}
	}
	return out
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tasks:        %s\n", humanize.Comma(int64(len(r.Entries))))
	fmt.Fprintf(&b, "rate limit:   %s ms per %s ms\n", humanize.Comma(r.RateLimitMs), humanize.Comma(r.WindowMs))
	fmt.Fprintf(&b, "makespan:     %s ms\n", humanize.Comma(r.Makespan))
	fmt.Fprintf(&b, "busy:         %s ms (%.1f%%)\n", humanize.Comma(r.Busy), r.Utilization*100)
	fmt.Fprintf(&b, "peak window:  %s ms\n", humanize.Comma(r.PeakUsage))
	fmt.Fprintf(&b, "wait:         max %s ms, mean %s ms\n", humanize.Comma(r.MaxWait), humanize.CommafWithDigits(r.MeanWait, 1))

	if over := r.Overshoots(); len(over) > 0 {
		fmt.Fprintf(&b, "overshoots:   %d\n", len(over))
		for _, e := range over {
			fmt.Fprintf(&b, "  %s at %d: +%d ms\n", e.ID, e.Start, e.Overshoot)
		}
	}
	if missed := r.Missed(); len(missed) > 0 {
		fmt.Fprintf(&b, "missed:       %d\n", len(missed))
		for _, e := range missed {
			fmt.Fprintf(&b, "  %s ended %d ms late\n", e.ID, e.Late)
		}
	}
	return b.String()
}
