// internal/sched/scheduler.go

package sched

import (
	"iter"

	"github.com/rs/zerolog"
)

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	hook     func(StatusEvent)
	windowMs int64
}

// WithLogger sets the logger used for per-decision debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEventHook registers a callback for every StatusEvent.
func WithEventHook(fn func(StatusEvent)) Option {
	return func(o *options) { o.hook = fn }
}

// WithWindow overrides the rolling window length. Values outside
// (0, MaxWindowMs] are ignored.
func WithWindow(ms int64) Option {
	return func(o *options) {
		if ms > 0 && ms <= MaxWindowMs {
			o.windowMs = ms
		}
	}
}

// Scheduler computes a non-preemptive, rate-limited timeline for a Batch.
// It holds no state between runs; every Run or Records iteration starts a
// fresh simulation.
type Scheduler struct {
	batch Batch
	opts  options
}

// New creates a Scheduler for the batch.
func New(b Batch, opts ...Option) *Scheduler {
	o := options{logger: zerolog.Nop(), windowMs: DefaultWindowMs}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler{batch: b, opts: o}
}

// Schedule validates the input and returns the full timeline. On error no
// records are returned.
func Schedule(tasks []Task, rateLimitMs, startTime int64, opts ...Option) ([]ExecutionRecord, error) {
	b, err := NewBatch(tasks, rateLimitMs, startTime)
	if err != nil {
		return nil, err
	}
	return New(b, opts...).Run(), nil
}

// Run returns every record, ascending by start.
func (s *Scheduler) Run() []ExecutionRecord {
	out := make([]ExecutionRecord, 0, s.batch.Len())
	for rec := range s.Records() {
		out = append(out, rec)
	}
	return out
}

// Records yields records lazily in start order. Stopping early discards the
// rest of the simulation; ranging again restarts it.
func (s *Scheduler) Records() iter.Seq[ExecutionRecord] {
	return func(yield func(ExecutionRecord) bool) {
		r := s.newRun()
		for {
			rec, ok := r.step()
			if !ok || !yield(rec) {
				return
			}
		}
	}
}

// run is the state of one simulation.
type run struct {
	opts   options
	now    int64             // simulated clock
	gate   *ArrivalGate      // tasks not yet arrived
	ready  *PrioritySelector // arrived, unscheduled
	window *WindowTracker    // admitted work in the rolling window
	left   int               // unscheduled tasks
	log    zerolog.Logger
}

func (s *Scheduler) newRun() *run {
	return &run{
		opts:   s.opts,
		now:    s.batch.startTime,
		gate:   NewArrivalGate(s.batch),
		ready:  NewPrioritySelector(),
		window: NewWindowTracker(s.batch.rateLimitMs, s.opts.windowMs),
		left:   s.batch.Len(),
		log:    s.opts.logger,
	}
}

func (r *run) emit(kind StatusKind, t Task, usage int64) {
	if r.opts.hook == nil {
		return
	}
	r.opts.hook(StatusEvent{
		At:       r.now,
		Kind:     kind,
		TaskID:   t.ID,
		Priority: t.Priority,
		Usage:    usage,
	})
}

// release moves every task that has arrived by now into the ready set.
func (r *run) release() {
	r.gate.ReleaseTo(r.now, r.ready, func(t Task) {
		r.emit(StatusArrive, t, 0)
	})
}

// step commits the next record, or reports false once every task is done.
func (r *run) step() (ExecutionRecord, bool) {
	if r.left == 0 {
		return ExecutionRecord{}, false
	}

	for {
		// 1) selecting: nothing ready means fast-forward to the next arrival
		r.release()
		t, ok := r.ready.Next()
		if !ok {
			next, _ := r.gate.NextArrival()
			r.log.Debug().Int64("from", r.now).Int64("to", next).Msg("idle")
			r.now = next
			r.emit(StatusIdle, Task{}, 0)
			continue
		}

		// 2) delaying: a throttled start re-selects at the later time, since
		//    a better task may have arrived in between
		at := max(r.now, t.CreatedAt)
		pending := r.window.Usage(at)
		start := r.window.EarliestStart(at)
		if start > r.now {
			r.log.Debug().
				Str("task", t.ID).
				Int64("from", r.now).
				Int64("to", start).
				Msg("throttled")
			r.emit(StatusThrottle, t, pending)
			r.now = start
			continue
		}

		// 3) committing
		usage := r.window.Usage(start)
		r.ready.Pop()
		r.left--
		r.emit(StatusDispatch, t, usage)

		rec := ExecutionRecord{ID: t.ID, Start: start, End: start + t.Duration}
		if over := r.window.Commit(start, t.Duration); over > 0 {
			r.log.Debug().Str("task", t.ID).Int64("overshoot_ms", over).Msg("window limit exceeded by admitted task")
			r.emit(StatusOvershoot, t, usage+t.Duration)
		}

		r.now = rec.End
		r.emit(StatusFinish, t, r.window.Usage(r.now))
		r.log.Debug().
			Str("task", rec.ID).
			Int("priority", t.Priority).
			Int64("start", rec.Start).
			Int64("end", rec.End).
			Msg("committed")
		return rec, true
	}
}
