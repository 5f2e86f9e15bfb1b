package sched

// Task is one unit of work submitted to the scheduler. All times are in
// milliseconds on the simulated clock.
type Task struct {
	ID        string `yaml:"id" json:"id"`
	Priority  int    `yaml:"priority" json:"priority"`   // higher runs first
	CreatedAt int64  `yaml:"createdAt" json:"createdAt"` // arrival time, never scheduled before it
	Duration  int64  `yaml:"duration" json:"duration"`   // runs to completion, never split
	Deadline  int64  `yaml:"deadline,omitempty" json:"deadline,omitempty"`
}

// ExecutionRecord is the committed outcome for one task.
type ExecutionRecord struct {
	ID    string `yaml:"id" json:"id"`
	Start int64  `yaml:"start" json:"start"`
	End   int64  `yaml:"end" json:"end"`
}

// Duration returns End - Start.
func (r ExecutionRecord) Duration() int64 { return r.End - r.Start }

// Batch is a validated, immutable scheduling input. Build it with NewBatch
// or LoadBatch; the zero value schedules nothing.
type Batch struct {
	tasks       []Task
	rateLimitMs int64
	startTime   int64
}

// NewBatch validates the input and returns a Batch that owns a private copy
// of tasks. Every problem found is reported; see ValidationError.
func NewBatch(tasks []Task, rateLimitMs, startTime int64) (Batch, error) {
	if err := validate(tasks, rateLimitMs, startTime); err != nil {
		return Batch{}, err
	}
	return Batch{
		tasks:       append([]Task(nil), tasks...),
		rateLimitMs: rateLimitMs,
		startTime:   startTime,
	}, nil
}

// Tasks returns a copy of the tasks in submission order.
func (b Batch) Tasks() []Task { return append([]Task(nil), b.tasks...) }

// Len returns the number of tasks.
func (b Batch) Len() int { return len(b.tasks) }

// RateLimitMs returns the work allowed per rolling window.
func (b Batch) RateLimitMs() int64 { return b.rateLimitMs }

// StartTime returns the earliest time any task may start.
func (b Batch) StartTime() int64 { return b.startTime }

// Task returns the i-th task in submission order.
func (b Batch) Task(i int) Task { return b.tasks[i] }
