package sched

import (
	"errors"
	"fmt"
	"math"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// integer is a numeric batch field. Floats, quoted numbers and other
// non-integer values decode without error and are reported by ParseBatch as
// a ValidationError on the field.
type integer struct {
	val int64
	set bool
	bad string
}

func (n *integer) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	n.set = true
	switch x := v.(type) {
	case nil:
		n.set = false
	case int:
		n.val = int64(x)
	case int64:
		n.val = x
	case uint64:
		if x > math.MaxInt64 {
			n.bad = fmt.Sprintf("%d overflows int64", x)
			break
		}
		n.val = int64(x)
	case float64:
		n.bad = fmt.Sprintf("must be an integer, got %v", x)
	case string:
		n.bad = fmt.Sprintf("must be an integer, got string %q", x)
	default:
		n.bad = fmt.Sprintf("must be an integer, got %T", x)
	}
	return nil
}

type taskFile struct {
	ID        string  `yaml:"id"`
	Priority  integer `yaml:"priority"`
	CreatedAt integer `yaml:"createdAt"`
	Duration  integer `yaml:"duration"`
	Deadline  integer `yaml:"deadline"`
}

// batchFile is the on-disk shape of a batch. JSON documents parse as YAML
// flow mappings, so one decoder serves both.
type batchFile struct {
	RateLimitMs integer    `yaml:"rateLimitMs"`
	StartTime   integer    `yaml:"startTime"`
	Tasks       []taskFile `yaml:"tasks"`
}

// ParseBatch decodes and validates a batch document. Missing rateLimitMs or
// startTime fall back to cfg.
func ParseBatch(data []byte, cfg Config) (Batch, error) {
	var f batchFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return Batch{}, &ValidationError{Index: -1, Field: "batch", Reason: "malformed document", Err: err}
	}

	var errs []error
	field := func(i int, id, name string, n integer) int64 {
		if n.bad != "" {
			errs = append(errs, &ValidationError{Index: i, TaskID: id, Field: name, Reason: n.bad})
		}
		return n.val
	}

	rateLimit, start := cfg.RateLimitMs, cfg.StartTime
	if f.RateLimitMs.set {
		rateLimit = field(-1, "", "rateLimitMs", f.RateLimitMs)
	}
	if f.StartTime.set {
		start = field(-1, "", "startTime", f.StartTime)
	}

	tasks := make([]Task, 0, len(f.Tasks))
	for i, tf := range f.Tasks {
		priority := field(i, tf.ID, "priority", tf.Priority)
		if priority < math.MinInt || priority > math.MaxInt {
			errs = append(errs, &ValidationError{Index: i, TaskID: tf.ID, Field: "priority", Reason: fmt.Sprintf("%d overflows int", priority)})
		}
		tasks = append(tasks, Task{
			ID:        tf.ID,
			Priority:  int(priority),
			CreatedAt: field(i, tf.ID, "createdAt", tf.CreatedAt),
			Duration:  field(i, tf.ID, "duration", tf.Duration),
			Deadline:  field(i, tf.ID, "deadline", tf.Deadline),
		})
	}
	if len(errs) > 0 {
		return Batch{}, errors.Join(errs...)
	}

	return NewBatch(tasks, rateLimit, start)
}

// LoadBatch reads a YAML or JSON batch file.
func LoadBatch(path string, cfg Config) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read batch: %w", err)
	}
	b, err := ParseBatch(data, cfg)
	if err != nil {
		return Batch{}, fmt.Errorf("batch %s: %w", path, err)
	}
	return b, nil
}
