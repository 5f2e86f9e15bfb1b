package sched_test

import (
	"testing"

	"ratesched/internal/sched"
)

func TestSelectNext(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		now      int64
		tasks    []sched.Task
		want     string
		wantNone bool
	}{
		"nothing arrived yet": {
			now:      50,
			tasks:    []sched.Task{{ID: "a", CreatedAt: 100, Duration: 1}},
			wantNone: true,
		},
		"empty set": {
			now:      0,
			wantNone: true,
		},
		"highest priority wins": {
			now: 100,
			tasks: []sched.Task{
				{ID: "low", Priority: 1, CreatedAt: 0, Duration: 1},
				{ID: "high", Priority: 7, CreatedAt: 90, Duration: 1},
			},
			want: "high",
		},
		"unarrived high priority is ignored": {
			now: 100,
			tasks: []sched.Task{
				{ID: "low", Priority: 1, CreatedAt: 0, Duration: 1},
				{ID: "future", Priority: 9, CreatedAt: 101, Duration: 1},
			},
			want: "low",
		},
		"earlier arrival breaks priority ties": {
			now: 100,
			tasks: []sched.Task{
				{ID: "later", Priority: 3, CreatedAt: 60, Duration: 1},
				{ID: "earlier", Priority: 3, CreatedAt: 40, Duration: 1},
			},
			want: "earlier",
		},
		"submission order breaks full ties": {
			now: 100,
			tasks: []sched.Task{
				{ID: "first", Priority: 3, CreatedAt: 40, Duration: 1},
				{ID: "second", Priority: 3, CreatedAt: 40, Duration: 1},
			},
			want: "first",
		},
		"negative priorities order too": {
			now: 0,
			tasks: []sched.Task{
				{ID: "minus-five", Priority: -5, Duration: 1},
				{ID: "minus-one", Priority: -1, Duration: 1},
			},
			want: "minus-one",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := sched.SelectNext(tt.now, tt.tasks)
			if ok == tt.wantNone {
				t.Fatalf("expected found=%v, got: %v", !tt.wantNone, ok)
			}
			if ok && got.ID != tt.want {
				t.Errorf("mismatch:\n  got:  %q\n  want: %q", got.ID, tt.want)
			}
		})
	}
}

// The incremental gate and selector must agree with the pure SelectNext.
func TestPrioritySelector_MatchesSelectNext(t *testing.T) {
	t.Parallel()

	tasks := generate(300, 7)
	b, err := sched.NewBatch(tasks, 1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unscheduled := append([]sched.Task(nil), tasks...)
	for _, rec := range sched.New(b).Run() {
		// The scheduler only ever starts a task at a time where it was the
		// best arrived candidate.
		want, ok := sched.SelectNext(rec.Start, unscheduled)
		if !ok {
			t.Fatalf("no candidate at %d for %s", rec.Start, rec.ID)
		}
		if want.ID != rec.ID {
			t.Fatalf("at %d: expected %s, got: %s", rec.Start, want.ID, rec.ID)
		}
		for i, u := range unscheduled {
			if u.ID == rec.ID {
				unscheduled = append(unscheduled[:i], unscheduled[i+1:]...)
				break
			}
		}
	}
	if len(unscheduled) != 0 {
		t.Errorf("expected every task scheduled, %d left", len(unscheduled))
	}
}

func TestArrivalGate(t *testing.T) {
	t.Parallel()

	b, err := sched.NewBatch([]sched.Task{
		{ID: "c", CreatedAt: 300, Duration: 1},
		{ID: "a", CreatedAt: 100, Duration: 1},
		{ID: "b", CreatedAt: 100, Duration: 1},
	}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := sched.NewArrivalGate(b)
	if next, ok := g.NextArrival(); !ok || next != 100 {
		t.Fatalf("expected next arrival 100, got: %d (ok=%v)", next, ok)
	}

	p := sched.NewPrioritySelector()
	g.ReleaseTo(150, p, nil)
	if p.Len() != 2 || g.Len() != 1 {
		t.Fatalf("expected 2 ready and 1 pending, got: %d ready, %d pending", p.Len(), g.Len())
	}
	if next, _ := g.NextArrival(); next != 300 {
		t.Errorf("expected next arrival 300, got: %d", next)
	}
	if task, _ := p.Next(); task.ID != "a" {
		t.Errorf("expected a first, got: %q", task.ID)
	}
}
