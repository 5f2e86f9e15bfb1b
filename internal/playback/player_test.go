package playback_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"testing/synctest"
	"time"

	"ratesched/internal/playback"
	"ratesched/internal/sched"
)

var records = []sched.ExecutionRecord{
	{ID: "A", Start: 0, End: 400},
	{ID: "C", Start: 400, End: 900},
	{ID: "B", Start: 1000, End: 1300},
}

type mark struct {
	kind    playback.FrameKind
	id      string
	elapsed time.Duration
}

func TestPlayer_Play(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		speed float64
		want  []mark
	}{
		"real time": {
			speed: 1,
			want: []mark{
				{playback.FrameStart, "A", 0},
				{playback.FrameFinish, "A", 400 * time.Millisecond},
				{playback.FrameStart, "C", 400 * time.Millisecond},
				{playback.FrameFinish, "C", 900 * time.Millisecond},
				{playback.FrameStart, "B", 1000 * time.Millisecond},
				{playback.FrameFinish, "B", 1300 * time.Millisecond},
			},
		},
		"double speed": {
			speed: 2,
			want: []mark{
				{playback.FrameStart, "A", 0},
				{playback.FrameFinish, "A", 200 * time.Millisecond},
				{playback.FrameStart, "C", 200 * time.Millisecond},
				{playback.FrameFinish, "C", 450 * time.Millisecond},
				{playback.FrameStart, "B", 500 * time.Millisecond},
				{playback.FrameFinish, "B", 650 * time.Millisecond},
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			synctest.Test(t, func(t *testing.T) {
				p := playback.New(playback.WithSpeed(tt.speed), playback.WithTick(50*time.Millisecond))

				var got []mark
				var progress int
				err := p.Play(context.Background(), records, func(f playback.Frame) {
					if f.Kind == playback.FrameProgress {
						progress++
						if f.Done < 0 || f.Done > f.Total {
							t.Errorf("progress out of range: %+v", f)
						}
						return
					}
					got = append(got, mark{f.Kind, f.TaskID, f.Elapsed})
				})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !slices.Equal(got, tt.want) {
					t.Errorf("mismatch:\n  got:  %v\n  want: %v", got, tt.want)
				}
				if progress == 0 {
					t.Error("expected progress frames")
				}
			})
		})
	}
}

func TestPlayer_Origin(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		p := playback.New(playback.WithOrigin(-500))

		var first time.Duration = -1
		err := p.Play(context.Background(), records[:1], func(f playback.Frame) {
			if f.Kind == playback.FrameStart {
				first = f.Elapsed
			}
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != 500*time.Millisecond {
			t.Errorf("expected first start at 500ms, got: %v", first)
		}
	})
}

func TestPlayer_Cancel(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 950*time.Millisecond)
		defer cancel()

		var finished []string
		err := playback.New().Play(ctx, records, func(f playback.Frame) {
			if f.Kind == playback.FrameFinish {
				finished = append(finished, f.TaskID)
			}
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got: %v", err)
		}
		if !slices.Equal(finished, []string{"A", "C"}) {
			t.Errorf("mismatch:\n  got:  %v\n  want: %v", finished, []string{"A", "C"})
		}
	})
}

func TestPlayer_Empty(t *testing.T) {
	t.Parallel()

	if err := playback.New().Play(context.Background(), nil, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTickClock(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		c := playback.NewTickClock(1)
		c.Start(10 * time.Millisecond)

		time.Sleep(55 * time.Millisecond)
		synctest.Wait()
		c.Stop()

		if got := c.Count(); got != 5 {
			t.Errorf("expected 5 ticks, got: %d", got)
		}
	})
}

func TestSleepWork(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		work := playback.SleepWork(time.Second)

		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := work(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got: %v", err)
		}
		if elapsed := time.Since(start); elapsed != 100*time.Millisecond {
			t.Errorf("expected to stop after 100ms, got: %v", elapsed)
		}
	})
}
