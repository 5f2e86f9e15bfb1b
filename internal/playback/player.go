// Package playback replays a computed timeline in wall-clock time.
//
// The scheduler itself is a pure computation; Player is the external driver
// that maps each record's simulated start and end onto real time, reports
// progress while a task "runs", and stops when its context is cancelled.
package playback

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ratesched/internal/sched"
)

// FrameKind is the kind of playback frame.
type FrameKind int

const (
	FrameStart FrameKind = iota
	FrameProgress
	FrameFinish
)

func (k FrameKind) String() string {
	switch k {
	case FrameStart:
		return "Start"
	case FrameProgress:
		return "Progress"
	case FrameFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}

// Frame reports playback state. Done and Total are simulated milliseconds.
type Frame struct {
	Elapsed time.Duration // wall time since Play began
	Kind    FrameKind
	TaskID  string
	Done    int64
	Total   int64
}

// Option configures a Player.
type Option func(*Player)

// WithSpeed plays the timeline x times faster than real time.
func WithSpeed(x float64) Option {
	return func(p *Player) {
		if x > 0 {
			p.speed = x
		}
	}
}

// WithTick sets how often progress frames are emitted.
func WithTick(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.tick = d
		}
	}
}

// WithOrigin maps simulated time ms onto the moment Play begins. By default
// the first record starts immediately.
func WithOrigin(ms int64) Option {
	return func(p *Player) {
		p.origin = ms
		p.hasOrigin = true
	}
}

// WithLogger sets the logger for playback progress.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.log = l }
}

// Player drives records in real time. It is safe to reuse, but not to call
// Play concurrently on the same Player with shared callbacks.
type Player struct {
	speed     float64
	tick      time.Duration
	origin    int64
	hasOrigin bool
	log       zerolog.Logger
}

// New returns a Player at real-time speed with a 100ms tick.
func New(opts ...Option) *Player {
	p := &Player{
		speed: 1,
		tick:  100 * time.Millisecond,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) scale(ms int64) time.Duration {
	return time.Duration(float64(ms) * float64(time.Millisecond) / p.speed)
}

func (p *Player) unscale(d time.Duration) int64 {
	return int64(float64(d) / float64(time.Millisecond) * p.speed)
}

// Play blocks until every record has finished or ctx is done, in which case
// it returns ctx.Err(). onFrame may be nil.
func (p *Player) Play(ctx context.Context, records []sched.ExecutionRecord, onFrame func(Frame)) error {
	if len(records) == 0 {
		return nil
	}

	origin := records[0].Start
	if p.hasOrigin {
		origin = p.origin
	}

	clock := NewTickClock(1)
	clock.Start(p.tick)
	defer clock.Stop()

	begin := time.Now()
	emit := func(kind FrameKind, rec sched.ExecutionRecord, done int64) {
		if onFrame == nil {
			return
		}
		onFrame(Frame{
			Elapsed: time.Since(begin),
			Kind:    kind,
			TaskID:  rec.ID,
			Done:    done,
			Total:   rec.Duration(),
		})
	}

	for _, rec := range records {
		if err := sleepUntil(ctx, begin.Add(p.scale(rec.Start-origin))); err != nil {
			return err
		}

		// drop a tick left over from the gap before this task
		select {
		case <-clock.Ch:
		default:
		}

		started := time.Now()
		p.log.Debug().Str("task", rec.ID).Int64("start", rec.Start).Msg("playing")
		emit(FrameStart, rec, 0)

		done := make(chan error, 1)
		go func() { done <- SleepWork(p.scale(rec.Duration()))(ctx) }()

	running:
		for {
			select {
			case err := <-done:
				if err != nil {
					return err
				}
				emit(FrameFinish, rec, rec.Duration())
				break running
			case <-clock.Ch:
				emit(FrameProgress, rec, min(rec.Duration(), p.unscale(time.Since(started))))
			}
		}
	}
	return nil
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
