package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"ratesched/internal/playback"
)

func newPlayCmd() *cobra.Command {
	var (
		bf    batchFlags
		speed float64
		tick  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "Replay the computed timeline in real time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, records, err := computeTimeline(cmd, args[0], bf)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("speed") {
				speed = cfg.Speed
			}
			if !cmd.Flags().Changed("tick") {
				tick = time.Duration(cfg.TickMS) * time.Millisecond
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			p := playback.New(
				playback.WithSpeed(speed),
				playback.WithTick(tick),
				playback.WithOrigin(b.StartTime()),
				playback.WithLogger(logger),
			)
			err = p.Play(ctx, records, func(f playback.Frame) {
				switch f.Kind {
				case playback.FrameProgress:
					fmt.Fprintf(out, "%10s  %-8s %s %d/%d ms\n", f.Elapsed.Round(time.Millisecond), f.Kind, f.TaskID, f.Done, f.Total)
				default:
					fmt.Fprintf(out, "%10s  %-8s %s\n", f.Elapsed.Round(time.Millisecond), f.Kind, f.TaskID)
				}
			})
			if errors.Is(err, context.Canceled) {
				logger.Warn().Msg("playback interrupted")
				return nil
			}
			return err
		},
	}

	bf.register(cmd)
	cmd.Flags().Float64Var(&speed, "speed", 1, "Playback speed multiplier")
	cmd.Flags().DurationVar(&tick, "tick", 100*time.Millisecond, "Progress report interval")

	return cmd
}
