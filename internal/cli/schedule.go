package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ratesched/internal/sched"
	"ratesched/internal/timeline"
)

const formatGantt = "gantt"

// batchFlags override the rate limit and start time stored in a batch file.
type batchFlags struct {
	rateLimit int64
	startTime int64
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.rateLimit, "rate-limit", 0, "Override the batch's rateLimitMs")
	cmd.Flags().Int64Var(&f.startTime, "start-time", 0, "Override the batch's startTime")
}

// computeTimeline loads the batch at path, applies flag overrides and runs
// the scheduler.
func computeTimeline(cmd *cobra.Command, path string, f batchFlags, opts ...sched.Option) (sched.Batch, []sched.ExecutionRecord, error) {
	b, err := sched.LoadBatch(path, cfg)
	if err != nil {
		return sched.Batch{}, nil, err
	}

	limit, start := b.RateLimitMs(), b.StartTime()
	if cmd.Flags().Changed("rate-limit") {
		limit = f.rateLimit
	}
	if cmd.Flags().Changed("start-time") {
		start = f.startTime
	}
	if limit != b.RateLimitMs() || start != b.StartTime() {
		if b, err = sched.NewBatch(b.Tasks(), limit, start); err != nil {
			return sched.Batch{}, nil, err
		}
	}

	opts = append([]sched.Option{sched.WithLogger(logger), sched.WithWindow(cfg.WindowMs)}, opts...)
	records := sched.New(b, opts...).Run()

	logger.Info().
		Str("batch", path).
		Int("tasks", b.Len()).
		Int64("rate_limit_ms", b.RateLimitMs()).
		Int64("start_time", b.StartTime()).
		Msg("scheduled")
	return b, records, nil
}

type scheduleFlags struct {
	batchFlags
	format string
	events string
	report bool
	width  int
}

func newScheduleCmd() *cobra.Command {
	var f scheduleFlags

	cmd := &cobra.Command{
		Use:   "schedule FILE",
		Short: "Compute the execution timeline for a batch file",
		Long: "Reads a YAML or JSON batch (rateLimitMs, startTime, tasks) and prints one " +
			"execution record per task in start order.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := cfg.Format
			if cmd.Flags().Changed("format") {
				format = f.format
			}

			var opts []sched.Option
			var events *sched.EventLog
			if f.events != "" {
				file, err := os.Create(f.events)
				if err != nil {
					return fmt.Errorf("create event log: %w", err)
				}
				defer file.Close()
				events = sched.NewEventLog(file)
				opts = append(opts, sched.WithEventHook(events.Handle))
			}

			b, records, err := computeTimeline(cmd, args[0], f.batchFlags, opts...)
			if err != nil {
				return err
			}
			if events != nil {
				if err := events.Flush(); err != nil {
					return fmt.Errorf("write event log: %w", err)
				}
			}

			return printTimeline(cmd.OutOrStdout(), format, b, records, f.report, f.width)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&f.format, "format", "o", "json", "Output format (json, yaml, csv, table, gantt)")
	cmd.Flags().StringVar(&f.events, "events", "", "Write scheduling events as CSV to this path")
	cmd.Flags().BoolVar(&f.report, "report", false, "Append a summary report")
	cmd.Flags().IntVar(&f.width, "width", 60, "Chart width for the gantt format")

	return cmd
}

func printTimeline(w io.Writer, format string, b sched.Batch, records []sched.ExecutionRecord, report bool, width int) error {
	if format == formatGantt {
		if _, err := fmt.Fprintln(w, timeline.Render(b, records, width)); err != nil {
			return err
		}
	} else if err := timeline.Write(w, format, records); err != nil {
		return err
	}

	if report {
		_, err := fmt.Fprintf(w, "\n%s", timeline.Analyze(b, records, cfg.WindowMs))
		return err
	}
	return nil
}
