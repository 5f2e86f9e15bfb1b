package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		bf     batchFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Recompute the timeline whenever the batch file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !cmd.Flags().Changed("format") {
				format = cfg.Format
			}

			out := cmd.OutOrStdout()
			render := func() {
				b, records, err := computeTimeline(cmd, path, bf)
				if err != nil {
					// keep watching; the next save may fix it
					logger.Error().Err(err).Str("batch", path).Msg("schedule failed")
					return
				}
				if err := printTimeline(out, format, b, records, false, 60); err != nil {
					logger.Error().Err(err).Msg("print timeline")
				}
			}

			w, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer w.Close()

			dir, file := filepath.Dir(path), filepath.Base(path)
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			render()

			// debounce to avoid partial writes
			var pending <-chan time.Time
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-w.Events:
					if !ok {
						return nil
					}
					if filepath.Base(ev.Name) == file && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
						pending = time.After(250 * time.Millisecond)
					}
				case <-pending:
					pending = nil
					logger.Debug().Str("batch", path).Msg("batch changed")
					render()
				case err, ok := <-w.Errors:
					if !ok {
						return nil
					}
					logger.Warn().Err(err).Msg("watcher error")
				}
			}
		},
	}

	bf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "json", "Output format (json, yaml, csv, table, gantt)")

	return cmd
}
