package cli

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ratesched/internal/logx"
	"ratesched/internal/sched"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg    sched.Config
	logger zerolog.Logger
)

// NewRootCmd creates the root cobra command for the ratesched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ratesched",
		Short: "Rate-limited priority task scheduler",
		Long: "ratesched computes deterministic, non-overlapping execution timelines for batches of " +
			"prioritised tasks under a rolling-window rate limit.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = sched.Load(flagConfig)

			level, format := cfg.LogLevel, cfg.LogFormat
			if cmd.Flags().Changed("log-level") {
				level = flagLogLevel
			}
			if cmd.Flags().Changed("log-format") {
				format = flagLogFormat
			}
			if flagDebug {
				level = "debug"
			}
			logger = logx.NewWithWriter(level, format, cmd.ErrOrStderr()).
				With().
				Str("run_id", uuid.NewString()).
				Logger()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to ratesched.yml (optional)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "Log format (console, json)")

	root.AddCommand(
		newScheduleCmd(),
		newPlayCmd(),
		newWatchCmd(),
	)

	return root
}
