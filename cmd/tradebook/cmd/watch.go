package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/pipeline"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-import the fills on a cron schedule",
	Long: `Rebuild and journal everything from the fill files on a schedule until
interrupted. The schedule is a standard 5-field cron expression evaluated
in the market calendar timezone.

Examples:
  tradebook watch
  tradebook watch --schedule "*/1 9-16 * * 1-5" --now`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchSchedule string
	watchNow      bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchSchedule, "schedule", "s", "", "cron schedule (overrides config)")
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "also import once at startup")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchSchedule != "" {
		cfg.Watch.Schedule = watchSchedule
	}
	cal, err := cfg.Calendar.Market()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := func() { reimport(ctx, cfg) }

	c := cron.New(
		cron.WithLocation(cal.Location()),
		cron.WithChain(watchChain(log.Logger).Then),
	)
	if _, err := c.AddFunc(cfg.Watch.Schedule, task); err != nil {
		return fmt.Errorf("schedule %q: %w", cfg.Watch.Schedule, err)
	}

	if watchNow {
		task()
	}

	c.Start()
	log.Info().Str("schedule", cfg.Watch.Schedule).Str("tz", cal.Location().String()).Msg("watching")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("watch stopped")
	return nil
}

// reimport runs one scheduled import. Errors are logged; the schedule keeps
// running.
func reimport(ctx context.Context, cfg *config.Config) {
	r, b, err := recompute(cfg)
	if err != nil {
		log.Error().Err(err).Msg("recompute failed")
		return
	}
	pipeline.LogWarnings(log.Logger, r.Warnings)

	run, err := persist(ctx, cfg, r, b)
	if err != nil {
		log.Error().Err(err).Msg("journal failed")
		return
	}
	pipeline.LogSummary(log.Logger.With().Str("run_id", run.RunID).Logger(), r)
}

// watchChain skips a tick while the previous import is still running, so
// two imports never write the journal at once.
func watchChain(l zerolog.Logger) cron.Chain {
	return cron.NewChain(cron.Recover(cronLogger{l}), cron.SkipIfStillRunning(cronLogger{l}))
}

// cronLogger sends cron's own messages to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Info().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
