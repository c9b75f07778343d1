package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/rcavanagh/docketbill/internal/log"
)

var cronExpr string

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily processing on a cron schedule",
	Long: `Schedule keeps the process alive and runs the pipeline for the current
day on the given cron expression. Each firing behaves exactly like an
invocation of "docketbill run" for that day.

Example:
  docketbill schedule --cron "0 18 * * 1-5"`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&cronExpr, "cron", "0 18 * * *", "cron expression for the daily run")
	scheduleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify and report without writing records")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cronExpr, func() {
		r := buildRunner(cfg)
		r.DryRun = dryRun

		day := time.Now().In(loc)
		log.Info("scheduled run starting", "date", day.Format("2006-01-02"))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.TimeBudget+time.Minute)
		defer cancel()

		report, runErr := r.ProcessDay(ctx, day)
		if runErr != nil {
			log.Error("scheduled run failed", runErr)
			return
		}
		log.Info("scheduled run finished",
			"status", report.Status,
			"successful", report.Successful,
			"failed", report.Failed,
			"skipped", report.Skipped)
	})
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	fmt.Fprintf(os.Stderr, "Scheduling daily run: %q (%s)\n", cronExpr, loc)
	c.Start()
	defer c.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Fprintln(os.Stderr, "Shutting down")
	return nil
}
