package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcavanagh/docketbill/internal/model"
	"github.com/rcavanagh/docketbill/internal/refdata"
	"github.com/rcavanagh/docketbill/internal/runner"
	"github.com/rcavanagh/docketbill/internal/sink"
	"github.com/rcavanagh/docketbill/internal/source"
	"github.com/rcavanagh/docketbill/internal/store"
)

var (
	runDate    string
	dryRun     bool
	outJSON    string
	timeBudget time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one day of calendar events into billing records",
	Long: `Run processes a single calendar day:
- Refresh shared reference data, at most once per day across all callers
- Load and validate the client, vocabulary, and courtroom tables
- Fetch the day's events and classify each one
- Write one billing record per eligible event, retrying transient failures

Example:
  docketbill run
  docketbill run --date 2025-03-10 --dry-run
  docketbill run --json report.json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "day to process as YYYY-MM-DD (default: today)")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify and report without writing records")
	runCmd.Flags().StringVar(&outJSON, "json", "", "write the run report as JSON to this path")
	runCmd.Flags().DurationVar(&timeBudget, "time-budget", 0, "soft wall-clock ceiling for the run (0: config default)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if timeBudget > 0 {
		cfg.Batch.TimeBudget = timeBudget
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	day := time.Now().In(loc)
	if runDate != "" {
		day, err = time.ParseInLocation("2006-01-02", runDate, loc)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
	}

	r := buildRunner(cfg)
	r.DryRun = dryRun

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing: %s\n", day.Format("2006-01-02"))
		fmt.Fprintf(os.Stderr, "Dry run:    %v\n", dryRun)
		fmt.Fprintln(os.Stderr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.TimeBudget+time.Minute)
	defer cancel()

	report, runErr := r.ProcessDay(ctx, day)
	printReport(report)

	if outJSON != "" {
		if err := writeReportJSON(report, outJSON); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote report: %s\n", outJSON)
		}
	}

	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

// buildConfig layers viper values (config file, DOCKETBILL_* env) over the
// built-in defaults. Unmarshal only touches keys viper has seen, so every
// documented key is overridable and everything else keeps its default.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Output.Verbose = verbose

	if cfg.Source.ICSURL == "" {
		return nil, fmt.Errorf("source.ics_url is not configured (set it in the config file or DOCKETBILL_SOURCE_ICS_URL)")
	}
	if cfg.Reference.BaseURL == "" {
		return nil, fmt.Errorf("reference.base_url is not configured")
	}
	if cfg.Sink.BaseURL == "" {
		return nil, fmt.Errorf("sink.base_url is not configured")
	}
	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func buildRunner(cfg *model.Config) *runner.Runner {
	refClient := store.NewClient(cfg.Reference.BaseURL, cfg.Reference.Token, cfg.Reference.Timeout)
	loader := refdata.NewLoader(refClient, cfg.Reference.CacheTTL, cfg.Reference.MaxAttempts, cfg.Reference.InitialBackoff)
	guard := refdata.NewGuard(refClient, nil)

	src := source.NewICSSource(cfg.Source.ICSURL, cfg.Source.Timeout, cfg.Source.MaxBodyBytes)
	snk := sink.NewHTTPSink(cfg.Sink.BaseURL, cfg.Sink.Token, cfg.Sink.Timeout, cfg.Sink.RequestsPerSecond, cfg.Sink.Burst)

	return runner.New(src, snk, loader, guard, refClient, refClient, cfg)
}

func printReport(report *model.RunReport) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Docketbill Run %s\n", report.Date)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Status:     %s\n", report.Status)
	fmt.Fprintf(os.Stderr, "  Events:     %d\n", report.EventsFound)
	fmt.Fprintf(os.Stderr, "  Successful: %d\n", report.Successful)
	fmt.Fprintf(os.Stderr, "  Failed:     %d\n", report.Failed)
	fmt.Fprintf(os.Stderr, "  Skipped:    %d\n", report.Skipped)
	fmt.Fprintf(os.Stderr, "  Refresh:    %s\n", report.Refresh)
	fmt.Fprintf(os.Stderr, "  Runtime:    %.1fs\n", report.RuntimeSeconds)
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "  ✗ %s\n", e)
	}
	fmt.Fprintf(os.Stderr, "\n")
}

func writeReportJSON(report *model.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
