package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcavanagh/docketbill/internal/log"
	"github.com/rcavanagh/docketbill/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docketbill",
	Short: "Docketbill - calendar events to billing records",
	Long: `Docketbill reads one day of calendar events, classifies each one against
the firm's reference data (client list, courtroom assignments, activity
vocabulary), renders a billing description, and writes one record per event
to the downstream record store.

Individual failures never sink the batch: items are isolated, transient
errors are retried with backoff, and processing degrades gracefully under a
failure quota and a wall-clock budget.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("docketbill v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.docketbill/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the .env file, the config file, and DOCKETBILL_* env vars.
func initConfig() {
	if verbose {
		log.SetLevel(log.LevelDebug)
	}

	// API tokens typically live in .env during development.
	if err := godotenv.Load(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Loaded .env")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.docketbill")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindConfigDefaults()

	viper.SetEnvPrefix("DOCKETBILL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindConfigDefaults registers every documented key with viper so env-only
// overrides are visible to Unmarshal. AutomaticEnv resolves only keys viper
// already knows about.
func bindConfigDefaults() {
	d := model.DefaultConfig()

	viper.SetDefault("timezone", d.Timezone)
	viper.SetDefault("source.ics_url", d.Source.ICSURL)
	viper.SetDefault("source.timeout", d.Source.Timeout)
	viper.SetDefault("source.max_body_bytes", d.Source.MaxBodyBytes)
	viper.SetDefault("reference.base_url", d.Reference.BaseURL)
	viper.SetDefault("reference.token", d.Reference.Token)
	viper.SetDefault("reference.timeout", d.Reference.Timeout)
	viper.SetDefault("reference.cache_ttl", d.Reference.CacheTTL)
	viper.SetDefault("reference.max_attempts", d.Reference.MaxAttempts)
	viper.SetDefault("reference.initial_backoff", d.Reference.InitialBackoff)
	viper.SetDefault("sink.base_url", d.Sink.BaseURL)
	viper.SetDefault("sink.token", d.Sink.Token)
	viper.SetDefault("sink.timeout", d.Sink.Timeout)
	viper.SetDefault("sink.max_attempts", d.Sink.MaxAttempts)
	viper.SetDefault("sink.initial_backoff", d.Sink.InitialBackoff)
	viper.SetDefault("sink.requests_per_second", d.Sink.RequestsPerSecond)
	viper.SetDefault("sink.burst", d.Sink.Burst)
	viper.SetDefault("sink.max_field_len", d.Sink.MaxFieldLen)
	viper.SetDefault("batch.failure_quota_fraction", d.Batch.FailureQuotaFraction)
	viper.SetDefault("batch.time_budget", d.Batch.TimeBudget)
}
