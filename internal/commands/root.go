package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ppiankov/maciespectre/internal/config"
	"github.com/ppiankov/maciespectre/internal/logging"
)

var (
	version string
	commit  string
	date    string
	cfg     config.Config
	logger  = slog.Default()
	runID   string
)

var globalFlags struct {
	verbose     bool
	quiet       bool
	awsProfile  string
	region      string
	concurrency int
	rps         float64
	timeout     time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "maciespectre",
	Short: "MacieSpectre - Amazon Macie automation across accounts and regions",
	Long: `MacieSpectre drives Amazon Macie for an AWS Organization from its
administrator account: it enrolls member accounts, creates classification
jobs, estimates scan cost, reports usage and exports sensitive-data findings
in every enabled region.

Mutating commands run as a dry run unless --commit is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, runID = logging.New(os.Stderr, globalFlags.verbose, globalFlags.quiet)
		loaded, err := config.Load(".")
		if err != nil {
			logger.Warn("Failed to load config file", "error", err)
		} else {
			cfg = loaded
		}
		applyGlobalConfig(cmd)
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			color.NoColor = true
		}
		logger.Debug("Starting run", slog.String("command", cmd.Name()), slog.String("run_id", runID))
		return nil
	},
}

// Execute runs the root command with injected build info.
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&globalFlags.verbose, "verbose", false, "Enable verbose logging")
	pf.BoolVar(&globalFlags.quiet, "quiet", false, "Only log errors")
	pf.StringVar(&globalFlags.awsProfile, "aws-profile", "", "AWS profile to use")
	pf.StringVar(&globalFlags.region, "region", "", "Only operate in this region (default: every enabled region)")
	pf.IntVar(&globalFlags.concurrency, "concurrency", 1, "Regions processed in parallel")
	pf.Float64Var(&globalFlags.rps, "rps", 0, "Max Macie API calls per second per region (0 means unlimited)")
	pf.DurationVar(&globalFlags.timeout, "timeout", 0, "Total operation timeout (e.g. 5m, 30s). 0 means no timeout")

	rootCmd.AddCommand(createJobCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(findingsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(versionCmd)
}

// applyGlobalConfig fills persistent flags the user did not set from the
// config file.
func applyGlobalConfig(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("aws-profile") && cfg.Profile != "" {
		globalFlags.awsProfile = cfg.Profile
	}
	if !flags.Changed("region") && cfg.Region != "" {
		globalFlags.region = cfg.Region
	}
	if !flags.Changed("concurrency") && cfg.Concurrency > 0 {
		globalFlags.concurrency = cfg.Concurrency
	}
	if !flags.Changed("rps") && cfg.RPS > 0 {
		globalFlags.rps = cfg.RPS
	}
	if !flags.Changed("timeout") {
		if d := cfg.TimeoutDuration(); d > 0 {
			globalFlags.timeout = d
		}
	}
}
