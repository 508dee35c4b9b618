package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"viralreporter/pkg/config"
	"viralreporter/pkg/logger"
	"viralreporter/pkg/reporter"
)

var (
	// Run command flags
	outputDir    string
	sessionDir   string
	headless     bool
	rateLimit    int
	resumeRun    bool
	forceRestart bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <tasks.yaml>",
	Short: "Run every search task in a YAML task file",
	Long: `Run a search job described by a YAML task file.

Each task names a platform, a keyword, and the post URLs to look for among
the top search results. Tasks run in order; a failing task is recorded in
the report and the run carries on with the next one.

Instagram searches need a logged-in session. The first run opens a browser
window for you to log in; the session is saved and reused afterwards.`,
	Example: `  # Run a job
  viralreporter run campaign.yaml

  # Write screenshots and the report to a specific directory
  viralreporter run campaign.yaml --output ./evidence

  # Watch the browser work
  viralreporter run campaign.yaml --headless=false

  # Resume an interrupted run
  viralreporter run campaign.yaml --resume

  # Ignore a previous checkpoint and start over
  viralreporter run campaign.yaml --force-restart`,
	Args: cobra.ExactArgs(1),
	RunE: runJob,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for screenshots and the report")
	runCmd.Flags().StringVar(&sessionDir, "session-dir", "", "directory holding saved login sessions")
	runCmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a visible window")
	runCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "searches per minute")
	runCmd.Flags().BoolVar(&resumeRun, "resume", false, "resume from last checkpoint")
	runCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "force restart, ignoring existing checkpoint")
}

func runJob(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	job, err := reporter.LoadJob(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := reporter.New(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Start(ctx); err != nil {
		return err
	}

	if err := r.Run(ctx, job, reporter.Options{
		Resume:       resumeRun,
		ForceRestart: forceRestart,
	}); err != nil {
		return err
	}

	found, notFound, failed, _ := job.Counts()
	fmt.Printf("\nDone: %d found, %d not found, %d failed\n", found, notFound, failed)
	fmt.Printf("Report: %s\n", cfg.Output.BaseDirectory)
	return nil
}

// loadConfig builds the effective configuration from defaults, config file,
// environment, and whichever flags were set on the command line
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if sessionDir != "" {
		flags["session-dir"] = sessionDir
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	return config.Load(configFile, flags)
}
