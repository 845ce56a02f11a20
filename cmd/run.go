package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"curator/config"
	"curator/jobs"
	"curator/store"
	"curator/streamers"
	"curator/streamers/cli"
	"curator/wsbridge"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	runDebugMode bool
)

var runCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Run a job",
	Long: `Execute a job by name. Every input item becomes one LLM request; requests
run concurrently up to the job's max_workers. Items that fail are reported and
written to the job's failures file without stopping the batch.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runJob(ctx, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			os.Exit(1)
		}
	},
}

func runJob(ctx context.Context, jobName string) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	job, err := cfg.GetJob(jobName)
	if err != nil {
		return err
	}

	stores, err := store.NewBundle(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer stores.Close()

	handlers := streamers.Multi{cli.NewBatchHandler(job.ReportsFailures())}
	if cfg.Progress != nil {
		client, err := wsbridge.Dial(ctx, cfg.Progress.WebsocketURL, logger)
		if err != nil {
			logger.Warn("progress publishing disabled", "error", err)
		} else {
			defer client.Close()
			handlers = append(handlers, wsbridge.NewPublisher(client))
		}
	}

	opts := []jobs.RunnerOption{
		jobs.WithStore(stores.Runs),
		jobs.WithHandler(handlers),
		jobs.WithLogger(logger),
	}
	if runDebugMode {
		debugDir := filepath.Join("debug", fmt.Sprintf("%s_%s", jobName, time.Now().Format("20060102_150405")))
		opts = append(opts, jobs.WithCallLog(debugDir))
		fmt.Printf("Debug mode enabled. Writing to: %s\n", debugDir)
	}

	runner, err := jobs.NewRunner(ctx, cfg, jobName, opts...)
	if err != nil {
		return err
	}
	defer runner.Close()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	printReport(report)

	if ctx.Err() != nil {
		return fmt.Errorf("job interrupted after %d of %d items", report.Succeeded, report.Total)
	}
	return nil
}

func printReport(r *jobs.Report) {
	fmt.Printf("\n%sOutput:%s   %s (%d records)\n", cli.ColorBold, cli.ColorReset, r.Output, r.Written)
	if r.Failures != "" {
		fmt.Printf("%sFailures:%s %s (%d items)\n", cli.ColorBold, cli.ColorReset, r.Failures, r.Failed)
	}
	fmt.Printf("%sTokens:%s   %d in / %d out\n", cli.ColorBold, cli.ColorReset, r.Usage.InputTokens, r.Usage.OutputTokens)
	if r.CostKnown {
		fmt.Printf("%sCost:%s     $%.4f\n", cli.ColorBold, cli.ColorReset, r.CostUSD)
	} else {
		fmt.Printf("%sCost:%s     unknown (no pricing for model)\n", cli.ColorBold, cli.ColorReset)
	}
	fmt.Printf("%sRun:%s      %s (%s)\n", cli.ColorBold, cli.ColorReset, r.RunID, r.Duration.Round(time.Millisecond))
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&configPath, "config", "c", ".", "Path to config file or directory")
	runCmd.Flags().BoolVarP(&runDebugMode, "debug", "d", false, "Write one JSONL line per LLM call under ./debug")
}
