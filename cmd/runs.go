package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"curator/config"
	"curator/store"
	"curator/streamers/cli"

	"github.com/spf13/cobra"
)

var (
	runsConfigPath string
	runsLimit      int
	runsOffset     int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded job runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		stores := openStores()
		defer stores.Close()

		runs, total, err := stores.Runs.ListRuns(runsLimit, runsOffset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if total == 0 {
			fmt.Println("No runs recorded")
			return
		}
		for _, r := range runs {
			fmt.Printf("%s  %-10s %-28s %-18s %d/%d ok  %s\n",
				r.ID, r.Status, r.JobName, r.Model, r.Succeeded, r.Total, r.StartedAt.Format(time.DateTime))
		}
		if shown := runsOffset + len(runs); shown < total {
			fmt.Printf("%s... %d more (use --offset)%s\n", cli.ColorGray, total-shown, cli.ColorReset)
		}
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run_id]",
	Short: "Show a run and its failed items",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stores := openStores()
		defer stores.Close()

		run, err := stores.Runs.GetRun(args[0])
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Error: run '%s' not found\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%sRun %s%s\n", cli.ColorBold, run.ID, cli.ColorReset)
		fmt.Printf("  Job:      %s (%s)\n", run.JobName, run.Kind)
		fmt.Printf("  Model:    %s\n", run.Model)
		fmt.Printf("  Status:   %s\n", run.Status)
		fmt.Printf("  Items:    %d total, %d succeeded, %d failed (%d workers)\n", run.Total, run.Succeeded, run.Failed, run.Workers)
		fmt.Printf("  Tokens:   %d in / %d out ($%.4f)\n", run.InputTokens, run.OutputTokens, run.CostUSD)
		fmt.Printf("  Started:  %s\n", run.StartedAt.Format(time.DateTime))
		if run.FinishedAt != nil {
			fmt.Printf("  Finished: %s (%s)\n", run.FinishedAt.Format(time.DateTime), run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
		}
		if run.Error != nil {
			fmt.Printf("  Error:    %s\n", *run.Error)
		}

		outcomes, err := stores.Runs.GetOutcomes(run.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, o := range outcomes {
			if !o.Succeeded {
				fmt.Printf("  %sitem %d: %s%s\n", cli.ColorRed, o.Index, o.Reason, cli.ColorReset)
			}
		}
	},
}

func openStores() *store.Bundle {
	cfg, err := config.LoadAndValidate(runsConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage == nil || cfg.Storage.Backend == "memory" {
		fmt.Fprintln(os.Stderr, "Error: no persistent storage block in config. Add storage { backend = \"sqlite\" } to keep runs.")
		os.Exit(1)
	}
	stores, err := store.NewBundle(context.Background(), cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	return stores
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.PersistentFlags().StringVarP(&runsConfigPath, "config", "c", ".", "Path to config file or directory")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")
	runsListCmd.Flags().IntVar(&runsOffset, "offset", 0, "Runs to skip")
}
