package cmd

import (
	"fmt"
	"os"

	"curator/dataset"

	"github.com/spf13/cobra"
)

var cleanDryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean [input] [output]",
	Short: "Strip LaTeX placeholders from assistant abstracts",
	Long: `Remove @xmath, @xcite and similar placeholders left by arXiv preprocessing from
every assistant message. Conversations whose abstract is empty after cleaning
are dropped.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		rows, warnings, err := dataset.ReadLines[dataset.Conversation](args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, w := range warnings {
			logger.Warn("skipping line", "error", w.Error())
		}

		cleaned, stats := dataset.CleanConversations(rows)

		fmt.Printf("Conversations:        %d\n", stats.Total)
		fmt.Printf("Abstracts cleaned:    %d\n", stats.Cleaned)
		fmt.Printf("Placeholders removed: %d\n", stats.Removed)
		fmt.Printf("Dropped (empty):      %d\n", stats.SkippedEmpty)
		fmt.Printf("Placeholders left:    %d\n", stats.Remaining)

		if cleanDryRun {
			fmt.Println("\nDry run: nothing written")
			return
		}
		if err := dataset.WriteLines(args[1], cleaned); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %d conversations to %s\n", len(cleaned), args[1])
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report statistics without writing output")
}
