package cmd

import (
	"fmt"
	"os"

	"curator/dataset"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert chat-format rows into request records",
	Long: `Join each row's system prompt and user query into a single request and keep
the assistant answer as the expected label:

  {"content": {"request": "<system>\n\n<user>"}, "metadata": {"label": "<assistant>"}}

Rows without a system or user message are skipped.`,
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

		records, skipped := dataset.ToRequestFormat(rows)
		for _, s := range skipped {
			logger.Warn("skipping row", "index", s.Index, "reason", s.Reason)
		}

		if err := dataset.WriteLines(args[1], records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Converted %d of %d rows (%d skipped) to %s\n", len(records), len(rows), len(skipped), args[1])
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
