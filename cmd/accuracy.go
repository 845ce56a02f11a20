package cmd

import (
	"fmt"
	"os"

	"curator/dataset"
	"curator/extract"
	"curator/streamers/cli"

	"github.com/spf13/cobra"
)

var (
	accuracyThinking bool
	accuracyShow     int
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy [inference_file]",
	Short: "Measure Banking77 classification accuracy",
	Long: `Score each row's final assistant message against metadata.label. Rows whose
answer carries no label count as incorrect. Use --thinking for reasoning models
that answer after a </think> block.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rows, warnings, err := dataset.ReadLines[dataset.Conversation](args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, w := range warnings {
			logger.Warn("skipping line", "error", w.Error())
		}

		strategy := extract.FirstInteger
		if accuracyThinking {
			strategy = extract.ThinkingLabel
		}
		acc := extract.MeasureAccuracy(rows, strategy)

		fmt.Printf("%sAccuracy:%s %.2f%% (%d/%d)\n", cli.ColorBold, cli.ColorReset, acc.Accuracy*100, acc.Correct, acc.Total)
		fmt.Printf("Incorrect: %d\n", len(acc.Incorrect))
		fmt.Printf("Unscored:  %d\n", len(acc.Errors))

		if accuracyShow == 0 {
			return
		}
		for i, m := range acc.Incorrect {
			if i == accuracyShow {
				fmt.Printf("  ... %d more\n", len(acc.Incorrect)-i)
				break
			}
			fmt.Printf("  row %d: predicted %d, truth %d\n", m.Index, m.Predicted, m.Truth)
		}
		for i, e := range acc.Errors {
			if i == accuracyShow {
				fmt.Printf("  ... %d more\n", len(acc.Errors)-i)
				break
			}
			fmt.Printf("  %srow %d: %s%s\n", cli.ColorRed, e.Index, e.Reason, cli.ColorReset)
		}
	},
}

func init() {
	rootCmd.AddCommand(accuracyCmd)
	accuracyCmd.Flags().BoolVar(&accuracyThinking, "thinking", false, "Extract the label after the model's reasoning")
	accuracyCmd.Flags().IntVar(&accuracyShow, "show", 20, "Number of incorrect and unscored rows to list")
}
