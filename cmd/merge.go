package cmd

import (
	"fmt"
	"os"

	"curator/config"
	"curator/dataset"
	"curator/jobs"

	"github.com/spf13/cobra"
)

var (
	mergeSystemPrompt string
	mergeLabelCount   int
)

var mergeCmd = &cobra.Command{
	Use:   "merge [train] [extra] [output]",
	Short: "Merge generated examples into a Banking77 training set",
	Long: `Append the rows of extra to train and write the result. Extra rows may be
conversations or {request, response} evaluation records; both get the
classifier system prompt. Rows whose answer is not a single valid label are
dropped.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		train, _, err := dataset.ReadLines[dataset.Conversation](args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		extra, _, err := dataset.ReadLines[dataset.TrainingRow](args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		systemPrompt, err := jobs.LoadClassifierPrompt(mergeSystemPrompt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		merged, stats := dataset.MergeTraining(train, extra, systemPrompt, mergeLabelCount-1)

		fmt.Printf("Training rows kept:     %d (filtered %d)\n", stats.Train, stats.TrainFiltered)
		fmt.Printf("Extra rows written:     %d of %d (filtered %d, skipped %d)\n",
			stats.ExtraWritten, stats.Extra, stats.ExtraFiltered, stats.Skipped)
		fmt.Printf("Converted/system added: %d\n", stats.Converted)

		if err := dataset.WriteLines(args[2], merged); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %d conversations to %s\n", len(merged), args[2])
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeSystemPrompt, "system-prompt", "", "Classifier system prompt file (defaults to the built-in Banking77 prompt)")
	mergeCmd.Flags().IntVar(&mergeLabelCount, "label-count", config.DefaultLabelCount, "Number of intent labels")
}
