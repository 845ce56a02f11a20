package cmd

import (
	"fmt"
	"os"

	"curator/dataset"
	"curator/streamers/cli"

	"github.com/spf13/cobra"
)

var (
	showIndex    int
	showRole     string
	showMaxChars int
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Render one message of a JSONL conversation file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rows, _, err := dataset.ReadLines[dataset.Conversation](args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if showIndex < 0 || showIndex >= len(rows) {
			fmt.Fprintf(os.Stderr, "Error: index %d out of range (file has %d rows)\n", showIndex, len(rows))
			os.Exit(1)
		}

		content, ok := rows[showIndex].Content(showRole)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: row %d has no %s message\n", showIndex, showRole)
			os.Exit(1)
		}

		err = cli.RenderMessage(os.Stdout, cli.MessageView{
			Index:    showIndex,
			Role:     showRole,
			Content:  content,
			MaxChars: showMaxChars,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showIndex, "index", "n", 0, "Row index")
	showCmd.Flags().StringVarP(&showRole, "role", "r", dataset.RoleAssistant, "Message role to show")
	showCmd.Flags().IntVar(&showMaxChars, "max-chars", 0, "Cut the message after this many characters (0 shows all)")
}
