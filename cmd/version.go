package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Long = fmt.Sprintf(`Curator %s

HCL-configured batch jobs for curating LLM training and evaluation data.

Define models and jobs in HCL, then fan the job's requests out across a
bounded worker pool. Failed items are reported without aborting the batch.

Get started:
  curator verify <path>      Validate your configuration
  curator run <job>          Run a job
  curator accuracy <file>    Score a Banking77 inference file
  curator runs list          Inspect past runs`, Version)
}
