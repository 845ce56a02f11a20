package cmd

import (
	"fmt"
	"os"

	"curator/config"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify that the configuration is valid",
	Long:  `Verify parses and validates the HCL configuration files. Path can be a file or directory.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var warnings []string

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Found %d model(s)\n", len(cfg.Models))
		for _, m := range cfg.Models {
			fmt.Printf("  - %s (provider: %s, models: %v)\n", m.Name, m.Provider, m.AllowedModels)
			if m.APIKey == "" {
				warnings = append(warnings, fmt.Sprintf("model '%s' has an empty api_key", m.Name))
			}
		}

		fmt.Printf("Found %d variable(s)\n", len(cfg.Variables))
		for _, v := range cfg.Variables {
			resolved := ""
			if val, ok := cfg.ResolvedVars[v.Name]; ok && !val.IsNull() {
				resolved = val.AsString()
			}
			if resolved == "" {
				warnings = append(warnings, fmt.Sprintf("variable '%s' has no default and no value set", v.Name))
			}
			switch {
			case v.Secret && resolved != "":
				fmt.Printf("  - %s (secret, set)\n", v.Name)
			case v.Secret:
				fmt.Printf("  - %s (secret, not set)\n", v.Name)
			default:
				fmt.Printf("  - %s = %q\n", v.Name, resolved)
			}
		}

		if cfg.Storage != nil {
			switch cfg.Storage.Backend {
			case "sqlite":
				fmt.Printf("Storage: sqlite (%s)\n", cfg.Storage.Path)
			default:
				fmt.Printf("Storage: %s\n", cfg.Storage.Backend)
			}
		} else {
			fmt.Printf("Storage: memory (runs are not kept)\n")
		}
		if cfg.Progress != nil {
			fmt.Printf("Progress: %s\n", cfg.Progress.WebsocketURL)
		}

		fmt.Printf("Found %d job(s)\n", len(cfg.Jobs))
		for _, j := range cfg.Jobs {
			fmt.Printf("  - %s (kind: %s, model: %s, workers: %d, temperature: %g)\n",
				j.Name, j.Kind, j.Model, j.Workers(), j.Temp())
			if j.Kind == config.JobGenerateHardExamples {
				fmt.Printf("      • %d label pair(s) -> %s\n", len(j.LabelPairs), j.Output)
			} else {
				fmt.Printf("      • %s -> %s\n", j.Input, j.Output)
				if _, err := os.Stat(j.Input); err != nil {
					warnings = append(warnings, fmt.Sprintf("job '%s': input %s is not readable", j.Name, j.Input))
				}
			}
		}

		if len(warnings) > 0 {
			fmt.Printf("\nWarnings:\n")
			for _, w := range warnings {
				fmt.Printf("  - %s\n", w)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
