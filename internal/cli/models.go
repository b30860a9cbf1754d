package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage LLM models",
	Long:  `Commands for managing and listing configured LLM models.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured models",
	Long:  `List all LLM models configured in the configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return listModels(cmd.OutOrStdout(), cfg)
	},
}

// listModels prints the configured models in name order, marking the default
func listModels(w io.Writer, cfg *config.Config) error {
	if len(cfg.Models) == 0 {
		fmt.Fprintln(w, "No models configured.")
		fmt.Fprintln(w, "\nRun 'commitcraft init' to create a configuration file.")
		return nil
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	names := make([]string, 0, len(cfg.Models))
	for name := range cfg.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	factory := llm.NewProviderFactory()
	bold.Fprintln(w, "Configured Models:")
	fmt.Fprintln(w)

	for _, name := range names {
		model := cfg.Models[name]
		if name == cfg.DefaultModel {
			green.Fprintf(w, "  ✓ %s (default)\n", name)
		} else {
			fmt.Fprintf(w, "    %s\n", name)
		}

		cyan.Fprintf(w, "      Provider: %s\n", model.Provider)
		cyan.Fprintf(w, "      Model:    %s\n", model.Model)
		if model.BaseURL != "" {
			cyan.Fprintf(w, "      Base URL: %s\n", model.BaseURL)
		}
		if provider, err := factory.Create(model); err == nil {
			cyan.Fprintf(w, "      Prompt budget: %d tokens\n", provider.TokenLimit())
		} else {
			color.New(color.FgYellow).Fprintf(w, "      Unusable: %v\n", err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	rootCmd.AddCommand(modelsCmd)
}
