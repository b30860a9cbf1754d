package cli

import (
	"github.com/spf13/cobra"

	"github.com/huimingz/commitcraft/internal/log"
)

var (
	// Global flags
	debugMode  bool
	configFile string
	modelName  string

	// Version info
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commitcraft",
	Short: "Commit messages from your staged diff",
	Long: `CommitCraft summarizes your staged changes, asks a language model for a
Conventional Commits message and repairs the reply until it names what actually
changed. When the model is unavailable the message is built from the diff itself.

Use "commitcraft [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		log.Error("%v", err)
		return err
	}
	return nil
}

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, commit, time string) {
	version = v
	gitCommit = commit
	buildTime = time
}

// GetVersionInfo returns version information
func GetVersionInfo() (string, string, string) {
	return version, gitCommit, buildTime
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode for verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./.commitcraft.yaml, then ~/.commitcraft.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model to use (overrides config and COMMITCRAFT_MODEL)")
}
