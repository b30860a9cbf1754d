package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitcraft/internal/config"
)

const defaultConfigTemplate = `# CommitCraft Configuration File

# Language of generated messages (en, zh)
language: en

# Default model to use (must match a key in the models section)
default_model: ollama

models:
  # Local model through Ollama's OpenAI-compatible endpoint
  ollama:
    provider: ollama
    model: qwen2.5-coder:7b
    # base_url: http://localhost:11434/v1  # optional, uses default

  # Deepseek
  # deepseek:
  #   provider: deepseek
  #   api_key: ${DEEPSEEK_API_KEY}
  #   model: deepseek-chat

  # OpenAI
  # openai:
  #   provider: openai
  #   api_key: ${OPENAI_API_KEY}
  #   model: gpt-4o-mini

  # Google Gemini
  # gemini:
  #   provider: gemini
  #   api_key: ${GOOGLE_API_KEY}
  #   model: gemini-2.0-flash

  # xAI Grok
  # grok:
  #   provider: grok
  #   api_key: ${XAI_API_KEY}
  #   model: grok-beta

commit:
  style: imperative        # imperative | sentence
  # prefix: "[PROJ-123] "
  # suffix: " (#42)"
  include_body: false
  min_subject_length: 0    # 0 disables the lower bound
  max_subject_length: 100
  length_threshold: 0      # changed lines before length bounds apply, 0 = always
  min_body_lines: 8
  max_body_lines: 12
  stream: true
  # context: "Mention the ticket id when the branch has one"
  # context_file: ~/.commitcraft-context.txt

diff:
  max_raw_chars: 28000
  max_summary_files: 6
  recent_commits: 5
  max_prompt_tokens: 0     # 0 = provider limit, negative disables trimming
  # tokenizer_model: gpt-4o

retry:
  enabled: true
  max_attempts: 3
  backoff_base: 1.0
  backoff_max: 8.0
`

var (
	initForce bool
	initLocal bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize CommitCraft configuration",
	Long: `Create a default configuration file (~/.commitcraft.yaml, or ./.commitcraft.yaml with --local).

The template configures a local Ollama model and lists the other providers
commented out. Edit the file to pick a model and tune message length and body settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		if initLocal {
			if dir, err = os.Getwd(); err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
		}

		configPath := filepath.Join(dir, config.FileName)
		if err := writeConfigTemplate(configPath, initForce); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Configuration file created: %s\n", configPath)
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  1. Pick a model and set API keys through environment variables")
		fmt.Fprintln(out, "  2. Stage your changes with 'git add'")
		fmt.Fprintln(out, "  3. Run 'commitcraft commit' to generate a commit message")
		return nil
	},
}

// writeConfigTemplate writes the default configuration, refusing to overwrite unless force is set
func writeConfigTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	initCmd.Flags().BoolVar(&initLocal, "local", false, "Write the config file to the current directory")
	rootCmd.AddCommand(initCmd)
}
