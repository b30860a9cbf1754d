package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/diff"
	"github.com/huimingz/commitcraft/internal/generate"
	"github.com/huimingz/commitcraft/internal/git"
	"github.com/huimingz/commitcraft/internal/log"
	"github.com/huimingz/commitcraft/internal/prompt"
	"github.com/huimingz/commitcraft/pkg/lang"
)

// Summary output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var summaryFormat string

// summaryView is the machine-readable form of the staged diff summary
type summaryView struct {
	Type               string        `json:"type" yaml:"type"`
	Scope              string        `json:"scope" yaml:"scope"`
	RequiredTokens     []string      `json:"required_tokens" yaml:"required_tokens"`
	RequiredTokenCount int           `json:"required_token_count" yaml:"required_token_count"`
	Summary            *diff.Summary `json:"summary" yaml:"summary"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize the staged changes",
	Long: `Print the structured summary of the staged diff that the model would see:
per-file change type, line counts, context labels, highlights and keywords,
plus the derived commit type, scope and the tokens a subject must mention.

No model is called.

Examples:
  commitcraft summary
  commitcraft summary --format json
  commitcraft summary -f yaml`,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", FormatText, "Output format (text, json, yaml)")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Warn("using default configuration: %v", err)
		cfg = &config.Config{}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	gitExec := git.NewExecutor(cwd)
	gen, err := generate.New(generate.Options{Git: gitExec, Reader: contentReader(gitExec, cwd)})
	if err != nil {
		return err
	}

	diffCfg := *cfg.GetDiffConfig()
	diffCfg.MaxPromptTokens = -1
	pc, err := gen.Prepare(cmd.Context(), generate.Request{
		Language: lang.ParseLanguage(cfg.GetLanguage("")),
		Commit:   *cfg.GetCommitConfig(),
		Diff:     diffCfg,
	})
	if err != nil {
		return err
	}
	return renderSummary(cmd.OutOrStdout(), pc, summaryFormat)
}

// contentReader reads the staged version of a file, then the working tree copy
func contentReader(gitExec git.Executor, root string) diff.ContentReader {
	return diff.ChainReader{gitExec, diff.DirReader{Root: root}}
}

// renderSummary writes the prompt context's summary in the given format
func renderSummary(w io.Writer, pc *prompt.Context, format string) error {
	view := summaryView{
		Type:               pc.Type,
		Scope:              pc.Scope,
		RequiredTokens:     pc.RequiredTokens,
		RequiredTokenCount: pc.RequiredTokenCount,
		Summary:            pc.Summary,
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		bold := color.New(color.Bold)
		cyan := color.New(color.FgCyan)
		if _, err := bold.Fprintf(w, "%s(%s)\n", pc.Type, pc.Scope); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, pc.Summary.Text); err != nil {
			return err
		}
		if len(pc.RequiredTokens) > 0 {
			_, err := cyan.Fprintf(w, "Subject must mention %d of: %s\n", pc.RequiredTokenCount, strings.Join(pc.RequiredTokens, ", "))
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use text, json or yaml)", format)
	}
}
