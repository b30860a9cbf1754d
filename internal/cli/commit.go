package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/generate"
	"github.com/huimingz/commitcraft/internal/git"
	"github.com/huimingz/commitcraft/internal/llm"
	"github.com/huimingz/commitcraft/internal/log"
	"github.com/huimingz/commitcraft/internal/ui"
	"github.com/huimingz/commitcraft/pkg/lang"
)

// commitOptions are the command-line overrides of the commit section
type commitOptions struct {
	Context  string
	Language string
	Style    string
	Prefix   string
	Suffix   string
	Body     *bool // nil keeps the configured value
	NoStream bool
}

var (
	commitFlags   commitOptions
	commitBody    bool
	commitAutoYes bool
	commitDryRun  bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate and create a commit",
	Long: `Generate a commit message for the staged changes and commit it.

This command will:
1. Summarize your staged changes (git diff --cached)
2. Ask the model for a Conventional Commits message
3. Repair the reply so it names the files and symbols that changed
4. Ask whether to commit, edit, regenerate or abort

Examples:
  commitcraft commit
  commitcraft commit -c "Bug fix for user authentication"
  commitcraft commit --language zh
  commitcraft commit --body --prefix "[AUTH-7] "
  commitcraft commit -m ollama --dry-run`,
	RunE: runCommit,
}

func init() {
	f := commitCmd.Flags()
	f.StringVarP(&commitFlags.Context, "context", "c", "", "Additional context to help the model")
	f.StringVarP(&commitFlags.Language, "language", "l", "", "Output language (en, zh)")
	f.StringVar(&commitFlags.Style, "style", "", "Subject style (imperative, sentence)")
	f.StringVar(&commitFlags.Prefix, "prefix", "", "Text placed before the subject line")
	f.StringVar(&commitFlags.Suffix, "suffix", "", "Text placed after the subject line")
	f.BoolVar(&commitBody, "body", false, "Add a bullet body to the message")
	f.BoolVar(&commitFlags.NoStream, "no-stream", false, "Wait for the full reply instead of streaming it")
	f.BoolVarP(&commitAutoYes, "yes", "y", false, "Commit without prompting")
	f.BoolVar(&commitDryRun, "dry-run", false, "Print the message without committing")
	rootCmd.AddCommand(commitCmd)
}

// buildRequest resolves the generation request from the configuration and flag overrides
func buildRequest(cfg *config.Config, model string, opts commitOptions) (generate.Request, error) {
	modelCfg, err := cfg.GetModel(model)
	if err != nil {
		return generate.Request{}, fmt.Errorf("failed to get model config: %w", err)
	}
	if err := modelCfg.Validate(); err != nil {
		return generate.Request{}, fmt.Errorf("invalid model config: %w", err)
	}

	commit := *cfg.GetCommitConfig()
	if opts.Style != "" {
		commit.Style = opts.Style
	}
	if opts.Prefix != "" {
		commit.Prefix = opts.Prefix
	}
	if opts.Suffix != "" {
		commit.Suffix = opts.Suffix
	}
	if opts.Body != nil {
		commit.IncludeBody = *opts.Body
	}
	if opts.NoStream {
		off := false
		commit.Stream = &off
	}
	if err := commit.Validate(); err != nil {
		return generate.Request{}, fmt.Errorf("invalid commit config: %w", err)
	}

	hint := opts.Context
	if hint == "" {
		if hint, err = cfg.GetCommitContext(); err != nil {
			return generate.Request{}, err
		}
	}

	return generate.Request{
		Model:    *modelCfg,
		Language: lang.ParseLanguage(cfg.GetLanguage(opts.Language)),
		Context:  hint,
		Commit:   commit,
		Diff:     *cfg.GetDiffConfig(),
	}, nil
}

func runCommit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.DebugConfig("Configuration", cfg)

	opts := commitFlags
	if cmd.Flags().Changed("body") {
		opts.Body = &commitBody
	}
	req, err := buildRequest(cfg, modelName, opts)
	if err != nil {
		return err
	}
	log.Debug("Using model: %s/%s, language: %s", req.Model.Provider, req.Model.Model, req.Language)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	gitExec := git.NewExecutor(cwd)

	printer := ui.NewStreamPrinter(os.Stdout, ui.WithVerbose(debugMode))
	sessions := llm.NewSessionCache(llm.NewProviderFactory().CreateChatModel, llm.RetryConfigFrom(cfg.GetRetryConfig()))
	defer sessions.Release()

	gen, err := generate.New(generate.Options{Git: gitExec, Sessions: sessions, Printer: printer, Reader: contentReader(gitExec, cwd)})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	handler := NewInterruptHandler(cancel, gen.Cancel, os.Stderr)
	handler.Start()
	defer handler.Stop()

	for {
		resp, err := gen.Generate(ctx, req)
		switch {
		case errors.Is(err, generate.ErrNoStagedChanges):
			fmt.Println("No staged changes found.")
			fmt.Println("\nTo stage changes, use:")
			fmt.Println("  git add <file>")
			fmt.Println("  git add -A")
			return nil
		case errors.Is(err, generate.ErrCancelled):
			_ = printer.PrintError("generation cancelled")
			return err
		case err != nil:
			return fmt.Errorf("failed to generate commit message: %w", err)
		}

		message := resp.Message
		if err := ui.ShowCommitMessage(message, os.Stdout); err != nil {
			return err
		}
		_ = printer.PrintStats(&resp.Stats)

		if commitDryRun {
			return nil
		}

		action := ui.ActionCommit
		if !commitAutoYes {
			action, err = ui.ChooseAction("\nCommit with this message?", os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
		}

		switch action {
		case ui.ActionRegenerate:
			continue
		case ui.ActionAbort:
			fmt.Println("Commit cancelled.")
			return nil
		case ui.ActionEdit:
			editor := &ui.MessageEditor{Current: message}
			edited, err := editor.Edit(ctx, os.Stdin, os.Stdout)
			if errors.Is(err, ui.ErrEmptyInput) || errors.Is(err, ui.ErrInterrupted) {
				fmt.Println("Commit cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			message = edited
		}

		if err := gitExec.Commit(ctx, message); err != nil {
			return fmt.Errorf("failed to commit: %w", err)
		}
		_ = printer.PrintSuccess("Commit created successfully!")
		return nil
	}
}
