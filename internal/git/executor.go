package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Executor defines the interface for the git operations commit generation needs
type Executor interface {
	// DiffCached returns the unified diff of the staged changes
	DiffCached(ctx context.Context) (string, error)
	// Status returns the short status with branch header
	Status(ctx context.Context) (string, error)
	// StagedNameStatus returns the name-status listing of staged files
	StagedNameStatus(ctx context.Context) (string, error)
	// Log returns commit log information
	Log(ctx context.Context, opts LogOptions) (string, error)
	// RecentSubjects returns up to n commit subjects, most recent first
	RecentSubjects(ctx context.Context, n int) ([]string, error)
	// ReadFile returns the staged content of a repository-relative path
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// Commit creates a commit with the given message
	Commit(ctx context.Context, message string) error
}

// LogOptions contains options for git log
type LogOptions struct {
	Count  int
	Format string // pretty format, empty uses --oneline
}

// DefaultExecutor is the default implementation of Executor
type DefaultExecutor struct {
	workDir string
}

// NewExecutor creates a new git executor
func NewExecutor(workDir string) *DefaultExecutor {
	return &DefaultExecutor{workDir: workDir}
}

// DiffCached returns the diff of staged changes. External diff drivers and
// color are disabled so the output always parses as a unified diff.
func (e *DefaultExecutor) DiffCached(ctx context.Context) (string, error) {
	return e.runGit(ctx, "diff", "--cached", "--no-color", "--no-ext-diff")
}

// Status returns the short repository status
func (e *DefaultExecutor) Status(ctx context.Context) (string, error) {
	return e.runGit(ctx, "status", "--short", "--branch")
}

// StagedNameStatus returns the name-status listing of staged files
func (e *DefaultExecutor) StagedNameStatus(ctx context.Context) (string, error) {
	return e.runGit(ctx, "diff", "--cached", "--name-status")
}

// Log returns commit log information
func (e *DefaultExecutor) Log(ctx context.Context, opts LogOptions) (string, error) {
	args := []string{"log"}
	if opts.Format != "" {
		args = append(args, "--format="+opts.Format)
	} else {
		args = append(args, "--oneline")
	}
	if opts.Count > 0 {
		args = append(args, "-n", strconv.Itoa(opts.Count))
	}
	return e.runGit(ctx, args...)
}

// RecentSubjects returns the subjects of the last n commits. A repository
// without commits yields no subjects rather than an error.
func (e *DefaultExecutor) RecentSubjects(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	if _, err := e.runGit(ctx, "rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}

	out, err := e.Log(ctx, LogOptions{Count: n, Format: "%s"})
	if err != nil {
		return nil, err
	}
	var subjects []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}

// ReadFile returns the staged content of path. Output is returned untrimmed so
// line numbers match the diff hunks.
func (e *DefaultExecutor) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return e.run(ctx, "show", ":"+path)
}

// Commit creates a commit with the given message
func (e *DefaultExecutor) Commit(ctx context.Context, message string) error {
	_, err := e.runGit(ctx, "commit", "-m", message)
	return err
}

// runGit executes a git command and returns its trimmed output
func (e *DefaultExecutor) runGit(ctx context.Context, args ...string) (string, error) {
	out, err := e.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *DefaultExecutor) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if e.workDir != "" {
		cmd.Dir = e.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("git %s failed: %w\nstderr: %s", strings.Join(args, " "), err, stderr.String())
	}

	return stdout.Bytes(), nil
}
