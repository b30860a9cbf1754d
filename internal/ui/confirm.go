package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Action is the developer's decision on a generated message
type Action int

const (
	ActionCommit Action = iota
	ActionEdit
	ActionRegenerate
	ActionAbort
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case ActionCommit:
		return "commit"
	case ActionEdit:
		return "edit"
	case ActionRegenerate:
		return "regenerate"
	default:
		return "abort"
	}
}

// Confirm asks the user for a yes/no confirmation
// Default is no (returns false on empty input)
func Confirm(message string, input io.Reader, output io.Writer) (bool, error) {
	return ConfirmWithDefault(message, false, input, output)
}

// ConfirmWithDefault asks the user for a yes/no confirmation with a specified default
func ConfirmWithDefault(message string, defaultYes bool, input io.Reader, output io.Writer) (bool, error) {
	prompt := fmt.Sprintf("%s [y/N]: ", message)
	if defaultYes {
		prompt = fmt.Sprintf("%s [Y/n]: ", message)
	}

	answer, err := ask(bufio.NewScanner(input), output, prompt, "Please enter 'y' or 'n'", func(response string) (bool, bool) {
		switch response {
		case "":
			return defaultYes, true
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		}
		return false, false
	})
	if err != nil {
		return false, err
	}
	return answer, nil
}

// ChooseAction asks whether to commit, edit, regenerate or abort. Empty input commits.
func ChooseAction(message string, input io.Reader, output io.Writer) (Action, error) {
	prompt := fmt.Sprintf("%s [Y]es / [e]dit / [r]egenerate / [n]o: ", message)
	action, err := ask(bufio.NewScanner(input), output, prompt, "Please enter 'y', 'e', 'r' or 'n'", func(response string) (Action, bool) {
		switch response {
		case "", "y", "yes":
			return ActionCommit, true
		case "e", "edit":
			return ActionEdit, true
		case "r", "regenerate":
			return ActionRegenerate, true
		case "n", "no", "q", "quit":
			return ActionAbort, true
		}
		return ActionAbort, false
	})
	if err != nil {
		return ActionAbort, err
	}
	return action, nil
}

// ask repeats prompt until parse accepts the lowercased answer
func ask[T any](scanner *bufio.Scanner, output io.Writer, prompt, retry string, parse func(string) (T, bool)) (T, error) {
	var zero T
	for {
		if _, err := fmt.Fprint(output, prompt); err != nil {
			return zero, err
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return zero, err
			}
			return zero, io.EOF
		}

		if v, ok := parse(strings.TrimSpace(strings.ToLower(scanner.Text()))); ok {
			return v, nil
		}
		if _, err := fmt.Fprintln(output, retry); err != nil {
			return zero, err
		}
	}
}

// ShowCommitMessage displays a formatted commit message
func ShowCommitMessage(message string, output io.Writer) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	rule := strings.Repeat("─", 40)

	if _, err := bold.Fprintln(output, "\n📝 Generated Commit Message:"); err != nil {
		return err
	}
	if _, err := cyan.Fprintln(output, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(output, message); err != nil {
		return err
	}
	_, err := cyan.Fprintln(output, rule)
	return err
}
