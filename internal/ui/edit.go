package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

var (
	// ErrEmptyInput is returned when the user provides no message
	ErrEmptyInput = errors.New("empty input")

	// ErrInterrupted is returned when editing is cancelled
	ErrInterrupted = errors.New("input interrupted")
)

// MessageEditor collects a replacement commit message on the terminal.
// Input ends with Ctrl+D.
type MessageEditor struct {
	Current string // message being replaced, shown for reference
	Hint    string
}

// Edit shows the current message and reads the replacement
func (e *MessageEditor) Edit(ctx context.Context, input io.Reader, output io.Writer) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInterrupted
	}
	if err := e.display(output); err != nil {
		return "", err
	}

	var (
		lines []string
		err   error
	)
	if input == os.Stdin && output == os.Stdout {
		lines, err = readWithReadline(ctx)
	} else {
		lines, err = readLines(ctx, input)
	}
	if err != nil {
		return "", err
	}
	return joinMessage(lines)
}

func (e *MessageEditor) display(output io.Writer) error {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	if _, err := bold.Fprintln(output, "\n✏️  Enter the new commit message:"); err != nil {
		return err
	}
	if e.Current != "" {
		for _, line := range strings.Split(e.Current, "\n") {
			if _, err := dim.Fprintf(output, "   │ %s\n", line); err != nil {
				return err
			}
		}
	}
	hint := e.Hint
	if hint == "" {
		hint = "Press Ctrl+D when finished."
	}
	if _, err := dim.Fprintf(output, "   %s\n", hint); err != nil {
		return err
	}
	_, err := fmt.Fprint(output, "\n> ")
	return err
}

// readLines reads until EOF or a literal Ctrl+D character
func readLines(ctx context.Context, input io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(input)
	var lines []string
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ErrInterrupted
		}
		line := scanner.Text()
		if before, _, found := strings.Cut(line, "\x04"); found {
			lines = append(lines, before)
			return lines, nil
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if lines == nil {
		return nil, io.EOF
	}
	return lines, nil
}

// readWithReadline reads from the terminal with line editing, which keeps
// multi-byte input and arrow keys usable.
func readWithReadline(ctx context.Context) ([]string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "^D",
	})
	if err != nil {
		return readLines(ctx, os.Stdin)
	}
	defer rl.Close()

	var lines []string
	for {
		if ctx.Err() != nil {
			return nil, ErrInterrupted
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return nil, ErrInterrupted
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// joinMessage drops surrounding blank lines and trailing spaces
func joinMessage(lines []string) (string, error) {
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return "", ErrEmptyInput
	}
	return strings.Join(lines, "\n"), nil
}
