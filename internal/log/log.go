package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

var (
	debugMode           = false
	output    io.Writer = os.Stderr
)

// SetDebugMode enables or disables debug mode
func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled
func IsDebugMode() bool {
	return debugMode
}

// SetOutput sets the output writer for log messages
func SetOutput(w io.Writer) {
	output = w
}

// Debug prints debug messages (only in debug mode)
func Debug(format string, args ...interface{}) {
	if debugMode {
		color.New(color.FgHiBlack).Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// DebugAttempt prints a debug message tagged with a generation attempt id
func DebugAttempt(attemptID string, format string, args ...interface{}) {
	if debugMode {
		color.New(color.FgCyan).Fprintf(output, "[DEBUG] [%s] ", shortID(attemptID))
		color.New(color.FgHiBlack).Fprintf(output, format+"\n", args...)
	}
}

// DebugConfig prints configuration details in debug mode
func DebugConfig(label string, config interface{}) {
	if debugMode {
		gray := color.New(color.FgHiBlack)
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			gray.Fprintf(output, "[DEBUG] %s: (failed to serialize: %v)\n", label, err)
			return
		}
		gray.Fprintf(output, "[DEBUG] %s:\n%s\n", label, string(data))
	}
}

// DebugText prints a labelled block of text, cut to limit characters, in debug mode
func DebugText(label, text string, limit int) {
	if debugMode {
		color.New(color.FgYellow).Fprintf(output, "[DEBUG] %s (%d chars):\n", label, len(text))
		fmt.Fprintln(output, truncate(text, limit))
	}
}

// DebugTokenUsage logs token usage in debug mode
func DebugTokenUsage(promptTokens, completionTokens, totalTokens int) {
	if debugMode {
		color.New(color.FgMagenta).Fprintf(output, "[DEBUG] Token Usage: prompt=%d, completion=%d, total=%d\n",
			promptTokens, completionTokens, totalTokens)
	}
}

// DebugDuration logs execution duration in debug mode
func DebugDuration(operation string, duration time.Duration) {
	if debugMode {
		color.New(color.FgBlue).Fprintf(output, "[DEBUG] %s took %v\n", operation, duration)
	}
}

// Error prints error messages
func Error(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(output, "Error: "+format+"\n", args...)
}

// Warn prints warning messages
func Warn(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(output, "Warning: "+format+"\n", args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate cuts s to maxLen bytes; limit <= 0 keeps everything
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
