// Package output prints styled status lines for the lambda-doctor CLI.
//
// Status lines go to stderr by default so that reports written to stdout
// stay machine-readable.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var (
	mu      sync.Mutex
	writer  io.Writer = os.Stderr
	verbose bool
)

// SetOutput redirects status lines to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := writer
	writer = w
	return prev
}

// Writer returns the writer status lines go to.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return writer
}

// SetVerbose enables or disables Verbose lines.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether Verbose lines are printed.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

func printLine(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(writer, s)
}

// Success prints a success message.
//
// Example:
//
//	output.Success("Wrote .lambda-doctor.yml")
//	// Output: ✅ Wrote .lambda-doctor.yml
func Success(message string) {
	printLine(successStyle.Render("✅ " + message))
}

// Error prints an error message.
func Error(message string) {
	printLine(errorStyle.Render("❌ " + message))
}

// Warn prints a warning.
func Warn(message string) {
	printLine(warnStyle.Render("⚠️  " + message))
}

// Info prints an informational message.
func Info(message string) {
	printLine(infoStyle.Render("ℹ️  " + message))
}

// Step prints an indented follow-up hint.
//
// Example:
//
//	output.Step("lambda-doctor analyze .")
//	// Output:   → lambda-doctor analyze .
func Step(message string) {
	printLine(stepStyle.Render("  → " + message))
}

// Verbose prints a debug line, only when verbose mode is on.
func Verbose(message string) {
	if !IsVerbose() {
		return
	}
	printLine(stepStyle.Render("🔍 " + message))
}
