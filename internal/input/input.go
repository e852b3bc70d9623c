// Package input provides interactive terminal prompts for the CLI.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Confirm writes a yes/no question to w and reads one answer line from r.
// Returns true for y/yes in any case. An empty answer, or a read failure
// such as a closed stdin, returns defaultYes.
//
// Example:
//
//	if input.Confirm(os.Stdin, os.Stderr, ".lambda-doctor.yml exists. Overwrite?", false) {
//	    // write the file
//	}
//	// Displays: .lambda-doctor.yml exists. Overwrite? [y/N]: _
func Confirm(r io.Reader, w io.Writer, message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprint(w, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	answer, err := bufio.NewReader(r).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		if err != nil {
			fmt.Fprintln(w)
		}
		return defaultYes
	}

	return answer == "y" || answer == "yes"
}
