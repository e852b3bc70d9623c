// Package report renders a diagnosis.Report for people and machines.
//
// Renderers only read the report; they never recompute the summary.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
)

// Format names an output encoding.
type Format string

const (
	FormatConsole  Format = "console"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatMsgpack  Format = "msgpack"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatConsole, FormatJSON, FormatMarkdown, FormatMsgpack}
}

// ParseFormat resolves a format name. "md" is accepted for markdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "console":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q (want one of console, json, markdown, msgpack)", ErrUnknownFormat, name)
	}
}

// Binary reports whether the format produces non-text output.
func (f Format) Binary() bool {
	return f == FormatMsgpack
}

// Options tunes rendering.
type Options struct {
	// Verbose adds per-analyzer timings to console and markdown output.
	Verbose bool
}

// Write renders r to w in format f.
func Write(w io.Writer, r *diagnosis.Report, f Format, opts Options) error {
	switch f {
	case FormatConsole, "":
		return WriteConsole(w, r, opts)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatMarkdown:
		return WriteMarkdown(w, r, opts)
	case FormatMsgpack:
		return WriteMsgpack(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// FormatBytes prints a size with one decimal in MB or KB, or plain bytes.
func FormatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// formatMs prints an impact estimate without trailing zeros.
func formatMs(ms float64) string {
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0")
}
