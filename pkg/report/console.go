package report

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
)

const (
	barWidth     = 30
	nameColumn   = 35
	sizeColumn   = 10
	ruleWidth    = 60
	timingColumn = 22
)

var severityIcon = map[diagnosis.Severity]string{
	diagnosis.SeverityCritical: "🔴",
	diagnosis.SeverityWarning:  "⚠️",
	diagnosis.SeverityInfo:     "💡",
}

type consoleStyles struct {
	title    lipgloss.Style
	heading  lipgloss.Style
	muted    lipgloss.Style
	name     lipgloss.Style
	bar      lipgloss.Style
	advice   lipgloss.Style
	impact   lipgloss.Style
	healthy  lipgloss.Style
	total    lipgloss.Style
	severity map[diagnosis.Severity]lipgloss.Style
}

// newConsoleStyles binds styles to the renderer for w so that colour is
// only emitted when w is a colour-capable terminal.
func newConsoleStyles(w io.Writer) consoleStyles {
	r := lipgloss.NewRenderer(w)
	return consoleStyles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		heading: r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		name:    r.NewStyle().Foreground(lipgloss.Color("15")),
		bar:     r.NewStyle().Foreground(lipgloss.Color("10")),
		advice:  r.NewStyle().Foreground(lipgloss.Color("10")),
		impact:  r.NewStyle().Foreground(lipgloss.Color("14")),
		healthy: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		total:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		severity: map[diagnosis.Severity]lipgloss.Style{
			diagnosis.SeverityCritical: r.NewStyle().Foreground(lipgloss.Color("9")),
			diagnosis.SeverityWarning:  r.NewStyle().Foreground(lipgloss.Color("11")),
			diagnosis.SeverityInfo:     r.NewStyle().Foreground(lipgloss.Color("12")),
		},
	}
}

// WriteConsole writes the human-readable report.
func WriteConsole(w io.Writer, r *diagnosis.Report, opts Options) error {
	_, err := io.WriteString(w, renderConsole(r, opts, newConsoleStyles(w)))
	return err
}

// RenderConsole returns the console report without colour.
func RenderConsole(r *diagnosis.Report, opts Options) string {
	return renderConsole(r, opts, newConsoleStyles(io.Discard))
}

func renderConsole(r *diagnosis.Report, opts Options, st consoleStyles) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}

	line("")
	line(st.title.Render("🩺 Lambda Doctor Diagnosis Report"))
	line(st.muted.Render("   Target: " + r.TargetPath))
	line(st.muted.Render("   Date:   " + r.Timestamp))
	line("")

	renderBundle(&b, r, st)

	if opts.Verbose {
		renderTimings(&b, r, st)
	}

	sorted := diagnosis.SortBySeverity(diagnosis.Flatten(r.Results))
	if len(sorted) == 0 {
		line(st.healthy.Render("✅ No issues found! Your Lambda looks healthy."))
		line("")
		return b.String()
	}

	line(st.heading.Render("🔍 Diagnostics"))
	line("")

	for _, d := range sorted {
		sevStyle, ok := st.severity[d.Severity]
		if !ok {
			sevStyle = st.muted
		}
		location := ""
		if d.FilePath != "" {
			loc := d.FilePath
			if d.Line > 0 {
				loc = fmt.Sprintf("%s:%d", loc, d.Line)
			}
			location = st.muted.Render(" (" + loc + ")")
		}

		line(fmt.Sprintf("%s %s %s%s",
			severityIcon[d.Severity],
			sevStyle.Render(strings.ToUpper(string(d.Severity))),
			st.heading.Render(d.Title),
			location))
		line(st.muted.Render("   " + d.Description))
		line(st.advice.Render("   → " + d.Recommendation))
		if d.EstimatedImpactMs > 0 {
			line(st.impact.Render("   ⏱  Est. improvement: ~" + formatMs(d.EstimatedImpactMs) + "ms"))
		}
		line("")
	}

	s := r.Summary
	line(st.heading.Render(strings.Repeat("─", ruleWidth)))
	sep := st.muted.Render(" | ")
	line(st.heading.Render("Summary: ") +
		st.severity[diagnosis.SeverityCritical].Render(fmt.Sprintf("%d critical", s.Critical)) + sep +
		st.severity[diagnosis.SeverityWarning].Render(fmt.Sprintf("%d warnings", s.Warnings)) + sep +
		st.severity[diagnosis.SeverityInfo].Render(fmt.Sprintf("%d info", s.Info)))
	if s.EstimatedTotalImpactMs > 0 {
		line("")
		line(st.total.Render("🚀 Total estimated cold start improvement: ~" + formatMs(s.EstimatedTotalImpactMs) + "ms"))
	}
	line("")
	return b.String()
}

func renderBundle(b *strings.Builder, r *diagnosis.Report, st consoleStyles) {
	res, ok := diagnosis.Find(r.Results, diagnosis.BundleSize)
	if !ok {
		return
	}
	total, ok := res.Metadata.Int64(diagnosis.KeyTotalSizeBytes)
	if !ok || total <= 0 {
		return
	}

	fmt.Fprintln(b, st.heading.Render("📦 Bundle Size Breakdown"))
	fmt.Fprintln(b, st.muted.Render("   Total: "+FormatBytes(total)))
	fmt.Fprintln(b)

	deps := res.Metadata.Dependencies(diagnosis.KeyTopDependencies)
	if len(deps) == 0 {
		return
	}
	fmt.Fprintln(b, st.muted.Render("   Top Dependencies:"))
	for _, dep := range deps {
		name := runewidth.FillRight(runewidth.Truncate(dep.Name, nameColumn, "…"), nameColumn)
		size := runewidth.FillLeft(FormatBytes(dep.SizeBytes), sizeColumn)
		fmt.Fprintf(b, "   %s %s  %s\n", st.name.Render(name), size, st.bar.Render(sizeBar(dep.SizeBytes, total)))
	}
	fmt.Fprintln(b)
}

// sizeBar draws a bar proportional to part/total, at least one cell.
func sizeBar(part, total int64) string {
	cells, err := safecast.Round[int](float64(part) / float64(total) * barWidth)
	if err != nil || cells < 1 {
		cells = 1
	}
	return strings.Repeat("█", min(cells, barWidth))
}

func renderTimings(b *strings.Builder, r *diagnosis.Report, st consoleStyles) {
	p := message.NewPrinter(language.English)

	fmt.Fprintln(b, st.heading.Render("⏱  Analyzer Timings"))
	for _, res := range r.Results {
		name := runewidth.FillRight(res.Analyzer, timingColumn)
		fmt.Fprintf(b, "   %s %s  %s\n",
			st.name.Render(name),
			runewidth.FillLeft(p.Sprintf("%.1fms", res.DurationMs), sizeColumn),
			st.muted.Render(p.Sprintf("%d issues", len(res.Diagnostics))))
	}
	fmt.Fprintln(b, st.muted.Render(p.Sprintf("   Total: %.1fms", r.TotalDurationMs)))
	if res, ok := diagnosis.Find(r.Results, diagnosis.BundleSize); ok {
		if total, ok := res.Metadata.Int64(diagnosis.KeyTotalSizeBytes); ok && total > 0 {
			fmt.Fprintln(b, st.muted.Render(p.Sprintf("   node_modules: %d bytes", total)))
		}
	}
	fmt.Fprintln(b)
}
