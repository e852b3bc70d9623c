package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
)

var severityHeading = map[diagnosis.Severity]string{
	diagnosis.SeverityCritical: "🔴 Critical",
	diagnosis.SeverityWarning:  "⚠️ Warnings",
	diagnosis.SeverityInfo:     "💡 Info",
}

// WriteMarkdown writes r as GitHub-flavoured Markdown, suitable for a
// pull request comment.
func WriteMarkdown(w io.Writer, r *diagnosis.Report, opts Options) error {
	_, err := io.WriteString(w, RenderMarkdown(r, opts))
	return err
}

// RenderMarkdown returns r as Markdown.
func RenderMarkdown(r *diagnosis.Report, opts Options) string {
	var b strings.Builder
	s := r.Summary

	b.WriteString("## 🩺 Lambda Doctor Report\n\n")
	fmt.Fprintf(&b, "**Target:** `%s`  \n", r.TargetPath)
	fmt.Fprintf(&b, "**Date:** %s\n\n", r.Timestamp)

	b.WriteString("| Critical | Warnings | Info | Est. improvement |\n")
	b.WriteString("|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | ~%sms |\n\n", s.Critical, s.Warnings, s.Info, formatMs(s.EstimatedTotalImpactMs))

	if res, ok := diagnosis.Find(r.Results, diagnosis.BundleSize); ok {
		total, _ := res.Metadata.Int64(diagnosis.KeyTotalSizeBytes)
		deps := res.Metadata.Dependencies(diagnosis.KeyTopDependencies)
		if total > 0 {
			fmt.Fprintf(&b, "### 📦 Bundle size: %s\n\n", FormatBytes(total))
			if len(deps) > 0 {
				b.WriteString("| Package | Version | Size | Heavy |\n")
				b.WriteString("|---|---|---:|:---:|\n")
				for _, d := range deps {
					heavy := ""
					if d.IsHeavy {
						heavy = "⚠️"
					}
					fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", d.Name, mdCell(d.Version), FormatBytes(d.SizeBytes), heavy)
				}
				b.WriteString("\n")
			}
		}
	}

	all := diagnosis.SortBySeverity(diagnosis.Flatten(r.Results))
	if len(all) == 0 {
		b.WriteString("✅ No issues found! Your Lambda looks healthy.\n")
	}

	var current diagnosis.Severity
	for i, d := range all {
		if d.Severity != current {
			current = d.Severity
			heading, ok := severityHeading[current]
			if !ok {
				heading = string(current)
			}
			fmt.Fprintf(&b, "### %s\n\n", heading)
		}
		fmt.Fprintf(&b, "- **%s**", d.Title)
		if d.FilePath != "" {
			loc := d.FilePath
			if d.Line > 0 {
				loc = fmt.Sprintf("%s:%d", loc, d.Line)
			}
			fmt.Fprintf(&b, " (`%s`)", loc)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s\n", d.Description)
		fmt.Fprintf(&b, "  → %s", d.Recommendation)
		if d.EstimatedImpactMs > 0 {
			fmt.Fprintf(&b, " _(~%sms)_", formatMs(d.EstimatedImpactMs))
		}
		b.WriteString("\n")
		if i == len(all)-1 || all[i+1].Severity != d.Severity {
			b.WriteString("\n")
		}
	}

	if opts.Verbose {
		b.WriteString("\n<details><summary>Analyzer timings</summary>\n\n")
		b.WriteString("| Analyzer | Duration | Issues |\n")
		b.WriteString("|---|---:|---:|\n")
		for _, res := range r.Results {
			fmt.Fprintf(&b, "| %s | %.1fms | %d |\n", res.Analyzer, res.DurationMs, len(res.Diagnostics))
		}
		b.WriteString("\n</details>\n")
	}
	return b.String()
}

func mdCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
