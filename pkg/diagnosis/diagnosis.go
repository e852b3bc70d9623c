// Package diagnosis defines the shared report model every analyzer
// produces and every renderer consumes.
//
// A run produces one Report. The Report holds one AnalyzerResult per
// analyzer that ran (in dispatch order), and a Summary that is always a
// pure function of those results (see Summarize).
package diagnosis

import (
	"sort"
	"time"
)

// Canonical analyzer identifiers, in dispatch order.
const (
	BundleSize        = "bundle-size"
	HeavyDependencies = "heavy-dependencies"
	ImportAnalysis    = "import-analysis"
	AWSSDK            = "aws-sdk"
	BundlerDetection  = "bundler-detection"
)

// Metadata keys read by Summarize and the console renderer.
const (
	KeyHeavyCount      = "heavyCount"
	KeyTotalSizeBytes  = "totalSizeBytes"
	KeyTopDependencies = "topDependencies"
)

// Severity ranks a finding. Display order is critical, warning, info.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank returns the display position of s (critical first).
// Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// Valid reports whether s is one of the three known severities.
func (s Severity) Valid() bool {
	return s.Rank() < 3
}

// AtLeast reports whether s is as severe as or more severe than other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Valid() && s.Rank() <= other.Rank()
}

// Diagnostic is one finding.
type Diagnostic struct {
	Analyzer          string   `json:"analyzer"`
	Severity          Severity `json:"severity"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Recommendation    string   `json:"recommendation"`
	EstimatedImpactMs float64  `json:"estimatedImpactMs"`
	FilePath          string   `json:"filePath,omitempty"`
	Line              int      `json:"line,omitempty"`
}

// AnalyzerResult is the output of one analyzer invocation.
type AnalyzerResult struct {
	Analyzer    string       `json:"analyzer"`
	DurationMs  float64      `json:"durationMs"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Metadata    Metadata     `json:"metadata,omitempty"`
}

// Empty returns a result with no diagnostics, used when an analyzer
// fails and degrades to "nothing found".
func Empty(analyzer string, start time.Time, meta Metadata) AnalyzerResult {
	return AnalyzerResult{
		Analyzer:    analyzer,
		DurationMs:  Millis(time.Since(start)),
		Diagnostics: []Diagnostic{},
		Metadata:    meta,
	}
}

// ReportSummary aggregates all results of a run.
type ReportSummary struct {
	TotalIssues            int     `json:"totalIssues"`
	Critical               int     `json:"critical"`
	Warnings               int     `json:"warnings"`
	Info                   int     `json:"info"`
	EstimatedTotalImpactMs float64 `json:"estimatedTotalImpactMs"`
	BundleSizeBytes        *int64  `json:"bundleSizeBytes,omitempty"`
	HeavyDependencies      int     `json:"heavyDependencies"`
}

// Report is the complete outcome of a run.
type Report struct {
	TargetPath      string           `json:"targetPath"`
	Timestamp       string           `json:"timestamp"`
	TotalDurationMs float64          `json:"totalDurationMs"`
	Results         []AnalyzerResult `json:"results"`
	Summary         ReportSummary    `json:"summary"`
}

// TimestampLayout is ISO-8601 with millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// NewReport assembles a report for results gathered since start.
func NewReport(targetPath string, start time.Time, results []AnalyzerResult) *Report {
	if results == nil {
		results = []AnalyzerResult{}
	}
	summary := Summarize(results)
	now := time.Now()
	return &Report{
		TargetPath:      targetPath,
		Timestamp:       now.UTC().Format(TimestampLayout),
		TotalDurationMs: Millis(now.Sub(start)),
		Results:         results,
		Summary:         summary,
	}
}

// Summarize derives the summary from results. It depends on nothing
// but its argument.
func Summarize(results []AnalyzerResult) ReportSummary {
	var s ReportSummary
	for _, r := range results {
		for _, d := range r.Diagnostics {
			s.TotalIssues++
			switch d.Severity {
			case SeverityCritical:
				s.Critical++
			case SeverityWarning:
				s.Warnings++
			case SeverityInfo:
				s.Info++
			}
			s.EstimatedTotalImpactMs += d.EstimatedImpactMs
		}
	}

	if r, ok := Find(results, HeavyDependencies); ok {
		if n, ok := r.Metadata.Int(KeyHeavyCount); ok {
			s.HeavyDependencies = n
		}
	}
	if r, ok := Find(results, BundleSize); ok {
		if n, ok := r.Metadata.Int64(KeyTotalSizeBytes); ok {
			s.BundleSizeBytes = &n
		}
	}
	return s
}

// Find returns the result produced by the named analyzer.
func Find(results []AnalyzerResult, analyzer string) (AnalyzerResult, bool) {
	for _, r := range results {
		if r.Analyzer == analyzer {
			return r, true
		}
	}
	return AnalyzerResult{}, false
}

// Flatten returns every diagnostic in results order, and within a
// result in emission order.
func Flatten(results []AnalyzerResult) []Diagnostic {
	n := 0
	for _, r := range results {
		n += len(r.Diagnostics)
	}
	all := make([]Diagnostic, 0, n)
	for _, r := range results {
		all = append(all, r.Diagnostics...)
	}
	return all
}

// SortBySeverity returns a copy of diags ordered critical first. The
// sort is stable so flatten order survives within a severity.
func SortBySeverity(diags []Diagnostic) []Diagnostic {
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	return sorted
}

// HasAtLeast reports whether any diagnostic is at least as severe as min.
func (r *Report) HasAtLeast(min Severity) bool {
	for _, res := range r.Results {
		for _, d := range res.Diagnostics {
			if d.Severity.AtLeast(min) {
				return true
			}
		}
	}
	return false
}

// Millis converts d to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
