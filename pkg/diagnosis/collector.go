package diagnosis

import (
	"math"
	"time"
)

// Collector accumulates the diagnostics of a single analyzer run and
// stamps each one with the analyzer name.
type Collector struct {
	analyzer string
	start    time.Time
	diags    []Diagnostic
}

// NewCollector starts timing a run of the named analyzer.
func NewCollector(analyzer string) *Collector {
	return &Collector{
		analyzer: analyzer,
		start:    time.Now(),
		diags:    make([]Diagnostic, 0),
	}
}

// Add records d and reports whether it was kept. A diagnostic with an
// unknown severity is dropped, so every recorded diagnostic lands in
// exactly one summary counter. The analyzer field is overwritten, and a
// negative or NaN impact estimate is clamped to zero.
func (c *Collector) Add(d Diagnostic) bool {
	if !d.Severity.Valid() {
		return false
	}
	d.Analyzer = c.analyzer
	if d.EstimatedImpactMs < 0 || math.IsNaN(d.EstimatedImpactMs) {
		d.EstimatedImpactMs = 0
	}
	c.diags = append(c.diags, d)
	return true
}

// Len returns how many diagnostics were added.
func (c *Collector) Len() int {
	return len(c.diags)
}

// Start returns when the collector was created.
func (c *Collector) Start() time.Time {
	return c.start
}

// Result freezes the collected diagnostics into an AnalyzerResult.
func (c *Collector) Result(meta Metadata) AnalyzerResult {
	diags := make([]Diagnostic, len(c.diags))
	copy(diags, c.diags)
	return AnalyzerResult{
		Analyzer:    c.analyzer,
		DurationMs:  Millis(time.Since(c.start)),
		Diagnostics: diags,
		Metadata:    meta,
	}
}
