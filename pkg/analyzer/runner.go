package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/lambda-doctor/internal/filesystem"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/logger"
)

// Options configures one run.
type Options struct {
	// TargetPath is the project directory. Required.
	TargetPath string
	// Analyzers restricts the run to these names. Empty means all.
	Analyzers []string
	// Exclude lists glob patterns for source scanning. Nil means
	// filesystem.DefaultExcludePatterns.
	Exclude []string

	// Presentation hints, carried for callers and ignored by Run.
	Format  string
	Verbose bool
}

// Runner dispatches analyzers concurrently and merges their results.
type Runner struct {
	analyzers []Analyzer
	logger    logger.Logger
}

// NewRunner creates a runner over analyzers, which also fixes the
// dispatch order.
func NewRunner(analyzers ...Analyzer) *Runner {
	return &Runner{
		analyzers: analyzers,
		logger:    logger.Default(),
	}
}

// NewDefaultRunner creates a runner over the five built-in analyzers.
func NewDefaultRunner(catalog *heavy.Catalog, log logger.Logger) *Runner {
	r := NewRunner(Defaults(catalog, log)...)
	if log != nil {
		r.logger = log
	}
	return r
}

// WithLogger returns a new Runner with the specified logger
func (r *Runner) WithLogger(log logger.Logger) *Runner {
	return &Runner{
		analyzers: r.analyzers,
		logger:    log,
	}
}

// Analyzers returns the registered analyzers in dispatch order.
func (r *Runner) Analyzers() []Analyzer {
	return slices.Clone(r.analyzers)
}

// Select returns the registered analyzers whose names appear in names,
// in dispatch order. Empty names selects everything.
func (r *Runner) Select(names []string) ([]Analyzer, error) {
	if len(names) == 0 {
		return r.Analyzers(), nil
	}

	known := make(map[string]bool, len(r.analyzers))
	for _, a := range r.analyzers {
		known[a.Name()] = true
	}
	for _, n := range names {
		if !known[n] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAnalyzer, n)
		}
	}

	selected := make([]Analyzer, 0, len(names))
	for _, a := range r.analyzers {
		if slices.Contains(names, a.Name()) {
			selected = append(selected, a)
		}
	}
	return selected, nil
}

// Run analyzes opts.TargetPath. Errors are returned only for a
// misconfigured run (missing target, unknown analyzer, cancelled
// context); analyzer failures show up as empty results.
func (r *Runner) Run(ctx context.Context, opts Options) (*diagnosis.Report, error) {
	start := time.Now()

	target, err := resolveTarget(opts.TargetPath)
	if err != nil {
		return nil, err
	}

	selected, err := r.Select(opts.Analyzers)
	if err != nil {
		return nil, err
	}

	exclude := opts.Exclude
	if exclude == nil {
		exclude = slices.Clone(filesystem.DefaultExcludePatterns)
	}

	r.logger.Debug("Starting analysis",
		logger.F("path", target),
		logger.F("analyzers", len(selected)))

	// Each goroutine owns its slot, so dispatch order is kept no matter
	// which analyzer finishes first.
	results := make([]diagnosis.AnalyzerResult, len(selected))
	var g errgroup.Group
	for i, a := range selected {
		g.Go(func() error {
			results[i] = r.invoke(ctx, a, target, exclude)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	report := diagnosis.NewReport(target, start, results)

	r.logger.Debug("Analysis complete",
		logger.F("issues", report.Summary.TotalIssues),
		logger.F("duration_ms", fmt.Sprintf("%.1f", report.TotalDurationMs)))

	return report, nil
}

// invoke runs a single analyzer, turning a panic into an empty result
// and re-stamping diagnostics with the analyzer's name.
func (r *Runner) invoke(ctx context.Context, a Analyzer, target string, exclude []string) (res diagnosis.AnalyzerResult) {
	start := time.Now()
	name := a.Name()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("analyzer panicked, reporting no findings",
				logger.Analyzer(name),
				logger.F("panic", p))
			res = diagnosis.Empty(name, start, nil)
		}
	}()

	res = a.Analyze(ctx, target, exclude)
	res = r.normalize(name, res)

	r.logger.Debug("Analyzer finished",
		logger.Analyzer(name),
		logger.F("diagnostics", len(res.Diagnostics)),
		logger.F("duration_ms", fmt.Sprintf("%.1f", res.DurationMs)))
	return res
}

// normalize enforces the model invariants on results from analyzers
// that did not build them through a diagnosis.Collector.
func (r *Runner) normalize(name string, res diagnosis.AnalyzerResult) diagnosis.AnalyzerResult {
	c := diagnosis.NewCollector(name)
	for _, d := range res.Diagnostics {
		if !c.Add(d) {
			r.logger.Warn("dropping diagnostic with unknown severity",
				logger.Analyzer(name),
				logger.F("severity", string(d.Severity)),
				logger.F("title", d.Title))
		}
	}
	out := c.Result(res.Metadata)
	out.DurationMs = res.DurationMs
	return out
}

func resolveTarget(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving target path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrTargetNotFound, abs)
		}
		return "", fmt.Errorf("checking target path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrTargetNotDirectory, abs)
	}
	return abs, nil
}
