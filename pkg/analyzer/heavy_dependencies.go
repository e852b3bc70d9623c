package analyzer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/logger"
	"github.com/simonhull/lambda-doctor/pkg/manifest"
)

// devOnlyPackages are build and test tools that never belong in
// production dependencies.
var devOnlyPackages = []string{
	"typescript", "ts-node", "ts-jest", "jest", "mocha", "eslint",
	"prettier", "tsup", "webpack", "rollup", "esbuild",
}

const devToolDefaultImpactMs = 100

// HeavyDependencies flags known heavy packages and dev tools listed as
// production dependencies.
type HeavyDependencies struct {
	base
}

// NewHeavyDependencies creates the heavy-dependencies analyzer.
func NewHeavyDependencies(catalog *heavy.Catalog, log logger.Logger) *HeavyDependencies {
	return &HeavyDependencies{
		base: newBase(diagnosis.HeavyDependencies,
			"Detects known heavy dependencies and dev tools in production",
			catalog, log),
	}
}

// Analyze implements Analyzer.
func (a *HeavyDependencies) Analyze(_ context.Context, targetPath string, _ []string) diagnosis.AnalyzerResult {
	start := time.Now()

	m, err := manifest.Load(targetPath)
	if err != nil {
		return a.degrade(start, err, nil)
	}

	c := diagnosis.NewCollector(a.name)
	heavyCount := 0

	for _, dep := range m.Dependencies {
		pkg, ok := a.catalog.Find(dep.Name)
		if !ok {
			continue
		}
		heavyCount++
		c.Add(diagnosis.Diagnostic{
			Severity:          diagnosis.SeverityWarning,
			Title:             "Heavy dependency: " + dep.Name,
			Description:       pkg.Reason,
			Recommendation:    pkg.Alternative,
			EstimatedImpactMs: pkg.EstimatedSavingsMs,
			FilePath:          manifest.FileName,
		})
	}

	for _, dep := range m.Dependencies {
		if !slices.Contains(devOnlyPackages, dep.Name) {
			continue
		}
		impact := float64(devToolDefaultImpactMs)
		if pkg, ok := a.catalog.Find(dep.Name); ok {
			impact = pkg.EstimatedSavingsMs
		}
		c.Add(diagnosis.Diagnostic{
			Severity: diagnosis.SeverityCritical,
			Title:    fmt.Sprintf("Dev tool %q in production dependencies", dep.Name),
			Description: fmt.Sprintf("%q is a development tool that should not be in \"dependencies\". "+
				"It adds unnecessary size and cold start time.", dep.Name),
			Recommendation:    fmt.Sprintf("Move %q from \"dependencies\" to \"devDependencies\".", dep.Name),
			EstimatedImpactMs: impact,
			FilePath:          manifest.FileName,
		})
	}

	return c.Result(diagnosis.Metadata{
		diagnosis.KeyHeavyCount: heavyCount,
		"totalDependencies":     len(m.Dependencies),
		"totalDevDependencies":  len(m.DevDependencies),
	})
}
