package analyzer

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/simonhull/lambda-doctor/internal/filesystem"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/logger"
	"github.com/simonhull/lambda-doctor/pkg/manifest"
)

const (
	megabyte = 1024 * 1024

	bundleCriticalMB  = 50
	bundleWarningMB   = 10
	packageCriticalMB = 5
	packageWarningMB  = 1

	topDependencyCount = 10
)

// BundleSize measures node_modules and flags oversized packages.
type BundleSize struct {
	base
}

// NewBundleSize creates the bundle-size analyzer. Catalog entries mark
// heavy packages in the top-dependency metadata.
func NewBundleSize(catalog *heavy.Catalog, log logger.Logger) *BundleSize {
	return &BundleSize{
		base: newBase(diagnosis.BundleSize,
			"Analyzes total node_modules size and identifies the largest dependencies",
			catalog, log),
	}
}

type packageSize struct {
	name  string
	bytes int64
}

// Analyze implements Analyzer. The exclude patterns apply to source
// scanning only, so node_modules is always measured in full.
func (a *BundleSize) Analyze(ctx context.Context, targetPath string, _ []string) diagnosis.AnalyzerResult {
	start := time.Now()
	root := filepath.Join(targetPath, "node_modules")

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return diagnosis.Empty(a.name, start, emptyBundleMetadata())
	}

	sizes, err := measurePackages(ctx, root)
	if err != nil {
		return a.degrade(start, err, emptyBundleMetadata())
	}

	var total int64
	for _, p := range sizes {
		total += p.bytes
	}

	c := diagnosis.NewCollector(a.name)

	totalMB := float64(total) / megabyte
	switch {
	case totalMB > bundleCriticalMB:
		c.Add(diagnosis.Diagnostic{
			Severity: diagnosis.SeverityCritical,
			Title:    "Bundle size is critically large",
			Description: fmt.Sprintf("Total node_modules size is %.1fMB. AWS Lambda has a 250MB unzipped limit "+
				"and large bundles severely impact cold start times.", totalMB),
			Recommendation:    "Use a bundler (esbuild/webpack) to tree-shake and bundle only what you need. Remove unused dependencies.",
			EstimatedImpactMs: math.Min(totalMB*10, 2000),
		})
	case totalMB > bundleWarningMB:
		c.Add(diagnosis.Diagnostic{
			Severity:          diagnosis.SeverityWarning,
			Title:             "Bundle size is large",
			Description:       fmt.Sprintf("Total node_modules size is %.1fMB. This adds unnecessary cold start latency.", totalMB),
			Recommendation:    "Consider using a bundler to reduce the deployment package size.",
			EstimatedImpactMs: math.Min(totalMB*5, 500),
		})
	}

	for _, p := range sizes {
		mb := float64(p.bytes) / megabyte
		switch {
		case mb > packageCriticalMB:
			c.Add(diagnosis.Diagnostic{
				Severity:          diagnosis.SeverityCritical,
				Title:             fmt.Sprintf("Dependency %q is very large (%.1fMB)", p.name, mb),
				Description:       fmt.Sprintf("The package %q takes up %.1fMB on disk.", p.name, mb),
				Recommendation:    fmt.Sprintf("Look for a lighter alternative to %q or ensure it's being tree-shaken.", p.name),
				EstimatedImpactMs: math.Min(mb*8, 500),
			})
		case mb > packageWarningMB:
			c.Add(diagnosis.Diagnostic{
				Severity:          diagnosis.SeverityWarning,
				Title:             fmt.Sprintf("Dependency %q is large (%.1fMB)", p.name, mb),
				Description:       fmt.Sprintf("The package %q takes up %.1fMB on disk.", p.name, mb),
				Recommendation:    fmt.Sprintf("Consider replacing %q with a lighter alternative.", p.name),
				EstimatedImpactMs: math.Min(mb*5, 200),
			})
		}
	}

	return c.Result(diagnosis.Metadata{
		diagnosis.KeyTotalSizeBytes:  total,
		diagnosis.KeyTopDependencies: a.topDependencies(root, sizes),
		"packageCount":               len(sizes),
	})
}

// measurePackages sums regular file sizes per owning package, largest
// first. Ties keep first-seen order.
func measurePackages(ctx context.Context, root string) ([]packageSize, error) {
	index := make(map[string]int)
	var sizes []packageSize

	err := filesystem.Walk(ctx, root, filesystem.WalkOptions{IncludeHidden: true}, func(rel string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return nil
		}
		name := PackageName(rel)
		i, ok := index[name]
		if !ok {
			i = len(sizes)
			index[name] = i
			sizes = append(sizes, packageSize{name: name})
		}
		sizes[i].bytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("measuring node_modules: %w", err)
	}

	slices.SortStableFunc(sizes, func(x, y packageSize) int {
		return cmp.Compare(y.bytes, x.bytes)
	})
	return sizes, nil
}

func (a *BundleSize) topDependencies(root string, sizes []packageSize) []diagnosis.DependencyInfo {
	n := min(len(sizes), topDependencyCount)
	top := make([]diagnosis.DependencyInfo, 0, n)
	for _, p := range sizes[:n] {
		info := diagnosis.DependencyInfo{
			Name:      p.name,
			Version:   installedVersion(root, p.name),
			SizeBytes: p.bytes,
		}
		if pkg, ok := a.catalog.Find(p.name); ok {
			info.IsHeavy = true
			info.Alternative = pkg.Alternative
		}
		top = append(top, info)
	}
	return top
}

// installedVersion reads the version of an installed package, or ""
// when its manifest is missing or unreadable.
func installedVersion(root, name string) string {
	m, err := manifest.Load(filepath.Join(root, filepath.FromSlash(name)))
	if err != nil {
		return ""
	}
	return m.Version
}

func emptyBundleMetadata() diagnosis.Metadata {
	return diagnosis.Metadata{
		diagnosis.KeyTotalSizeBytes:  int64(0),
		diagnosis.KeyTopDependencies: []diagnosis.DependencyInfo{},
		"packageCount":               0,
	}
}
