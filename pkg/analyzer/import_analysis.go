package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/simonhull/lambda-doctor/internal/filesystem"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/logger"
)

var (
	esmImport      = regexp.MustCompile(`^import\s+.*\s+from\s+['"]([^'"]+)['"]`)
	cjsRequire     = regexp.MustCompile(`^(?:const|let|var)\s+.*=\s*require\(\s*['"]([^'"]+)['"]\s*\)`)
	wildcardImport = regexp.MustCompile(`^import\s+\*\s+as\s+\w+\s+from\s+['"]([^'"]+)['"]`)
)

const wildcardImpactMs = 20

// wildcardAllowlist holds modules that are normally imported whole:
// runtime built-ins, frontend frameworks and infrastructure SDKs that
// run at deploy time.
var wildcardAllowlist = map[string]bool{
	"path": true, "fs": true, "fs/promises": true, "os": true, "url": true,
	"util": true, "crypto": true, "stream": true, "http": true, "https": true,
	"child_process": true, "events": true, "buffer": true, "querystring": true,
	"zlib": true, "net": true, "tls": true, "dns": true, "dgram": true,
	"cluster": true, "readline": true, "assert": true, "timers": true,
	"perf_hooks": true, "worker_threads": true, "async_hooks": true, "tty": true,

	"node:path": true, "node:fs": true, "node:fs/promises": true, "node:os": true,
	"node:url": true, "node:util": true, "node:crypto": true, "node:http": true,
	"node:https": true, "node:stream": true, "node:events": true,
	"node:buffer": true, "node:querystring": true, "node:child_process": true,
	"node:cluster": true, "node:net": true, "node:readline": true,
	"node:zlib": true, "node:assert": true, "node:tty": true,

	"react": true, "react-dom": true, "vue": true, "svelte": true, "preact": true,

	"@pulumi/aws": true, "@pulumi/pulumi": true, "@pulumi/cloud": true,
	"@pulumi/random": true, "@pulumi/awsx": true,
	"aws-cdk-lib": true, "@aws-cdk/core": true, "constructs": true,
}

var wildcardAllowedPrefixes = []string{"node:", "@pulumi/", "@aws-cdk/"}

func wildcardAllowed(pkg, specifier string) bool {
	if wildcardAllowlist[pkg] || wildcardAllowlist[specifier] {
		return true
	}
	for _, prefix := range wildcardAllowedPrefixes {
		if strings.HasPrefix(pkg, prefix) {
			return true
		}
	}
	return false
}

// ImportAnalysis scans source files for namespace imports and eager
// top-level imports of heavy packages.
type ImportAnalysis struct {
	base
}

// NewImportAnalysis creates the import-analysis analyzer.
func NewImportAnalysis(catalog *heavy.Catalog, log logger.Logger) *ImportAnalysis {
	return &ImportAnalysis{
		base: newBase(diagnosis.ImportAnalysis,
			"Analyzes import patterns for tree-shaking issues and heavy top-level imports",
			catalog, log),
	}
}

// Analyze implements Analyzer.
func (a *ImportAnalysis) Analyze(ctx context.Context, targetPath string, exclude []string) diagnosis.AnalyzerResult {
	start := time.Now()
	if exclude == nil {
		exclude = filesystem.DefaultExcludePatterns
	}

	files, err := filesystem.SourceFiles(ctx, targetPath, exclude)
	if err != nil {
		return a.degrade(start, err, nil)
	}

	c := diagnosis.NewCollector(a.name)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return a.degrade(start, err, nil)
		}
		data, err := os.ReadFile(filepath.Join(targetPath, filepath.FromSlash(file)))
		if err != nil {
			return a.degrade(start, fmt.Errorf("reading %s: %w", file, err), nil)
		}
		a.scanFile(c, file, data)
	}

	return c.Result(diagnosis.Metadata{"filesScanned": len(files)})
}

// scanFile matches each line after stripping leading whitespace.
// Wildcard imports are reported at any indentation. Heavy top-level
// imports and requires are reported only when indented by at most one
// character, so nested requires inside functions are left alone.
func (a *ImportAnalysis) scanFile(c *diagnosis.Collector, file string, data []byte) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSuffix(sc.Text(), "\r")
		code := strings.TrimLeftFunc(line, unicode.IsSpace)

		// Namespace imports are only legal at module scope, so any
		// indentation is accepted here.
		if m := wildcardImport.FindStringSubmatch(code); m != nil {
			specifier := m[1]
			if pkg, ok := ModulePackageName(specifier); ok && !wildcardAllowed(pkg, specifier) {
				c.Add(diagnosis.Diagnostic{
					Severity: diagnosis.SeverityWarning,
					Title:    fmt.Sprintf("Wildcard import of %q prevents tree-shaking", pkg),
					Description: fmt.Sprintf("\"import * as ...\" from %q imports the entire module, "+
						"preventing bundlers from removing unused code.", specifier),
					Recommendation:    fmt.Sprintf("Use named imports: import { specificFunction } from %q", specifier),
					EstimatedImpactMs: wildcardImpactMs,
					FilePath:          file,
					Line:              lineNo,
				})
			}
		}

		if len(line)-len(code) > 1 {
			continue
		}
		for _, re := range []*regexp.Regexp{esmImport, cjsRequire} {
			m := re.FindStringSubmatch(code)
			if m == nil {
				continue
			}
			pkg, ok := ModulePackageName(m[1])
			if !ok {
				continue
			}
			entry, ok := a.catalog.Find(pkg)
			if !ok {
				continue
			}
			c.Add(diagnosis.Diagnostic{
				Severity: diagnosis.SeverityWarning,
				Title:    fmt.Sprintf("Top-level import of heavy package %q", pkg),
				Description: fmt.Sprintf("%q is imported at the top level in %s. This forces it to load during "+
					"cold start even if not needed for every invocation.", pkg, file),
				Recommendation:    "Consider lazy-loading: move the import inside the function that uses it. " + entry.Alternative,
				EstimatedImpactMs: entry.EstimatedSavingsMs / 2,
				FilePath:          file,
				Line:              lineNo,
			})
		}
	}
}
