// Package analyzer implements the cold-start analyzers and the Runner
// that fans a run out to them and merges their results.
package analyzer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/logger"
)

// Analyzer inspects one concern of a project.
//
// Analyze must not fail: any error (missing manifest, malformed JSON,
// I/O failure) is converted into an empty result. It only reads files
// under targetPath and must skip source files matching exclude.
// Analyzers share no state and may run concurrently.
type Analyzer interface {
	Name() string
	Description() string
	Analyze(ctx context.Context, targetPath string, exclude []string) diagnosis.AnalyzerResult
}

var (
	// ErrTargetNotFound is returned when the target path does not exist.
	ErrTargetNotFound = errors.New("target path does not exist")
	// ErrTargetNotDirectory is returned when the target path is a file.
	ErrTargetNotDirectory = errors.New("target path is not a directory")
	// ErrUnknownAnalyzer is returned when a selection names no analyzer.
	ErrUnknownAnalyzer = errors.New("unknown analyzer")
)

// Names lists the built-in analyzers in dispatch order.
func Names() []string {
	return []string{
		diagnosis.BundleSize,
		diagnosis.HeavyDependencies,
		diagnosis.ImportAnalysis,
		diagnosis.AWSSDK,
		diagnosis.BundlerDetection,
	}
}

// Defaults builds the five built-in analyzers in dispatch order.
func Defaults(catalog *heavy.Catalog, log logger.Logger) []Analyzer {
	return []Analyzer{
		NewBundleSize(catalog, log),
		NewHeavyDependencies(catalog, log),
		NewImportAnalysis(catalog, log),
		NewAWSSDK(log),
		NewBundlerDetection(log),
	}
}

// base holds the identity and collaborators shared by the built-ins.
type base struct {
	name        string
	description string
	catalog     *heavy.Catalog
	logger      logger.Logger
}

func newBase(name, description string, catalog *heavy.Catalog, log logger.Logger) base {
	if catalog == nil {
		catalog = heavy.Default()
	}
	if log == nil {
		log = logger.Default()
	}
	return base{name: name, description: description, catalog: catalog, logger: log}
}

// Name returns the analyzer identifier.
func (b base) Name() string { return b.name }

// Description returns a one-line summary.
func (b base) Description() string { return b.description }

// degrade logs err and returns the empty result for this analyzer.
func (b base) degrade(start time.Time, err error, meta diagnosis.Metadata) diagnosis.AnalyzerResult {
	b.logger.Warn("analyzer failed, reporting no findings", logger.Analyzer(b.name), logger.Err(err))
	return diagnosis.Empty(b.name, start, meta)
}

// PackageName maps a path relative to node_modules to the
// package that owns it: "@scope/name/..." keeps two segments, anything
// else keeps the first.
func PackageName(rel string) string {
	parts := strings.Split(rel, "/")
	if strings.HasPrefix(parts[0], "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// ModulePackageName resolves an import specifier to a package name.
// Relative and absolute paths are not packages.
func ModulePackageName(specifier string) (string, bool) {
	if specifier == "" || strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return "", false
	}
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(parts[0], "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", false
		}
		return parts[0] + "/" + parts[1], true
	}
	return parts[0], true
}
