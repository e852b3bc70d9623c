package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludePatterns skip build output, tests, coverage and
// packaged deployment artifacts.
var DefaultExcludePatterns = []string{
	"node_modules/**",
	"dist/**",
	"build/**",
	"coverage/**",
	"**/*.d.ts",
	"**/__tests__/**",
	"**/*.test.*",
	"**/*.spec.*",
	"**/test/**",
	"**/tests/**",
	"**/cypress/**",
	"**/.serverless/**",
	"**/cdk.out/**",
}

// SourceExtensions are the file extensions treated as function source.
var SourceExtensions = []string{".ts", ".js", ".mjs", ".cjs", ".mts", ".cts"}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	Exclude       []string // Glob patterns relative to the root
	IncludeHidden bool     // Include dot files and dot directories
}

// Walk visits every regular file under root that is not excluded.
// The visitor receives the slash-separated path relative to root.
// Unreadable subdirectories are skipped; an unreadable root is an error.
func Walk(ctx context.Context, root string, opts WalkOptions, visitor func(rel string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if prunes(rel, opts.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || Excluded(rel, opts.Exclude) {
			return nil
		}
		return visitor(rel, d)
	})
}

// Excluded reports whether the relative file path matches any pattern.
// Malformed patterns never match.
func Excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// prunes reports whether a directory is wholly excluded: some pattern
// matches the directory itself ("legacy", "**/vendor") or has the form
// "<dir-pattern>/**" with the prefix matching it.
func prunes(dir string, patterns []string) bool {
	for _, p := range patterns {
		if match, _ := doublestar.Match(p, dir); match {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "/**"); ok {
			if match, _ := doublestar.Match(prefix, dir); match {
				return true
			}
		}
	}
	return false
}

// SourceFiles returns the non-excluded, non-hidden source files under
// root as sorted slash-separated relative paths.
func SourceFiles(ctx context.Context, root string, exclude []string) ([]string, error) {
	var files []string
	err := Walk(ctx, root, WalkOptions{Exclude: exclude}, func(rel string, d fs.DirEntry) error {
		if slices.Contains(SourceExtensions, filepath.Ext(rel)) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning source files: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// GlobRoot matches patterns against root and returns the sorted,
// de-duplicated relative matches. Dot files are matched.
func GlobRoot(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var found []string
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("globbing %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}
	slices.Sort(found)
	return found, nil
}
