package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/logger"
)

// writeFile creates root/rel with content, making parent directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// writeSized creates a sparse file of the given logical size.
func writeSized(t *testing.T, root, rel string, size int64) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
}

// newProject creates a temp project with the given package.json body.
func newProject(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "package.json", manifest)
	return dir
}

func silent() logger.Logger {
	return logger.NewSilentLogger()
}

func catalog() *heavy.Catalog {
	return heavy.Default()
}

// titled returns the diagnostics whose title contains substr.
func titled(diags []diagnosis.Diagnostic, substr string) []diagnosis.Diagnostic {
	var out []diagnosis.Diagnostic
	for _, d := range diags {
		if strings.Contains(d.Title, substr) {
			out = append(out, d)
		}
	}
	return out
}

// bySeverity returns the diagnostics with severity s.
func bySeverity(diags []diagnosis.Diagnostic, s diagnosis.Severity) []diagnosis.Diagnostic {
	var out []diagnosis.Diagnostic
	for _, d := range diags {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}
