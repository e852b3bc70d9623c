package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestSourceFiles_DefaultExcludes(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"handler.ts":                   "",
		"src/util.js":                  "",
		"src/esm.mjs":                  "",
		"src/types.d.ts":               "",
		"src/util.test.ts":             "",
		"src/__tests__/a.ts":           "",
		"test/setup.js":                "",
		"node_modules/lodash/index.js": "",
		"dist/handler.js":              "",
		"cdk.out/asset/index.js":       "",
		".hidden/secret.js":            "",
		"README.md":                    "",
	})

	files, err := SourceFiles(context.Background(), tmpDir, DefaultExcludePatterns)
	require.NoError(t, err)

	assert.Equal(t, []string{"handler.ts", "src/esm.mjs", "src/util.js"}, files)
}

func TestSourceFiles_NoExcludes(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.ts":                 "",
		"dist/b.js":            "",
		"node_modules/x/i.js":  "",
		"src/handler.spec.cjs": "",
	})

	files, err := SourceFiles(context.Background(), tmpDir, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.ts", "dist/b.js", "node_modules/x/i.js", "src/handler.spec.cjs"}, files)
}

func TestSourceFiles_DirectoryPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"handler.ts":              "",
		"legacy/old.js":           "",
		"legacy/deep/older.js":    "",
		"src/vendor/lib.js":       "",
		"vendor/top.js":           "",
		"src/legacy-adapter.ts":   "",
		"packages/a/generated.ts": "",
	})

	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{
			name:    "bare directory",
			exclude: []string{"legacy"},
			want:    []string{"handler.ts", "packages/a/generated.ts", "src/legacy-adapter.ts", "src/vendor/lib.js", "vendor/top.js"},
		},
		{
			name:    "directory at any depth",
			exclude: []string{"**/vendor"},
			want:    []string{"handler.ts", "legacy/deep/older.js", "legacy/old.js", "packages/a/generated.ts", "src/legacy-adapter.ts"},
		},
		{
			name:    "single-star directory",
			exclude: []string{"packages/*"},
			want:    []string{"handler.ts", "legacy/deep/older.js", "legacy/old.js", "src/legacy-adapter.ts", "src/vendor/lib.js", "vendor/top.js"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := SourceFiles(context.Background(), tmpDir, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, files)
		})
	}
}

func TestWalk_PrunedDirectoryIsNotEntered(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"legacy/old.js": "", "a.ts": ""})

	var dirs []string
	err := Walk(context.Background(), tmpDir, WalkOptions{Exclude: []string{"legacy"}}, func(rel string, d fs.DirEntry) error {
		dirs = append(dirs, rel)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts"}, dirs)
}

func TestWalk_IncludeHidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".package-lock.json": "{}",
		"lodash/index.js":    "x",
		".bin/tsc":           "x",
	})

	var visited []string
	err := Walk(context.Background(), tmpDir, WalkOptions{IncludeHidden: true}, func(rel string, d fs.DirEntry) error {
		visited = append(visited, rel)
		return nil
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{".package-lock.json", "lodash/index.js", ".bin/tsc"}, visited)
}

func TestSourceFiles_SkipsSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	shared := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"handler.ts": ""})
	writeTree(t, shared, map[string]string{"lib/util.ts": "", "one.ts": ""})
	if err := os.Symlink(filepath.Join(shared, "lib"), filepath.Join(tmpDir, "lib")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(shared, "one.ts"), filepath.Join(tmpDir, "one.ts")))

	files, err := SourceFiles(context.Background(), tmpDir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"handler.ts"}, files)
}

func TestWalk_MissingRoot(t *testing.T) {
	err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), WalkOptions{}, func(string, fs.DirEntry) error {
		return nil
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalk_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"a.ts": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SourceFiles(ctx, tmpDir, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		rel      string
		patterns []string
		want     bool
	}{
		{"src/a.test.ts", DefaultExcludePatterns, true},
		{"src/a.ts", DefaultExcludePatterns, false},
		{"lib/types.d.ts", DefaultExcludePatterns, true},
		{"pkg/tests/fixture.js", DefaultExcludePatterns, true},
		{"src/a.ts", []string{"src/*.ts"}, true},
		{"src/deep/a.ts", []string{"src/*.ts"}, false},
		{"src/a.ts", []string{"[invalid"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, Excluded(tt.rel, tt.patterns))
		})
	}
}

func TestGlobRoot(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"esbuild.config.mjs":       "",
		".swcrc":                   "",
		"nested/webpack.config.js": "",
	})

	found, err := GlobRoot(tmpDir, []string{"webpack.config.*", "esbuild.config.*", ".swcrc", "esbuild.config.*"})
	require.NoError(t, err)

	assert.Equal(t, []string{".swcrc", "esbuild.config.mjs"}, found)
}
