// Package filesystem walks Node.js project trees with glob-based
// exclusion.
//
// # Overview
//
// Patterns are slash-separated and relative to the walk root, using
// doublestar syntax ("**" crosses directories):
//   - "node_modules/**" prunes the top-level node_modules directory
//   - "**/*.test.*" skips test files anywhere
//   - "**/__tests__/**" prunes every __tests__ directory
//
// # Usage
//
// Collect source files honoring the default excludes:
//
//	files, err := filesystem.SourceFiles(ctx, root, filesystem.DefaultExcludePatterns)
//	for _, rel := range files {
//	    fmt.Println(rel) // e.g. "src/handler.ts"
//	}
//
// Look for config files at the project root:
//
//	found, err := filesystem.GlobRoot(root, []string{"webpack.config.*", ".swcrc"})
package filesystem
