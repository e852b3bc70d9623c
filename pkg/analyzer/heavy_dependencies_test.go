package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
)

func TestHeavyDependencies_FlagsCatalogEntries(t *testing.T) {
	dir := newProject(t, `{
		"dependencies": {"express": "^4.18.0", "zod": "^3.0.0", "moment": "^2.29.0"},
		"devDependencies": {"lodash": "^4.17.21"}
	}`)

	res := NewHeavyDependencies(catalog(), silent()).Analyze(context.Background(), dir, nil)

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, "Heavy dependency: express", res.Diagnostics[0].Title)
	assert.Equal(t, "Heavy dependency: moment", res.Diagnostics[1].Title)

	moment, _ := catalog().Find("moment")
	d := res.Diagnostics[1]
	assert.Equal(t, diagnosis.SeverityWarning, d.Severity)
	assert.Equal(t, moment.Reason, d.Description)
	assert.Equal(t, moment.Alternative, d.Recommendation)
	assert.Equal(t, moment.EstimatedSavingsMs, d.EstimatedImpactMs)
	assert.Equal(t, "package.json", d.FilePath)

	heavyCount, _ := res.Metadata.Int(diagnosis.KeyHeavyCount)
	total, _ := res.Metadata.Int("totalDependencies")
	dev, _ := res.Metadata.Int("totalDevDependencies")
	assert.Equal(t, 2, heavyCount)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, dev)
}

func TestHeavyDependencies_DevToolInProduction(t *testing.T) {
	dir := newProject(t, `{"dependencies": {"typescript": "^5.0.0", "jest": "^29.0.0"}}`)

	res := NewHeavyDependencies(catalog(), silent()).Analyze(context.Background(), dir, nil)

	critical := bySeverity(res.Diagnostics, diagnosis.SeverityCritical)
	require.Len(t, critical, 2)

	assert.Contains(t, critical[0].Title, "typescript")
	assert.Equal(t, `Dev tool "typescript" in production dependencies`, critical[0].Title)
	assert.Equal(t, `Move "typescript" from "dependencies" to "devDependencies".`, critical[0].Recommendation)
	assert.Equal(t, 500.0, critical[0].EstimatedImpactMs)

	assert.Equal(t, `Dev tool "jest" in production dependencies`, critical[1].Title)
	assert.Equal(t, 100.0, critical[1].EstimatedImpactMs, "tools without a catalog entry use the default")

	// typescript is also in the catalog, so it is counted as heavy too.
	warnings := bySeverity(res.Diagnostics, diagnosis.SeverityWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Heavy dependency: typescript", warnings[0].Title)
}

func TestHeavyDependencies_DevDependenciesIgnored(t *testing.T) {
	dir := newProject(t, `{"devDependencies": {"typescript": "^5.0.0", "moment": "^2.0.0"}}`)

	res := NewHeavyDependencies(catalog(), silent()).Analyze(context.Background(), dir, nil)

	assert.Empty(t, res.Diagnostics)
}

func TestHeavyDependencies_ExtendedCatalog(t *testing.T) {
	dir := newProject(t, `{"dependencies": {"sharp": "^0.33.0"}}`)
	extended := heavy.Default().Extend([]heavy.Package{{
		Name:               "sharp",
		Reason:             "Native image library with large binaries.",
		Alternative:        "Offload image processing to a dedicated function.",
		EstimatedSavingsMs: 120,
	}})

	res := NewHeavyDependencies(extended, silent()).Analyze(context.Background(), dir, nil)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "Heavy dependency: sharp", res.Diagnostics[0].Title)
	assert.Equal(t, 120.0, res.Diagnostics[0].EstimatedImpactMs)
}

func TestHeavyDependencies_SoftFailures(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"malformed json", `{"dependencies": {`},
		{"no manifest", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.manifest != "" {
				writeFile(t, dir, "package.json", tt.manifest)
			}

			res := NewHeavyDependencies(catalog(), silent()).Analyze(context.Background(), dir, nil)

			assert.Equal(t, diagnosis.HeavyDependencies, res.Analyzer)
			assert.NotNil(t, res.Diagnostics)
			assert.Empty(t, res.Diagnostics)
		})
	}
}
