package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/lambda-doctor/internal/filesystem"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/report"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	fs.StringSliceP("analyzers", "a", nil, "")
	fs.StringSliceP("exclude", "e", nil, "")
	fs.StringP("format", "f", "console", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("fail-on", "critical", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Analyzers, cfg.Analyzers)
	assert.Equal(t, filesystem.DefaultExcludePatterns, cfg.Exclude)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "critical", cfg.FailOn)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.File)
}

func TestLoad_ProjectFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: ".lambda-doctor.yml",
			content: `analyzers: [bundle-size, aws-sdk]
exclude:
  - "vendor/**"
format: json
failOn: warning
heavyPackages:
  - name: sharp
    reason: Native binaries.
    alternative: Use a layer.
    estimatedSavingsMs: 120
`,
		},
		{
			name:    "json",
			file:    ".lambda-doctor.json",
			content: `{"analyzers": ["bundle-size", "aws-sdk"], "exclude": ["vendor/**"], "format": "json", "failOn": "warning", "heavyPackages": [{"name": "sharp", "reason": "Native binaries.", "alternative": "Use a layer.", "estimatedSavingsMs": 120}]}`,
		},
		{
			name: "toml",
			file: ".lambda-doctor.toml",
			content: `analyzers = ["bundle-size", "aws-sdk"]
exclude = ["vendor/**"]
format = "json"
failOn = "warning"

[[heavyPackages]]
name = "sharp"
reason = "Native binaries."
alternative = "Use a layer."
estimatedSavingsMs = 120
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, tt.file, tt.content)

			cfg, err := Load(dir, "", nil)
			require.NoError(t, err)

			assert.Equal(t, path, cfg.File)
			assert.Equal(t, []string{"bundle-size", "aws-sdk"}, cfg.Analyzers)
			assert.Equal(t, []string{"vendor/**"}, cfg.Exclude)
			assert.Equal(t, report.FormatJSON, cfg.OutputFormat())

			sev, err := cfg.FailSeverity()
			require.NoError(t, err)
			assert.Equal(t, diagnosis.SeverityWarning, sev)

			require.Len(t, cfg.HeavyPackages, 1)
			assert.Equal(t, "sharp", cfg.HeavyPackages[0].Name)
			assert.Equal(t, 120.0, cfg.HeavyPackages[0].EstimatedSavingsMs)

			pkg, ok := cfg.Catalog().Find("sharp")
			require.True(t, ok)
			assert.Equal(t, "Use a layer.", pkg.Alternative)
			assert.True(t, cfg.Catalog().Contains("moment"))
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".lambda-doctor.yml", "format: markdown\nfailOn: info\nverbose: false\n")

	t.Setenv("LAMBDA_DOCTOR_FORMAT", "json")
	t.Setenv("LAMBDA_DOCTOR_FAIL_ON", "warning")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--fail-on", "never", "-v"}))

	cfg, err := Load(dir, "", flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format, "env beats file")
	assert.Equal(t, "never", cfg.FailOn, "flag beats env")
	assert.True(t, cfg.Verbose)

	sev, err := cfg.FailSeverity()
	require.NoError(t, err)
	assert.Empty(t, sev)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".lambda-doctor.yml", "format: markdown\n")

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(dir, "", flags)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.Format)
}

func TestLoad_ListFlagsAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LAMBDA_DOCTOR_EXCLUDE", "vendor/**,scripts/**")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"-a", "aws-sdk", "-a", "bundle-size"}))

	cfg, err := Load(dir, "", flags)
	require.NoError(t, err)

	assert.Equal(t, []string{"aws-sdk", "bundle-size"}, cfg.Analyzers)
	assert.Equal(t, []string{"vendor/**", "scripts/**"}, cfg.Exclude)
}

func TestLoad_EmptyExcludeMeansDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".lambda-doctor.yml", "exclude: []\n")

	cfg, err := Load(dir, "", nil)
	require.NoError(t, err)

	assert.Nil(t, cfg.ExcludePatterns())
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	writeConfig(t, dir, ".lambda-doctor.yml", "format: markdown\n")
	path := writeConfig(t, other, "ci.yaml", "format: json\n")

	cfg, err := Load(dir, path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)

	_, err = Load(dir, filepath.Join(other, "missing.yml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown analyzer", "analyzers: [bundle-size, cpu-profile]\n"},
		{"unknown format", "format: xml\n"},
		{"unknown fail-on", "failOn: sometimes\n"},
		{"nameless package", "heavyPackages:\n  - reason: nothing\n"},
		{"negative savings", "heavyPackages:\n  - name: x\n    estimatedSavingsMs: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, ".lambda-doctor.yml", tt.content)

			_, err := Load(dir, "", nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".lambda-doctor.yml", "format: [json\n")

	_, err := Load(dir, "", nil)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lambda-doctor.yml")

	cfg := DefaultConfig()
	cfg.FailOn = "warning"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# lambda-doctor configuration")
	assert.Contains(t, string(data), "failOn: warning")
	assert.NotContains(t, string(data), "heavyPackages")

	loaded, err := Load(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Analyzers, loaded.Analyzers)
	assert.Equal(t, cfg.Exclude, loaded.Exclude)
	assert.Equal(t, "warning", loaded.FailOn)
}
