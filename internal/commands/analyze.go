package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/lambda-doctor/internal/output"
	"github.com/simonhull/lambda-doctor/pkg/analyzer"
	"github.com/simonhull/lambda-doctor/pkg/config"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/logger"
	"github.com/simonhull/lambda-doctor/pkg/manifest"
	"github.com/simonhull/lambda-doctor/pkg/report"
)

type analyzeOptions struct {
	out        string
	configFile string
	noSpinner  bool
}

// AnalyzeCmd creates and returns the 'analyze' command
func AnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a function project for cold-start problems",
		Long: `Runs every analyzer against the project at path (default: the current
directory) and prints a report.

The command exits 1 when any diagnostic is at or above --fail-on
(default: critical) and 2 when the target or configuration is invalid.

Examples:
  lambda-doctor analyze
  lambda-doctor analyze ./functions/api -f json -o report.json
  lambda-doctor analyze -a aws-sdk,bundler-detection --fail-on warning`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runAnalyze(cmd, path, opts)
		},
	}

	formats := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		formats = append(formats, string(f))
	}

	cmd.Flags().StringP("format", "f", string(report.FormatConsole), "Output format ("+strings.Join(formats, ", ")+")")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringSliceP("analyzers", "a", nil, "Analyzers to run (default: all of "+strings.Join(analyzer.Names(), ", ")+")")
	cmd.Flags().StringSliceP("exclude", "e", nil, "Glob patterns to skip when scanning sources")
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Config file (default: .lambda-doctor.{yml,yaml,json,toml} in path)")
	cmd.Flags().String("fail-on", string(diagnosis.SeverityCritical), "Exit 1 at this severity or worse (critical, warning, info, never)")
	cmd.Flags().BoolVar(&opts.noSpinner, "no-spinner", false, "Disable the progress spinner")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *analyzeOptions) error {
	dir, err := projectDir(path)
	if err != nil {
		return usageError(err)
	}
	if _, err := os.Stat(filepath.Join(dir, manifest.FileName)); err != nil {
		return usageError(fmt.Errorf("no %s found in %s", manifest.FileName, dir))
	}

	cfg, err := config.Load(dir, opts.configFile, cmd.Flags())
	if err != nil {
		return usageError(err)
	}
	if cfg.Verbose {
		output.SetVerbose(true)
	}
	if cfg.File != "" {
		output.Verbose("Using config " + cfg.File)
	}

	failOn, err := cfg.FailSeverity()
	if err != nil {
		return usageError(err)
	}
	format := cfg.OutputFormat()

	stdout := cmd.OutOrStdout()
	if opts.out == "" && format.Binary() && output.Interactive(stdout) {
		return usageError(fmt.Errorf("refusing to write %s to a terminal; use --out", format))
	}

	log := logger.Default()
	runner := analyzer.NewDefaultRunner(cfg.Catalog(), log)
	runOpts := analyzer.Options{
		TargetPath: dir,
		Analyzers:  cfg.Analyzers,
		Exclude:    cfg.ExcludePatterns(),
		Format:     string(format),
		Verbose:    cfg.Verbose,
	}

	output.Verbose(fmt.Sprintf("Analyzing %s with %s", dir, strings.Join(cfg.Analyzers, ", ")))

	var rep *diagnosis.Report
	run := func(ctx context.Context) error {
		var err error
		rep, err = runner.Run(ctx, runOpts)
		return err
	}

	ctx := cmd.Context()
	if opts.noSpinner || format != report.FormatConsole {
		err = run(ctx)
	} else {
		err = output.RunWithSpinner(ctx, cmd.ErrOrStderr(), "Analyzing "+filepath.Base(dir), run)
	}
	if err != nil {
		return usageError(err)
	}

	if err := writeReport(stdout, opts.out, rep, format, report.Options{Verbose: cfg.Verbose}); err != nil {
		return usageError(err)
	}

	if failOn != "" && rep.HasAtLeast(failOn) {
		log.Debug("Failing run", logger.F("failOn", failOn), logger.F("issues", rep.Summary.TotalIssues))
		return &ExitError{Code: ExitFindings}
	}
	return nil
}

// projectDir resolves path to an absolute, existing directory.
func projectDir(path string) (string, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", analyzer.ErrTargetNotFound, dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", analyzer.ErrTargetNotDirectory, dir)
	}
	return dir, nil
}

func writeReport(stdout io.Writer, out string, rep *diagnosis.Report, format report.Format, opts report.Options) error {
	if out == "" {
		return report.Write(stdout, rep, format, opts)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := report.Write(f, rep, format, opts); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	output.Success(fmt.Sprintf("Report written to %s", out))
	return nil
}
