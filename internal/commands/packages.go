package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simonhull/lambda-doctor/internal/output"
	"github.com/simonhull/lambda-doctor/pkg/config"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/report"
)

const defaultWrapWidth = 100

// PackagesCmd creates and returns the 'packages' command
func PackagesCmd() *cobra.Command {
	var (
		dir        string
		configFile string
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "packages [query]",
		Short: "List the heavy packages lambda-doctor knows about",
		Long: `Lists the heavy-package catalog, including heavyPackages entries from the
project config, with each package's typical size, the reason it hurts
cold starts and a lighter alternative.

An optional query fuzzy-matches package names.

Examples:
  lambda-doctor packages
  lambda-doctor packages aws`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dir, configFile, nil)
			if err != nil {
				return usageError(err)
			}

			pkgs := cfg.Catalog().All()
			query := ""
			if len(args) > 0 {
				query = strings.TrimSpace(args[0])
				pkgs = filterPackages(pkgs, query)
				if len(pkgs) == 0 {
					output.Warn(fmt.Sprintf("No heavy packages match %q", query))
					return nil
				}
			}

			md := packagesMarkdown(pkgs, query)
			out := cmd.OutOrStdout()
			if raw || !output.Interactive(out) {
				_, err := io.WriteString(out, md)
				return err
			}
			return renderMarkdown(out, md)
		},
	}

	cmd.Flags().StringVarP(&dir, "path", "p", ".", "Project directory whose config extends the catalog")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file to read heavyPackages from")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print Markdown without terminal rendering")

	return cmd
}

// filterPackages keeps the packages whose names fuzzy-match query, best
// match first.
func filterPackages(pkgs []heavy.Package, query string) []heavy.Package {
	names := make([]string, len(pkgs))
	for i, p := range pkgs {
		names[i] = p.Name
	}

	matches := fuzzy.Find(query, names)
	out := make([]heavy.Package, 0, len(matches))
	for _, m := range matches {
		out = append(out, pkgs[m.Index])
	}
	return out
}

func packagesMarkdown(pkgs []heavy.Package, query string) string {
	var b strings.Builder

	if query != "" {
		fmt.Fprintf(&b, "# Heavy packages matching `%s` (%d)\n\n", query, len(pkgs))
	} else {
		fmt.Fprintf(&b, "# Heavy packages (%d)\n\n", len(pkgs))
	}

	for _, p := range pkgs {
		fmt.Fprintf(&b, "## %s\n\n", p.Name)

		var facts []string
		if p.TypicalSizeBytes > 0 {
			facts = append(facts, "~"+report.FormatBytes(p.TypicalSizeBytes)+" installed")
		}
		if p.EstimatedSavingsMs > 0 {
			facts = append(facts, "saves ~"+strconv.FormatFloat(p.EstimatedSavingsMs, 'f', -1, 64)+"ms of cold start")
		}
		if len(facts) > 0 {
			fmt.Fprintf(&b, "_%s_\n\n", strings.Join(facts, ", "))
		}
		if p.Reason != "" {
			fmt.Fprintf(&b, "%s\n\n", p.Reason)
		}
		if p.Alternative != "" {
			fmt.Fprintf(&b, "**Alternative:** %s\n\n", p.Alternative)
		}
	}
	return b.String()
}

func renderMarkdown(w io.Writer, md string) error {
	width := defaultWrapWidth
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = min(cols, defaultWrapWidth)
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}

	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering packages: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}
