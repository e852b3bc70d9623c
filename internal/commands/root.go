package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	lambdadoctor "github.com/simonhull/lambda-doctor"
	"github.com/simonhull/lambda-doctor/internal/output"
	"github.com/simonhull/lambda-doctor/pkg/logger"
)

// Process exit codes.
const (
	// ExitFindings means diagnostics at or above the fail-on threshold.
	ExitFindings = 1
	// ExitUsage means a bad invocation, target or configuration.
	ExitUsage = 2
)

// ExitError carries the process exit code for a failed command. A nil
// Err means the command already reported everything it had to say.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// RootCmd creates and returns the root command for the lambda-doctor CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "lambda-doctor",
		Short: "Diagnose cold-start problems in Node.js Lambda functions",
		Long: `lambda-doctor statically inspects a packaged Node.js serverless function
and reports what makes its cold start slow:
• Oversized node_modules and individual packages
• Heavy or misplaced dependencies
• Wildcard and top-level imports
• AWS SDK v2 usage and incomplete v3 migrations
• Missing bundler setup

Nothing is executed and nothing in the project is modified.`,
		Version:       lambdadoctor.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetOutput(cmd.ErrOrStderr())
			output.SetVerbose(verbose)

			level := logger.LevelWarn
			if verbose {
				level = logger.LevelDebug
			}
			logger.SetDefault(logger.NewLogger(level, cmd.ErrOrStderr()))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and analyzer timings")

	return cmd
}

// NewApp returns the root command with every subcommand registered.
func NewApp() *cobra.Command {
	root := RootCmd()
	root.AddCommand(AnalyzeCmd())
	root.AddCommand(PackagesCmd())
	root.AddCommand(InitCmd())
	root.AddCommand(VersionCmd())
	return root
}
