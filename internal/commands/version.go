package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	lambdadoctor "github.com/simonhull/lambda-doctor"
)

// VersionCmd creates and returns the 'version' command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lambda-doctor version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lambda-doctor %s (%s, %s/%s)\n",
				lambdadoctor.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
