package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/lambda-doctor/internal/input"
	"github.com/simonhull/lambda-doctor/internal/output"
	"github.com/simonhull/lambda-doctor/pkg/config"
)

// InitCmd creates and returns the 'init' command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default .lambda-doctor.yml",
		Long: `Writes a .lambda-doctor.yml with the default settings into path
(default: the current directory). An existing file is only replaced after
confirmation, or with --force.

Example:
  lambda-doctor init ./functions/api`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			dir, err := projectDir(path)
			if err != nil {
				return usageError(err)
			}

			file := filepath.Join(dir, config.FileNames[0])
			if _, err := os.Stat(file); err == nil && !force {
				question := fmt.Sprintf("%s already exists. Overwrite?", config.FileNames[0])
				if !input.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question, false) {
					output.Info("Kept existing " + file)
					return nil
				}
			}

			if err := config.Save(file, config.DefaultConfig()); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}

			output.Success("Created " + file)
			output.Info("Next steps:")
			output.Step("Add project-specific heavyPackages or exclude patterns")
			output.Step("lambda-doctor analyze " + path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config without asking")

	return cmd
}
