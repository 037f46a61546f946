package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sterling-dev/sterling/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "sterling",
		Short:   "Normalize bank CSV exports into GBP statements",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newRateCommand())

	return rootCmd
}
