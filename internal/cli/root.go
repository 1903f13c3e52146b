package cli

import (
	"github.com/spf13/cobra"
)

var verbose bool

// NewRootCmd returns the root command for starctl.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "starctl",
		Short:         "Export Mastodon favourites and bookmarks as RSS",
		Long:          "starctl builds the same RSS feed the star-collector service serves, as a one-shot export to a file or stdout.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
