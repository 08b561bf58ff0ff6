package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd assembles galaxyctl with every subcommand
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "galaxyctl",
		Short: "Generate and manage procedural galaxies",
		Long: `galaxyctl works directly against the galaxy database configured through
the environment (DB_DRIVER, DB_SQLITE_PATH, DB_HOST, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Show info and debug logs")

	root.AddCommand(GenerateCmd())
	root.AddCommand(ResumeCmd())
	root.AddCommand(FulfillCmd())
	root.AddCommand(SectorCmd())
	root.AddCommand(SystemsCmd())
	root.AddCommand(StatsCmd())

	// Administration
	root.AddCommand(MigrateCmd())
	root.AddCommand(TokenCmd())

	return root
}
