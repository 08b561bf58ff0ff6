package cli

import (
	"fmt"
	"text/tabwriter"

	"galaxy-server/internal/system"

	"github.com/spf13/cobra"
)

func SystemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "systems",
		Short: "List star systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			sectorID, _ := cmd.Flags().GetInt64("sector")

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			var systems []system.StarSystem
			if sectorID > 0 {
				systems, err = app.Systems.GetSystemsBySectorID(cmd.Context(), sectorID)
			} else {
				systems, err = app.Systems.ListSystems(cmd.Context(), limit, offset)
			}
			if err != nil {
				return fmt.Errorf("failed to list systems: %w", err)
			}

			if len(systems) == 0 {
				printf(cmd.OutOrStdout(), "No star systems found\n")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSECTOR")
			fmt.Fprintln(w, "--\t----\t------")
			for _, s := range systems {
				fmt.Fprintf(w, "%d\t%s\t%d\n", s.ID, s.Name, s.SectorID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum number of systems (server default when 0)")
	cmd.Flags().Int("offset", 0, "Number of systems to skip")
	cmd.Flags().Int64("sector", 0, "Only list systems of this sector")
	return cmd
}
