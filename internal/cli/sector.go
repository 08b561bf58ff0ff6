package cli

import (
	"fmt"
	"text/tabwriter"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/sector"

	"github.com/spf13/cobra"
)

func SectorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sector",
		Short: "Inspect and edit sectors",
		Long:  "Expand, browse, defer, and delete sectors of the stored galaxy",
	}

	cmd.AddCommand(sectorExpandCmd())
	cmd.AddCommand(sectorShowCmd())
	cmd.AddCommand(sectorRootsCmd())
	cmd.AddCommand(sectorFutureCmd())
	cmd.AddCommand(sectorDeleteCmd())
	return cmd
}

func sectorExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Create one sector and generate its immediate contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stars, _ := cmd.Flags().GetFloat64("stars")
			radius, _ := cmd.Flags().GetFloat64("radius")
			parent, _ := cmd.Flags().GetInt64("parent")

			req := galaxy.ExpandRequest{Stars: stars, Radius: radius}
			if parent > 0 {
				req.ParentID = &parent
			}

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			expansion, err := app.Galaxy.Expand(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to expand sector: %w", err)
			}

			printExpansion(cmd, "Expanded", expansion)
			return nil
		},
	}

	cmd.Flags().Float64("stars", 100, "Number of stars in the region")
	cmd.Flags().Float64("radius", 100, "Radius of the region")
	cmd.Flags().Int64("parent", 0, "Parent sector ID (root when omitted)")
	return cmd
}

func sectorShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [sector-id]",
		Short: "Show a sector with its children and links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sectorID, err := parseID(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			detail, err := app.Sectors.Detail(cmd.Context(), sectorID)
			if err != nil {
				return fmt.Errorf("failed to load sector %d: %w", sectorID, err)
			}

			out := cmd.OutOrStdout()
			printf(out, "Sector %d", detail.Sector.ID)
			if detail.Sector.ParentID != nil {
				printf(out, " (parent %d)", *detail.Sector.ParentID)
			}
			printf(out, "\n\n")

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tNAME\tSTARS\tRADIUS")
			fmt.Fprintln(w, "--\t----\t----\t-----\t------")
			for _, s := range detail.Sectors {
				fmt.Fprintf(w, "%d\tsector\t-\t-\t-\n", s.ID)
			}
			for _, f := range detail.Futures {
				fmt.Fprintf(w, "%d\tfuture\t-\t%.1f\t%.2f\n", f.ID, f.Stars, f.Radius)
			}
			for _, s := range detail.Systems {
				fmt.Fprintf(w, "%d\tsystem\t%s\t-\t-\n", s.ID, s.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			printf(out, "\n%d links\n", len(detail.Links))
			return nil
		},
	}
}

func sectorRootsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roots",
		Short: "List root sectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			roots, err := app.Galaxy.Roots(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list roots: %w", err)
			}

			if len(roots) == 0 {
				printf(cmd.OutOrStdout(), "No root sectors found\n")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID")
			fmt.Fprintln(w, "--")
			for _, root := range roots {
				fmt.Fprintf(w, "%d\n", root.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum number of roots (server default when 0)")
	cmd.Flags().Int("offset", 0, "Number of roots to skip")
	return cmd
}

func sectorFutureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "future [parent-id]",
		Short: "Attach an unexpanded region below a sector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := parseID(args[0])
			if err != nil {
				return err
			}
			stars, _ := cmd.Flags().GetFloat64("stars")
			radius, _ := cmd.Flags().GetFloat64("radius")

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			future, err := app.Galaxy.CreateFuture(cmd.Context(), parentID, galaxy.FutureRequest{Stars: stars, Radius: radius})
			if err != nil {
				return fmt.Errorf("failed to create future: %w", err)
			}

			printf(cmd.OutOrStdout(), "%s Created future %d under sector %d\n", success, future.ID, future.ParentID)
			printf(cmd.OutOrStdout(), "  Stars: %.1f\n  Radius: %.2f\n", future.Stars, future.Radius)
			return nil
		},
	}

	cmd.Flags().Float64("stars", 100, "Number of stars in the region")
	cmd.Flags().Float64("radius", 100, "Radius of the region")
	return cmd
}

func sectorDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [sector-id]",
		Short: "Delete a sector and everything beneath it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sectorID, err := parseID(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			deletion, err := app.Galaxy.DeleteSector(cmd.Context(), sectorID)
			if err != nil {
				return fmt.Errorf("failed to delete sector %d: %w", sectorID, err)
			}

			out := cmd.OutOrStdout()
			printf(out, "%s Deleted sector %d\n", success, deletion.SectorID)
			printf(out, "  Sectors: %d\n  Futures: %d\n  Systems: %d\n  Links:   %d\n",
				deletion.Sectors, deletion.Futures, deletion.Systems, deletion.Links)
			return nil
		},
	}
}

func FulfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fulfill [future-id]",
		Short: "Materialize one future into a sector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			futureID, err := parseID(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			expansion, err := app.Galaxy.Fulfill(cmd.Context(), futureID)
			if err != nil {
				return fmt.Errorf("failed to fulfill future %d: %w", futureID, err)
			}

			printExpansion(cmd, "Fulfilled", expansion)
			return nil
		},
	}
}

func printExpansion(cmd *cobra.Command, verb string, expansion *sector.Expansion) {
	out := cmd.OutOrStdout()
	printf(out, "%s %s sector %d\n", success, verb, expansion.Sector.ID)
	if expansion.Systems > 0 {
		printf(out, "  Systems: %d\n", expansion.Systems)
	}
	if len(expansion.Futures) > 0 {
		printf(out, "  Futures: %d\n", len(expansion.Futures))
	}
	printf(out, "  Links:   %d/%d\n", expansion.Links, expansion.LinksRequested)
	if expansion.LinksExhausted {
		printf(out, "  %s link target not reached\n", warning)
	}
}
