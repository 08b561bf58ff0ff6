package cli

import (
	"fmt"
	"text/tabwriter"

	"galaxy-server/internal/galaxy"

	"github.com/spf13/cobra"
)

func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a complete galaxy",
		Long: `Create a root sector for the given region and fulfill every future
beneath it until only star systems remain at the leaves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			radius, _ := cmd.Flags().GetFloat64("radius")
			stars, _ := cmd.Flags().GetFloat64("stars")

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Galaxy.Generate(cmd.Context(), radius, stars)
			if err != nil {
				return fmt.Errorf("failed to generate galaxy: %w", err)
			}

			printf(cmd.OutOrStdout(), "%s Generated galaxy rooted at sector %d\n", success, report.RootID)
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().Float64("radius", 1000, "Radius of the galaxy")
	cmd.Flags().Float64("stars", 10000, "Number of stars to place")
	return cmd
}

func ResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume [sector-id]",
		Short: "Fulfill every pending future below a sector",
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

			report, err := app.Galaxy.Resume(cmd.Context(), sectorID)
			if err != nil {
				return fmt.Errorf("failed to resume sector %d: %w", sectorID, err)
			}

			printf(cmd.OutOrStdout(), "%s Resumed sector %d\n", success, sectorID)
			printReport(cmd, report)
			return nil
		},
	}
}

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show object counts for the stored galaxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.Galaxy.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tCOUNT")
			fmt.Fprintln(w, "----\t-----")
			fmt.Fprintf(w, "roots\t%d\n", stats.Roots)
			fmt.Fprintf(w, "sectors\t%d\n", stats.Sectors)
			fmt.Fprintf(w, "futures\t%d\n", stats.SectorFutures)
			fmt.Fprintf(w, "systems\t%d\n", stats.Systems)
			fmt.Fprintf(w, "links\t%d\n", stats.Links)
			return w.Flush()
		},
	}
}

func printReport(cmd *cobra.Command, report *galaxy.Report) {
	out := cmd.OutOrStdout()
	printf(out, "  Sectors: %d\n", report.Sectors)
	printf(out, "  Systems: %d\n", report.Systems)
	printf(out, "  Links:   %d\n", report.Links)
	if report.ExhaustedBatches > 0 {
		printf(out, "  %s %d link batches fell short of their target\n", warning, report.ExhaustedBatches)
	}
	printf(out, "  Took:    %s\n", report.Duration)
}
