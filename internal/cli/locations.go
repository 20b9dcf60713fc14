package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/crimeguessr/internal/api/response"
)

func newLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage the crime location pool",
	}

	cmd.AddCommand(newLocationsStatsCmd())
	cmd.AddCommand(newLocationsImportCmd())

	return cmd
}

func newLocationsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many locations are loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.LocationStats

			if err := client.Get(cmd.Context(), "/api/v1/locations/stats", &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}

func newLocationsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the location pool with a CSV dataset",
		Long: `Upload a crime dataset to the server. The file needs a header row with
Latitude and Longitude columns; OFNS_DESC and BORO_NM are used when present.
Rows without usable coordinates are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			defer func() { _ = f.Close() }()

			var result response.ImportResult

			if err := client.PostCSV(cmd.Context(), "/api/v1/locations", f, &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}
