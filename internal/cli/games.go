package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/crimeguessr/internal/api/response"
)

func newGamesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List recently completed games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1")
			}

			var result response.GameList

			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/games?limit=%d", limit), &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of games to show")

	return cmd
}
