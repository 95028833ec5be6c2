package main

import (
	"context"
	"fmt"

	"garden-application-api-server/internal/plot"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <plotId>",
	Short: "Overwrite a plot with an empty grid",
	Long: `reset replaces squares/<plotId> with 400 inactive cells.

A running API server keeps its mounted copy of the plot until the session is
evicted or the server restarts, and its next edit writes that copy back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo plot.Repository) error {
			if _, err := repo.Seed(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plot %s reset\n", args[0])
			return nil
		})
	},
}
