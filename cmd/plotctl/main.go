// Command plotctl inspects and repairs plot grids directly in the document
// store the API server uses.
package main

import (
	"context"
	"fmt"
	"os"

	"garden-application-api-server/config"
	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/logging"
	"garden-application-api-server/internal/plot"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "plotctl",
	Short: "Inspect and repair garden plot grids",
	Long: `plotctl works on the squares collection of the configured document store.

Available subcommands:
  show   - Print the framed region of a plot
  reset  - Overwrite a plot with an empty grid
  export - Write a plot's planting log to an .xlsx file`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "directory holding config.yaml")
	rootCmd.AddCommand(showCmd, resetCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRepository opens the configured store. The caller closes it.
func openRepository(ctx context.Context) (plot.Repository, docstore.Store, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return plot.Repository{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New("warn")
	if err != nil {
		return plot.Repository{}, nil, err
	}
	store, err := docstore.Open(ctx, cfg, logger)
	if err != nil {
		return plot.Repository{}, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return plot.Repository{Store: store}, store, nil
}

// withRepository runs fn against the configured store and closes it.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, repo plot.Repository) error) error {
	ctx := cmd.Context()
	repo, store, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	return fn(ctx, repo)
}
