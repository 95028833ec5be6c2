package main

import (
	"context"
	"fmt"
	"time"

	"garden-application-api-server/internal/plot"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

const logSheet = "Planting log"

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <plotId>",
	Short: "Write a plot's planting log to an .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo plot.Repository) error {
			g, err := repo.Fetch(ctx, args[0])
			if err != nil {
				return fmt.Errorf("fetch plot %s: %w", args[0], err)
			}
			n, err := writePlantingLog(g, exportOut)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cells to %s\n", n, exportOut)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "planting-log.xlsx", "output file")
}

var logHeader = []any{"Row", "Col", "Plant Type", "Plant Name", "Date Planted", "Watered", "Harvested"}

// writePlantingLog saves one spreadsheet row per active cell, in grid order,
// and returns the number of rows written.
func writePlantingLog(g plot.Grid, path string) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", logSheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(logSheet, "A1", &logHeader); err != nil {
		return 0, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(logSheet, "A1", "G1", bold); err != nil {
		return 0, err
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return 0, err
	}

	n := 0
	for row := 0; row < plot.Rows; row++ {
		for col := 0; col < plot.Cols; col++ {
			c := g[row][col]
			if !c.IsActive {
				continue
			}
			n++
			line := []any{row, col, string(c.PlantType), stringOrBlank(c.PlantName),
				dateOrBlank(c.DatePlanted), dateOrBlank(c.WateredDate), dateOrBlank(c.HarvestedDate)}
			cell, err := excelize.CoordinatesToCellName(1, n+1)
			if err != nil {
				return 0, err
			}
			if err := f.SetSheetRow(logSheet, cell, &line); err != nil {
				return 0, err
			}
		}
	}
	if n > 0 {
		last, err := excelize.CoordinatesToCellName(7, n+1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(logSheet, "E2", last, dateStyle); err != nil {
			return 0, err
		}
	}
	if err := f.SetColWidth(logSheet, "C", "G", 16); err != nil {
		return 0, err
	}
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save %s: %w", path, err)
	}
	return n, nil
}

func stringOrBlank(s *string) any {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrBlank(t *time.Time) any {
	if t == nil {
		return ""
	}
	return *t
}
