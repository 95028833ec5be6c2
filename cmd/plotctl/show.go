package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"garden-application-api-server/internal/plot"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <plotId>",
	Short: "Print the framed region of a plot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo plot.Repository) error {
			g, err := repo.Fetch(ctx, args[0])
			if err != nil {
				return fmt.Errorf("fetch plot %s: %w", args[0], err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderGrid(g))
			return err
		})
	},
}

// plantCodes are the two-letter labels printed for planted cells.
var plantCodes = map[plot.PlantType]string{
	plot.PlantTomatoes:     "TO",
	plot.PlantCarrots:      "CA",
	plot.PlantBeets:        "BT",
	plot.PlantCorn:         "CO",
	plot.PlantLettuce:      "LE",
	plot.PlantBeans:        "BN",
	plot.PlantBroccoli:     "BR",
	plot.PlantCucumbers:    "CU",
	plot.PlantPotatoes:     "PO",
	plot.PlantPeanuts:      "PN",
	plot.PlantBlackberries: "BK",
	plot.PlantBlueberries:  "BU",
	plot.PlantStrawberries: "ST",
	plot.PlantBasil:        "BA",
	plot.PlantParsley:      "PA",
}

func cellLabel(c plot.Cell) string {
	if !c.IsActive {
		return " ."
	}
	if code, ok := plantCodes[c.PlantType]; ok {
		return code
	}
	return "[]"
}

// renderGrid draws the region ComputeRegion frames, one line per row, with
// row and column numbers. Positions of the frame outside the grid are blank.
func renderGrid(g plot.Grid) string {
	region := plot.ComputeRegion(g)
	var b strings.Builder

	b.WriteString("   ")
	for col := region.StartCol; col <= region.EndCol; col++ {
		fmt.Fprintf(&b, " %2d", col)
	}
	b.WriteByte('\n')

	for row := region.StartRow; row <= region.EndRow; row++ {
		fmt.Fprintf(&b, "%2d ", row)
		for col := region.StartCol; col <= region.EndCol; col++ {
			label := "  "
			if region.InGrid(row, col) {
				label = cellLabel(g[row][col])
			}
			b.WriteString(" " + label)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d active cells\n", g.ActiveCount())
	return b.String()
}
