package plot

import "math"

// Region is the window of the grid that is rendered or edited. Bounds are
// inclusive and may reach one cell outside the grid; use InGrid before
// indexing.
type Region struct {
	StartRow int `json:"startRow"`
	EndRow   int `json:"endRow"`
	StartCol int `json:"startCol"`
	EndCol   int `json:"endCol"`
}

// ComputeRegion frames the active cells with a one cell margin. A grid with no
// active cell frames the 3x3 window around the grid center.
func ComputeRegion(g Grid) Region {
	minRow, maxRow := Rows, -1
	minCol, maxCol := Cols, -1
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if !g[r][c].IsActive {
				continue
			}
			minRow = min(minRow, r)
			maxRow = max(maxRow, r)
			minCol = min(minCol, c)
			maxCol = max(maxCol, c)
		}
	}
	if maxRow < 0 {
		centerRow, centerCol := Rows/2, Cols/2
		return Region{
			StartRow: centerRow - 1,
			EndRow:   centerRow + 1,
			StartCol: centerCol - 1,
			EndCol:   centerCol + 1,
		}
	}
	return Region{
		StartRow: minRow - 1,
		EndRow:   maxRow + 1,
		StartCol: minCol - 1,
		EndCol:   maxCol + 1,
	}
}

// NumRows is the number of rows the region spans.
func (r Region) NumRows() int { return r.EndRow - r.StartRow + 1 }

// NumCols is the number of columns the region spans.
func (r Region) NumCols() int { return r.EndCol - r.StartCol + 1 }

// InGrid reports whether (row, col) lies in both the region and the grid.
func (r Region) InGrid(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow &&
		col >= r.StartCol && col <= r.EndCol &&
		InBounds(row, col)
}

// Canvas is the pannable editor surface: the region drawn at EditorCellSize
// pixels per cell, offset so that it starts centered in the window.
type Canvas struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// EditorCanvas sizes the editor surface for region and centers it in a window
// of the given size.
func EditorCanvas(region Region, windowW, windowH float64) Canvas {
	w := float64(region.NumCols() * EditorCellSize)
	h := float64(region.NumRows() * EditorCellSize)
	return Canvas{
		Width:   w,
		Height:  h,
		OffsetX: (windowW - w) / 2,
		OffsetY: (windowH - h) / 2,
	}
}

// Layout places the read-only garden view: square cells scaled so the whole
// region fits the window, with the container centered.
type Layout struct {
	CellSize float64 `json:"cellSize"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Top      float64 `json:"top"`
	Left     float64 `json:"left"`
}

// GardenLayout scales region into a window of the given size.
func GardenLayout(region Region, windowW, windowH float64) Layout {
	rows, cols := float64(region.NumRows()), float64(region.NumCols())
	size := math.Min(windowW/cols, windowH/rows)
	w, h := size*cols, size*rows
	return Layout{
		CellSize: size,
		Width:    w,
		Height:   h,
		Top:      (windowH - h) / 2,
		Left:     (windowW - w) / 2,
	}
}

// Position is the top-left pixel of cell (row, col) inside a garden layout.
func (l Layout) Position(region Region, row, col int) (left, top float64) {
	return float64(col-region.StartCol) * l.CellSize, float64(row-region.StartRow) * l.CellSize
}
