// Package plot holds the 20x20 planting grid of a garden plot: the in-memory
// cell matrix and its mutations, the framing region used for rendering, the
// flat record form persisted in the document store, and the per-plot session
// that owns a grid while it is being edited.
package plot

import "time"

// Grid dimensions and the editor cell size in pixels. These are fixed.
const (
	Rows           = 20
	Cols           = 20
	EditorCellSize = 80
)

// Cell is one square of the plot. When IsActive is false every planting field
// is absent.
type Cell struct {
	IsActive      bool       `json:"isActive"`
	PlantType     PlantType  `json:"plantType,omitempty"`
	PlantName     *string    `json:"plantName"`
	DatePlanted   *time.Time `json:"datePlanted"`
	WateredDate   *time.Time `json:"wateredDate"`
	HarvestedDate *time.Time `json:"harvestedDate"`
}

// Grid is the row-major cell matrix of one plot. It is a value type: copying a
// Grid copies every cell, so the mutation functions below never touch the
// caller's grid.
type Grid [Rows][Cols]Cell

// CellDetail is the editable planting data of an active cell.
type CellDetail struct {
	PlantName     *string
	PlantType     PlantType
	DatePlanted   *time.Time
	WateredDate   *time.Time
	HarvestedDate *time.Time
}

// CreateEmpty returns a grid with every cell inactive and unplanted.
func CreateEmpty() Grid {
	return Grid{}
}

// InBounds reports whether (row, col) addresses a cell of the grid.
func InBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// ToggleCell flips the active flag of one cell. A newly active cell gets the
// Empty placeholder, a newly inactive one loses all planting data.
// Out-of-range coordinates return g unchanged.
func ToggleCell(g Grid, row, col int) Grid {
	if !InBounds(row, col) {
		return g
	}
	if g[row][col].IsActive {
		g[row][col] = Cell{}
	} else {
		g[row][col] = Cell{IsActive: true, PlantType: PlantEmpty}
	}
	return g
}

// SetCellDetail records planting data for an active cell. Choosing the Empty
// plant type clears the name and all dates whatever was supplied; any other
// value is stored as given. Out-of-range or inactive cells return g unchanged.
func SetCellDetail(g Grid, row, col int, d CellDetail) Grid {
	if !InBounds(row, col) || !g[row][col].IsActive {
		return g
	}
	if d.PlantType == PlantEmpty {
		g[row][col] = Cell{IsActive: true, PlantType: PlantEmpty}
		return g
	}
	g[row][col] = Cell{
		IsActive:      true,
		PlantType:     d.PlantType,
		PlantName:     copyString(d.PlantName),
		DatePlanted:   normalizeTime(d.DatePlanted),
		WateredDate:   normalizeTime(d.WateredDate),
		HarvestedDate: normalizeTime(d.HarvestedDate),
	}
	return g
}

// ActiveCount returns the number of active cells.
func (g *Grid) ActiveCount() int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if g[r][c].IsActive {
				n++
			}
		}
	}
	return n
}

// Equal reports whether two cells hold the same data. Dates compare by
// instant, not by location.
func (c Cell) Equal(o Cell) bool {
	return c.IsActive == o.IsActive &&
		c.PlantType == o.PlantType &&
		equalString(c.PlantName, o.PlantName) &&
		equalTime(c.DatePlanted, o.DatePlanted) &&
		equalTime(c.WateredDate, o.WateredDate) &&
		equalTime(c.HarvestedDate, o.HarvestedDate)
}

// Equal reports whether every cell of g equals the cell at the same position in o.
func (g *Grid) Equal(o *Grid) bool {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if !g[r][c].Equal(o[r][c]) {
				return false
			}
		}
	}
	return true
}

// normalizeTime truncates to the millisecond UTC precision of the store's
// timestamp type so a stored grid reads back identical.
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := time.UnixMilli(t.UnixMilli()).UTC()
	return &n
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
