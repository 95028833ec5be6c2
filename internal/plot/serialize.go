package plot

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrMalformedDocument means a stored plot document has no cells list.
	ErrMalformedDocument = errors.New("plot: malformed document")
	// ErrCellOutOfRange means a stored record addresses a cell outside the grid.
	ErrCellOutOfRange = errors.New("plot: cell index out of range")
)

// SerializedCell is the stored form of one cell. The store does not accept
// nested arrays, so a grid is kept as a flat list tagged with row and col.
type SerializedCell struct {
	Row           int                 `bson:"row" json:"row"`
	Col           int                 `bson:"col" json:"col"`
	IsActive      bool                `bson:"isActive" json:"isActive"`
	PlantType     *string             `bson:"plantType" json:"plantType"`
	PlantName     *string             `bson:"plantName" json:"plantName"`
	DatePlanted   *primitive.DateTime `bson:"datePlanted" json:"datePlanted"`
	WateredDate   *primitive.DateTime `bson:"wateredDate" json:"wateredDate"`
	HarvestedDate *primitive.DateTime `bson:"harvestedDate" json:"harvestedDate"`
}

// Document is the body of squares/{plotID}.
type Document struct {
	Cells []SerializedCell `bson:"cells" json:"cells"`
}

// Serialize flattens g into Rows*Cols records in row-major order.
func Serialize(g Grid) []SerializedCell {
	cells := make([]SerializedCell, 0, Rows*Cols)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			cell := g[r][c]
			sc := SerializedCell{
				Row:           r,
				Col:           c,
				IsActive:      cell.IsActive,
				PlantName:     copyString(cell.PlantName),
				DatePlanted:   toDateTime(cell.DatePlanted),
				WateredDate:   toDateTime(cell.WateredDate),
				HarvestedDate: toDateTime(cell.HarvestedDate),
			}
			if cell.PlantType != PlantNone {
				t := string(cell.PlantType)
				sc.PlantType = &t
			}
			cells = append(cells, sc)
		}
	}
	return cells
}

// Deserialize rebuilds a grid from stored records. Cells without a record stay
// empty and a later record for the same cell wins. Planting fields on inactive
// records are dropped. Any record outside the grid rejects the whole list with
// ErrCellOutOfRange.
func Deserialize(records []SerializedCell) (Grid, error) {
	g := CreateEmpty()
	for i, rec := range records {
		if !InBounds(rec.Row, rec.Col) {
			return Grid{}, fmt.Errorf("%w: record %d at (%d,%d)", ErrCellOutOfRange, i, rec.Row, rec.Col)
		}
		if !rec.IsActive {
			g[rec.Row][rec.Col] = Cell{}
			continue
		}
		cell := Cell{
			IsActive:      rec.IsActive,
			PlantName:     copyString(rec.PlantName),
			DatePlanted:   fromDateTime(rec.DatePlanted),
			WateredDate:   fromDateTime(rec.WateredDate),
			HarvestedDate: fromDateTime(rec.HarvestedDate),
		}
		if rec.PlantType != nil {
			cell.PlantType = PlantType(*rec.PlantType)
		}
		g[rec.Row][rec.Col] = cell
	}
	return g, nil
}

// DecodeDocument reads a raw squares document. A document whose cells field is
// missing or not a list of records yields ErrMalformedDocument.
func DecodeDocument(raw bson.Raw) (Grid, error) {
	val, err := raw.LookupErr("cells")
	if err != nil {
		return Grid{}, fmt.Errorf("%w: no cells field", ErrMalformedDocument)
	}
	if val.Type != bsontype.Array {
		return Grid{}, fmt.Errorf("%w: cells is %s", ErrMalformedDocument, val.Type)
	}
	var records []SerializedCell
	if err := val.Unmarshal(&records); err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return Deserialize(records)
}

func toDateTime(t *time.Time) *primitive.DateTime {
	if t == nil {
		return nil
	}
	dt := primitive.NewDateTimeFromTime(*t)
	return &dt
}

func fromDateTime(dt *primitive.DateTime) *time.Time {
	if dt == nil {
		return nil
	}
	t := dt.Time().UTC()
	return &t
}
