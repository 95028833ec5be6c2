// server/internal/plot/plant.go
package plot

import "strings"

// PlantType is one entry of the fixed crop/herb catalog. The zero value means
// no plant type is recorded for the cell.
type PlantType string

const (
	PlantNone         PlantType = ""
	PlantEmpty        PlantType = "Empty"
	PlantTomatoes     PlantType = "Tomatoes"
	PlantCarrots      PlantType = "Carrots"
	PlantBeets        PlantType = "Beets"
	PlantCorn         PlantType = "Corn"
	PlantLettuce      PlantType = "Lettuce"
	PlantBeans        PlantType = "Beans"
	PlantBroccoli     PlantType = "Broccoli"
	PlantCucumbers    PlantType = "Cucumbers"
	PlantPotatoes     PlantType = "Potatoes"
	PlantPeanuts      PlantType = "Peanuts"
	PlantBlackberries PlantType = "Blackberries"
	PlantBlueberries  PlantType = "Blueberries"
	PlantStrawberries PlantType = "Strawberries"
	PlantBasil        PlantType = "Basil"
	PlantParsley      PlantType = "Parsley"
)

// Catalog lists the plant types in the order the client picker shows them.
var Catalog = []PlantType{
	PlantEmpty,
	PlantTomatoes,
	PlantCarrots,
	PlantBeets,
	PlantCorn,
	PlantLettuce,
	PlantBeans,
	PlantBroccoli,
	PlantCucumbers,
	PlantPotatoes,
	PlantPeanuts,
	PlantBlackberries,
	PlantBlueberries,
	PlantStrawberries,
	PlantBasil,
	PlantParsley,
}

// CatalogOneOf is the catalog as a space separated list for `binding:"oneof=..."` tags.
const CatalogOneOf = "Empty Tomatoes Carrots Beets Corn Lettuce Beans Broccoli Cucumbers Potatoes Peanuts Blackberries Blueberries Strawberries Basil Parsley"

// Valid reports whether p is a catalog entry. Matching is case-sensitive.
func (p PlantType) Valid() bool {
	for _, c := range Catalog {
		if c == p {
			return true
		}
	}
	return false
}

// ImageKey is the object key of the picture shown for p. Empty and unknown
// types use the question mark image.
func (p PlantType) ImageKey() string {
	if p == PlantEmpty || !p.Valid() {
		return "plants/question.png"
	}
	return "plants/" + strings.ToLower(string(p)) + ".png"
}
