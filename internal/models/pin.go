// server/internal/models/pin.go
package models

import "time"

// Default text for pins created without a title or description.
const (
	DefaultPinTitle       = "New Pin"
	DefaultPinDescription = "Tap to see details"
)

// Pin is one placement on the shared map. Its id is also the id of the plot
// grid stored under squares/{id}.
type Pin struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Lat         float64   `bson:"lat" json:"lat"`
	Lng         float64   `bson:"lng" json:"lng"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	CreatedBy   string    `bson:"createdBy" json:"createdBy"`
	PhotoURL    string    `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
