// server/internal/api/handlers/plant_handler.go
package handlers

import (
	"net/http"

	"garden-application-api-server/internal/plot"

	"github.com/gin-gonic/gin"
)

type PlantHandler struct {
	// Photos resolves image keys to URLs. Nil leaves ImageURL empty.
	Photos PhotoStore
}

type PlantResponse struct {
	Type     plot.PlantType `json:"type"`
	ImageKey string         `json:"imageKey"`
	ImageURL string         `json:"imageUrl,omitempty"`
}

// ListPlants returns the plant catalog in picker order.
func (h *PlantHandler) ListPlants(c *gin.Context) {
	plants := make([]PlantResponse, 0, len(plot.Catalog))
	for _, p := range plot.Catalog {
		resp := PlantResponse{Type: p, ImageKey: p.ImageKey()}
		if h.Photos != nil {
			resp.ImageURL = h.Photos.ObjectURL(resp.ImageKey)
		}
		plants = append(plants, resp)
	}
	c.JSON(http.StatusOK, plants)
}
