// server/internal/api/handlers/pin_handler.go
package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"garden-application-api-server/internal/api/middleware"
	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/models"
	"garden-application-api-server/internal/plot"
	"garden-application-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const maxPhotoSize = 10 << 20

type PinHandler struct {
	Store  docstore.Store
	Plots  *plot.Manager
	Photos PhotoStore
	Hub    Broadcaster
	Logger *zap.Logger
}

type CreatePinRequest struct {
	Lat         *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng         *float64 `json:"lng" binding:"required,min=-180,max=180"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// CreatePin drops a pin for the caller at the given coordinates.
func (h *PinHandler) CreatePin(c *gin.Context) {
	var req CreatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pin := models.Pin{
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   middleware.UserID(c),
		CreatedAt:   time.Now().UTC(),
	}
	if pin.Title == "" {
		pin.Title = models.DefaultPinTitle
	}
	if pin.Description == "" {
		pin.Description = models.DefaultPinDescription
	}

	id, err := h.Store.Add(c.Request.Context(), docstore.Pins, pin)
	if err != nil {
		h.Logger.Error("Failed to create pin", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pin"})
		return
	}
	pin.ID = id

	h.Hub.Broadcast(socket.Event{Event: socket.PinCreated, PinID: id, Pin: &pin})
	c.JSON(http.StatusCreated, pin)
}

// ListPins returns every pin, or the pins of one user with ?createdBy=.
func (h *PinHandler) ListPins(c *gin.Context) {
	var filter bson.M
	if createdBy := c.Query("createdBy"); createdBy != "" {
		filter = bson.M{"createdBy": createdBy}
	}

	docs, err := h.Store.List(c.Request.Context(), docstore.Pins, filter)
	if err != nil {
		h.Logger.Error("Failed to list pins", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query pins"})
		return
	}

	pins := make([]models.Pin, 0, len(docs))
	for _, raw := range docs {
		var pin models.Pin
		if err := bson.Unmarshal(raw, &pin); err != nil {
			h.Logger.Warn("Skipping undecodable pin", zap.Error(err))
			continue
		}
		pins = append(pins, pin)
	}
	c.JSON(http.StatusOK, pins)
}

func (h *PinHandler) GetPin(c *gin.Context) {
	pin, ok := h.pinOr404(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, pin)
}

// DeletePin removes a pin and its plot. Only the creator may delete it.
func (h *PinHandler) DeletePin(c *gin.Context) {
	pin, ok := h.ownedPin(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.Delete(ctx, docstore.Pins, pin.ID); err != nil {
		h.Logger.Error("Failed to delete pin", zap.String("pin_id", pin.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete pin"})
		return
	}
	if err := h.Plots.Forget(ctx, pin.ID); err != nil {
		// The pin is gone; a leftover grid document is harmless.
		h.Logger.Error("Failed to delete plot grid", zap.String("pin_id", pin.ID), zap.Error(err))
	}

	h.Hub.Broadcast(socket.Event{Event: socket.PinDeleted, PinID: pin.ID})
	c.JSON(http.StatusOK, gin.H{"message": "Pin deleted successfully"})
}

// UploadPhoto stores the "photo" form file in object storage and records its
// URL on the pin.
func (h *PinHandler) UploadPhoto(c *gin.Context) {
	if h.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo uploads are not configured"})
		return
	}
	pin, ok := h.ownedPin(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Photo is too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	objectKey := "pins/" + pin.ID + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	url, err := h.Photos.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.Error("Failed to upload pin photo", zap.String("pin_id", pin.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	if err := h.Store.Set(c.Request.Context(), docstore.Pins, pin.ID, bson.M{"photoURL": url}, docstore.SetOptions{Merge: true}); err != nil {
		h.Logger.Error("Failed to save pin photo", zap.String("pin_id", pin.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		return
	}
	pin.PhotoURL = url
	c.JSON(http.StatusOK, pin)
}

func (h *PinHandler) pinOr404(c *gin.Context) (models.Pin, bool) {
	pin, err := loadPin(c.Request.Context(), h.Store, c.Param("id"))
	switch {
	case errors.Is(err, errPinNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Pin not found"})
		return pin, false
	case err != nil:
		h.Logger.Error("Failed to load pin", zap.String("pin_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pin"})
		return pin, false
	}
	return pin, true
}

func (h *PinHandler) ownedPin(c *gin.Context) (models.Pin, bool) {
	pin, ok := h.pinOr404(c)
	if !ok {
		return pin, false
	}
	if pin.CreatedBy != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator of this pin can change it"})
		return pin, false
	}
	return pin, true
}
