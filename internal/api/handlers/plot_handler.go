// server/internal/api/handlers/plot_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"garden-application-api-server/internal/api/middleware"
	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/plot"
	"garden-application-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlotHandler struct {
	Store  docstore.Store
	Plots  *plot.Manager
	Hub    Broadcaster
	Logger *zap.Logger
}

type PlotResponse struct {
	PlotID string                `json:"plotId"`
	State  string                `json:"state"`
	Cells  []plot.SerializedCell `json:"cells"`
	Region plot.Region           `json:"region"`
}

type CellUpdateResponse struct {
	PlotResponse
	Changed   bool `json:"changed"`
	Persisted bool `json:"persisted"`
}

type LayoutQuery struct {
	Width  float64 `form:"width" binding:"required,gt=0"`
	Height float64 `form:"height" binding:"required,gt=0"`
}

type LayoutResponse struct {
	Region plot.Region `json:"region"`
	Garden plot.Layout `json:"garden"`
	Editor plot.Canvas `json:"editor"`
}

// CellDetailRequest is the body of PUT /plots/:id/cells/:row/:col. Dates are
// RFC 3339; null clears a field.
type CellDetailRequest struct {
	PlantType     string     `json:"plantType" binding:"omitempty,oneof=Empty Tomatoes Carrots Beets Corn Lettuce Beans Broccoli Cucumbers Potatoes Peanuts Blackberries Blueberries Strawberries Basil Parsley"`
	PlantName     *string    `json:"plantName"`
	DatePlanted   *time.Time `json:"datePlanted"`
	WateredDate   *time.Time `json:"wateredDate"`
	HarvestedDate *time.Time `json:"harvestedDate"`
}

// GetPlot mounts the plot of a pin, seeding an empty grid on first use.
func (h *PlotHandler) GetPlot(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	state, g := session.Snapshot()
	c.JSON(http.StatusOK, plotResponse(session.PlotID(), state, g))
}

// GetLayout frames the plot for a window of ?width= by ?height= pixels.
func (h *PlotHandler) GetLayout(c *gin.Context) {
	var q LayoutQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	_, g := session.Snapshot()
	region := plot.ComputeRegion(g)
	c.JSON(http.StatusOK, LayoutResponse{
		Region: region,
		Garden: plot.GardenLayout(region, q.Width, q.Height),
		Editor: plot.EditorCanvas(region, q.Width, q.Height),
	})
}

// ToggleCell flips a cell between soil and background.
func (h *PlotHandler) ToggleCell(c *gin.Context) {
	row, col, ok := cellCoords(c)
	if !ok {
		return
	}
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	res, err := session.Toggle(c.Request.Context(), row, col)
	h.respondMutation(c, session, res, err)
}

// UpdateCell records planting data for an active cell. Inactive cells are left
// unchanged.
func (h *PlotHandler) UpdateCell(c *gin.Context) {
	row, col, ok := cellCoords(c)
	if !ok {
		return
	}
	var req CellDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	res, err := session.SetDetail(c.Request.Context(), row, col, plot.CellDetail{
		PlantType:     plot.PlantType(req.PlantType),
		PlantName:     req.PlantName,
		DatePlanted:   req.DatePlanted,
		WateredDate:   req.WateredDate,
		HarvestedDate: req.HarvestedDate,
	})
	h.respondMutation(c, session, res, err)
}

func (h *PlotHandler) respondMutation(c *gin.Context, session *plot.Session, res plot.Result, err error) {
	if errors.Is(err, plot.ErrNotReady) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Plot is still loading"})
		return
	}
	if errors.Is(err, plot.ErrSessionClosed) {
		c.JSON(http.StatusConflict, gin.H{"error": "Plot was closed, please retry"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plot"})
		return
	}

	body := CellUpdateResponse{
		PlotResponse: plotResponse(session.PlotID(), plot.Ready, res.Grid),
		Changed:      res.Changed,
		Persisted:    res.Persisted,
	}
	if res.Changed {
		h.Hub.Broadcast(socket.Event{Event: socket.PlotUpdated, PinID: session.PlotID(), Cells: body.Cells})
	}
	c.JSON(http.StatusOK, body)
}

// session resolves :id to a mounted session. A plot only exists for an
// existing pin.
func (h *PlotHandler) session(c *gin.Context) (*plot.Session, bool) {
	plotID := c.Param("id")
	if _, err := loadPin(c.Request.Context(), h.Store, plotID); err != nil {
		h.respondPinError(c, plotID, err)
		return nil, false
	}
	return h.mount(c, plotID)
}

func (h *PlotHandler) ownedSession(c *gin.Context) (*plot.Session, bool) {
	plotID := c.Param("id")
	pin, err := loadPin(c.Request.Context(), h.Store, plotID)
	if err != nil {
		h.respondPinError(c, plotID, err)
		return nil, false
	}
	if pin.CreatedBy != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator of this pin can edit its plot"})
		return nil, false
	}
	return h.mount(c, plotID)
}

func (h *PlotHandler) mount(c *gin.Context, plotID string) (*plot.Session, bool) {
	session, err := h.Plots.Session(c.Request.Context(), plotID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Plot is still loading"})
		return nil, false
	}
	return session, true
}

func (h *PlotHandler) respondPinError(c *gin.Context, plotID string, err error) {
	if errors.Is(err, errPinNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pin not found"})
		return
	}
	h.Logger.Error("Failed to load pin", zap.String("pin_id", plotID), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pin"})
}

func plotResponse(plotID string, state plot.State, g plot.Grid) PlotResponse {
	return PlotResponse{
		PlotID: plotID,
		State:  state.String(),
		Cells:  plot.Serialize(g),
		Region: plot.ComputeRegion(g),
	}
}

func cellCoords(c *gin.Context) (row, col int, ok bool) {
	row, errRow := strconv.Atoi(c.Param("row"))
	col, errCol := strconv.Atoi(c.Param("col"))
	if errRow != nil || errCol != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Row and column must be integers"})
		return 0, 0, false
	}
	return row, col, true
}
