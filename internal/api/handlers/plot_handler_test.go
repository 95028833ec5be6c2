package handlers

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"garden-application-api-server/internal/plot"
	"garden-application-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingHub struct{ events []socket.Event }

func (h *countingHub) Broadcast(ev socket.Event) { h.events = append(h.events, ev) }

func TestCellDetailRequestAcceptsCatalog(t *testing.T) {
	field, ok := reflect.TypeOf(CellDetailRequest{}).FieldByName("PlantType")
	require.True(t, ok)
	assert.Equal(t, "omitempty,oneof="+plot.CatalogOneOf, field.Tag.Get("binding"))

	names := make([]string, len(plot.Catalog))
	for i, p := range plot.Catalog {
		names[i] = string(p)
	}
	assert.Equal(t, strings.Join(names, " "), plot.CatalogOneOf)
}

func TestRespondMutationMapsSessionErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := map[string]struct {
		err  error
		code int
	}{
		"loading": {err: plot.ErrNotReady, code: http.StatusServiceUnavailable},
		"closed":  {err: plot.ErrSessionClosed, code: http.StatusConflict},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			hub := &countingHub{}
			h := &PlotHandler{Hub: hub, Logger: zap.NewNop()}
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			h.respondMutation(c, nil, plot.Result{}, tt.err)
			assert.Equal(t, tt.code, rec.Code)
			assert.Empty(t, hub.events)
		})
	}
}
