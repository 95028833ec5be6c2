// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"garden-application-api-server/internal/auth"
	"garden-application-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Read deadline for client messages and pings.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub    *socket.Hub
	Issuer *auth.Issuer
	Logger *zap.Logger
}

// ServeWs upgrades the request and streams live updates until the client
// goes away. ?token= is optional; anonymous viewers receive the same events.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	var userID string
	if tokenString := c.Query("token"); tokenString != "" {
		claims, err := h.Issuer.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID = claims.UID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	clientID := h.Hub.Register(userID, conn)
	defer func() {
		h.Hub.Unregister(clientID)
		conn.Close()
	}()

	// Pings from the client extend the read deadline; gorilla answers with a pong.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("Unexpected websocket close", zap.String("client_id", clientID), zap.Error(err))
			}
			break
		}
	}
}
