package socket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"garden-application-api-server/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// dialHub connects a client whose server side is registered with h.
func dialHub(t *testing.T, h *Hub) (*websocket.Conn, string) {
	t.Helper()
	ids := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ids <- h.Register("u1", conn)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	id := <-ids
	t.Cleanup(func() { h.Unregister(id) })
	return conn, id
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(zap.NewNop())
	a, _ := dialHub(t, h)
	b, _ := dialHub(t, h)
	require.Equal(t, 2, h.Len())

	h.Broadcast(Event{Event: PinDeleted, PinID: "p1"})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var ev Event
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, Event{Event: PinDeleted, PinID: "p1"}, ev)
	}
}

func TestHubUnregister(t *testing.T) {
	h := NewHub(zap.NewNop())
	_, id := dialHub(t, h)

	h.Unregister(id)
	h.Unregister(id)
	h.Unregister("unknown")
	assert.Equal(t, 0, h.Len())
}

func TestEventOmitsEmptyFields(t *testing.T) {
	h := NewHub(zap.NewNop())
	conn, _ := dialHub(t, h)

	h.Broadcast(Event{Event: PinDeleted, PinID: "p1"})
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"pin_deleted","pinId":"p1"}`, string(data))
}

func TestHubBroadcastDropsStalledClient(t *testing.T) {
	h := NewHub(zap.NewNop())
	dialHub(t, h) // never reads

	big := Event{Event: PinCreated, Pin: &models.Pin{ID: "p1", Title: strings.Repeat("x", 64<<10)}}
	start := time.Now()
	for i := 0; i < 1000; i++ {
		h.Broadcast(big)
	}
	assert.Less(t, time.Since(start), writeWait, "broadcast waited on a stalled client")

	require.Eventually(t, func() bool { return h.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
}
