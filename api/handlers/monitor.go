package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/remote-tui/termhost/internal/monitor"
)

const monitorWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MonitorHandler upgrades dashboard connections and attaches them to
// the monitor hub.
type MonitorHandler struct {
	hub *monitor.Hub
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(hub *monitor.Hub) *MonitorHandler {
	return &MonitorHandler{hub: hub}
}

// Watch handles GET /api/watch - streams registry snapshots until the
// viewer disconnects.
func (h *MonitorHandler) Watch(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := monitor.NewClient(conn)
	h.hub.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump drains the client's send channel onto the connection.
func (h *MonitorHandler) writePump(client *monitor.Client) {
	defer client.Conn().Close()

	for data := range client.SendChan() {
		client.Conn().SetWriteDeadline(time.Now().Add(monitorWriteWait))
		if err := client.Conn().WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}

	client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound messages; its only job is noticing the
// disconnect.
func (h *MonitorHandler) readPump(client *monitor.Client) {
	defer h.hub.Unregister(client)

	for {
		if _, _, err := client.Conn().ReadMessage(); err != nil {
			return
		}
	}
}

// RegisterRoutes registers the monitor route on a Gin router group.
func (h *MonitorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/watch", h.Watch)
}
