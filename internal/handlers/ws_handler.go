package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yourbreathtaking/backend-safeindustech/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in every deployment
	// so far; access control is out of scope here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type FeedHandler struct {
	hub *ws.Hub
}

func NewFeedHandler(hub *ws.Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

func (h *FeedHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws/zones", h.Subscribe)
}

// Subscribe upgrades the connection and attaches it to the feed hub. The
// subscriber starts receiving on the next feeder tick.
func (h *FeedHandler) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "remote", c.Request.RemoteAddr, "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.RegisterClient(client)

	go client.WritePump()
	go client.ReadPump()
}
