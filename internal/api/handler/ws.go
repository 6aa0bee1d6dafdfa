package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nexus/backend/internal/models"
	"nexus/backend/internal/peerhub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Participants are anonymous browsers; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection and hands a fresh anonymous
// participant to the hub. Connection IDs are minted here and never reused.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own HTTP error response.
		h.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &peerhub.WebSocketClient{
		ConnID: uuid.NewString(),
		Conn:   conn,
		Hub:    h.Hub,
		Send:   make(chan models.ServerEvent, 256),
		Log:    h.Log,
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
