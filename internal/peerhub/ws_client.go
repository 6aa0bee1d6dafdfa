package peerhub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"nexus/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	ConnID string
	Conn   *websocket.Conn
	Hub    *HubService
	Send   chan models.ServerEvent
	Log    zerolog.Logger
}

func (c *WebSocketClient) GetConnID() string                         { return c.ConnID }
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the Send channel, which stops the write pump. The read pump
// stops on its own once the connection closes.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump decodes inbound events, stamps them with this connection's ID and
// forwards them into the hub's event sequence. On any read error the client
// unregisters itself, which is how disconnects enter the lifecycle.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.Warn().Err(err).Str("conn_id", c.ConnID).Msg("websocket read failed")
			}
			break
		}

		var ev models.ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.Log.Warn().Err(err).Str("conn_id", c.ConnID).Msg("dropping malformed event")
			continue
		}

		// The sender identity comes from the connection, never the payload.
		ev.SenderID = c.ConnID

		c.Hub.EventCh <- ev
	}
}

// writePump drains the Send channel into the websocket and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel; say goodbye properly.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
