// internal/server/handlers/websocket.go

package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"infowatch/internal/domain/heatmap"
	"infowatch/internal/engine"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// viewClient is one connected dashboard consumer
type viewClient struct {
	conn  *websocket.Conn
	subID string
	views <-chan heatmap.View
	eng   *engine.Engine
}

// HeatmapWebSocketHandler streams derived views to dashboard clients.
// Each connection gets its own engine subscription; a new frame is
// pushed on every canonical-state or filter-state change.
func HeatmapWebSocketHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		subID, views := eng.Subscribe()
		client := &viewClient{
			conn:  conn,
			subID: subID,
			views: views,
			eng:   eng,
		}

		go client.writePump()
		go client.readPump()

		log.Printf("New heatmap WebSocket connection (subscription %s)", subID)
	}
}

// writePump pushes view frames and pings until the subscription or the
// connection closes.
func (c *viewClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case view, ok := <-c.views:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// Engine closed the subscription
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(view); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the channel is push-only. It exists
// to notice the peer going away and to answer pings.
func (c *viewClient) readPump() {
	config := DefaultWebSocketConfig()

	defer c.close()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// close releases the subscription and the connection
func (c *viewClient) close() {
	c.eng.Unsubscribe(c.subID)
	c.conn.Close()
}
