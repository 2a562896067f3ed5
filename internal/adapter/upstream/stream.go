// internal/adapter/upstream/stream.go

package upstream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"infowatch/internal/domain/heatmap"
)

// WebSocketStreamConfig contains configuration for the live stream client
type WebSocketStreamConfig struct {
	URL            string
	HandshakeWait  time.Duration
	MaxMessageSize int64
}

// WebSocketStream subscribes to the push-based live event channel. One
// connection attempt is made; callers fall back to synthetic feed
// generation when it fails.
type WebSocketStream struct {
	config WebSocketStreamConfig

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketStream creates a new live stream client
func NewWebSocketStream(config WebSocketStreamConfig) *WebSocketStream {
	if config.HandshakeWait == 0 {
		config.HandshakeWait = 10 * time.Second
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = 64 * 1024
	}
	return &WebSocketStream{config: config}
}

// Connect opens the websocket and starts pumping inbound frames into the
// returned channel. The channel closes when the connection drops.
func (s *WebSocketStream) Connect(ctx context.Context) (<-chan heatmap.StreamEvent, error) {
	if s.config.URL == "" {
		return nil, fmt.Errorf("no live stream URL configured")
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.config.HandshakeWait}
	conn, _, err := dialer.DialContext(ctx, s.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("error connecting to live stream: %w", err)
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	events := make(chan heatmap.StreamEvent, 16)
	go s.readPump(conn, events)

	return events, nil
}

// Close tears down the connection; the read pump then closes the channel
func (s *WebSocketStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// readPump decodes inbound frames until the connection fails
func (s *WebSocketStream) readPump(conn *websocket.Conn, events chan<- heatmap.StreamEvent) {
	defer close(events)

	for {
		var ev heatmap.StreamEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Live stream read error: %v", err)
			}
			return
		}
		events <- ev
	}
}
