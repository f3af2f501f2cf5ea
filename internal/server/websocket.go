package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livetemplate/pinboard"
)

// writeWait bounds a single websocket write.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// MessageEnvelope is the websocket wire format in both directions.
//
// Clients send {"action":"event","data":EventMessage} or
// {"action":"add","data":ItemSpec}. The server sends
// {"action":"render","html":...} after every change and
// {"action":"error","error":...} when a client message fails.
type MessageEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
	HTML   string          `json:"html,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// wsClient is one connected browser. gorilla/websocket allows a single
// concurrent writer per connection, so writes go through mu.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(msg MessageEnvelope) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// serveWebSocket upgrades the connection, sends the current board and then
// handles client messages until the connection closes.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Failed to upgrade connection: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	s.RegisterConnection(client)
	defer func() {
		s.UnregisterConnection(client)
		conn.Close()
	}()

	if s.debug {
		log.Printf("[WS] Client connected: %s", conn.RemoteAddr())
	}

	board, err := s.BoardHTML()
	if err != nil {
		log.Printf("[WS] %v", err)
		return
	}
	if err := client.send(MessageEnvelope{Action: "render", HTML: board}); err != nil {
		log.Printf("[WS] Failed to send initial render: %v", err)
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close: %v", err)
			}
			break
		}

		if s.debug {
			log.Printf("[WS] Received: %s", message)
		}

		if err := s.handleMessage(r.Context(), message); err != nil {
			if s.debug {
				log.Printf("[WS] Message failed: %v", err)
			}
			if err := client.send(MessageEnvelope{Action: "error", Error: err.Error()}); err != nil {
				log.Printf("[WS] Failed to send error: %v", err)
			}
		}
	}

	if s.debug {
		log.Printf("[WS] Client disconnected: %s", conn.RemoteAddr())
	}
}

// handleMessage applies one client message. Successful changes reach the
// client through the broadcast render.
func (s *Server) handleMessage(ctx context.Context, message []byte) error {
	var env MessageEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return err
	}

	switch env.Action {
	case "event":
		var msg EventMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return err
		}
		_, err := s.Dispatch(ctx, msg)
		return err
	case "add":
		var spec pinboard.ItemSpec
		if err := json.Unmarshal(env.Data, &spec); err != nil {
			return err
		}
		return s.AddItem(ctx, spec)
	default:
		return errors.New("unknown action: " + env.Action)
	}
}

// RegisterConnection adds a client to the render broadcast.
func (s *Server) RegisterConnection(c *wsClient) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.connections[c] = true
	log.Printf("[Server] WebSocket connection registered: %d active connections", len(s.connections))
}

// UnregisterConnection removes a client from the render broadcast.
func (s *Server) UnregisterConnection(c *wsClient) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.connections, c)
	log.Printf("[Server] WebSocket connection unregistered: %d active connections", len(s.connections))
}

// ConnectionCount returns the number of connected clients.
func (s *Server) ConnectionCount() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.connections)
}

// BroadcastRender sends the rendered board to every connected client.
func (s *Server) BroadcastRender(html string) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()

	if len(s.connections) == 0 {
		return
	}

	msg := MessageEnvelope{Action: "render", HTML: html}
	for c := range s.connections {
		if err := c.send(msg); err != nil {
			log.Printf("[Server] Failed to send render to connection: %v", err)
		}
	}
}
