package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// tokenWords is how many words each streamed token message carries.
const tokenWords = 3

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It owns the clients map.
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.Logger.Debug("Client connected (%d open)", len(s.clients))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case reply := <-s.count:
			reply <- len(s.clients)

		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// Connections returns the number of open websocket clients.
func (s *FastAPIServer) Connections() int {
	reply := make(chan int, 1)
	select {
	case s.count <- reply:
		return <-reply
	case <-s.done:
		return 0
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered so a long answer streams without blocking the turn
		send: make(chan interface{}, 256),
		gone: make(chan struct{}),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

type wsMessage struct {
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Agent       *string  `json:"agent,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Disclaimers []string `json:"disclaimers,omitempty"`
}

// HandleClientMessage answers one chat message: a status frame, the final
// text in three-word token frames, then a done frame. Turns on one
// connection run in order since readPump calls this synchronously.
func (s *FastAPIServer) HandleClientMessage(ctx context.Context, client *Client, message []byte) {
	var req chatRequest
	if err := json.Unmarshal(message, &req); err != nil {
		client.push(wsMessage{Type: "error", Content: "Invalid JSON message"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		client.push(wsMessage{Type: "error", Content: "Empty message"})
		return
	}
	client.push(wsMessage{Type: "status", Content: "Processing..."})

	res, err := s.runChat(ctx, &req)
	if err != nil {
		client.push(wsMessage{Type: "error", Content: err.Error()})
		return
	}

	final := res.Package.FinalText
	for _, chunk := range chunkWords(final, tokenWords) {
		client.push(wsMessage{Type: "token", Content: chunk + " "})
	}

	var agent *string
	if res.Package.PrimaryRole != nil {
		a := string(*res.Package.PrimaryRole)
		agent = &a
	}
	client.push(wsMessage{
		Type:        "done",
		Content:     final,
		Agent:       agent,
		SessionID:   req.SessionID,
		Disclaimers: res.Package.Disclaimers,
	})
}

// chunkWords splits text on whitespace into groups of n words.
func chunkWords(text string, n int) []string {
	words := strings.Fields(text)
	var out []string
	for i := 0; i < len(words); i += n {
		end := i + n
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
	}
	return out
}
