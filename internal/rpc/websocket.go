package rpc

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bondledger/bondmarketd/internal/events"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscribeCommand is the first message a websocket client sends.
type subscribeCommand struct {
	Command string   `json:"command"`
	Streams []string `json:"streams,omitempty"`
}

// handleWebsocket upgrades the connection and streams subscribed
// events until the client goes away.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("rpc: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var cmd subscribeCommand
	if err := conn.ReadJSON(&cmd); err != nil {
		return
	}
	if cmd.Command != "subscribe" {
		writeWs(conn, map[string]string{"status": "error", "error": "expected subscribe command"})
		return
	}
	for _, stream := range cmd.Streams {
		if stream != events.StreamMarkets && stream != events.StreamTrades {
			writeWs(conn, map[string]string{"status": "error", "error": "unknown stream: " + stream})
			return
		}
	}

	sub := s.hub.Subscribe(cmd.Streams...)
	defer sub.Close()
	writeWs(conn, map[string]string{"status": "success"})

	// Drain the read side so client close is noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if !writeWs(conn, ev) {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeWs(conn *websocket.Conn, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data) == nil
}
