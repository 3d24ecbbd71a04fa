package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

// upgrader accepts any origin, matching the CORS posture of the REST API.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWebSocket streams progress events for one client id. The connection
// closes when the client goes away or the subscription is dropped.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("client_id")
	if clientID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing client id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for %s: %v", clientID, err)
		return
	}

	events, unsubscribe := s.hub.Subscribe(clientID)
	defer unsubscribe()

	// Reader pump. Clients send nothing meaningful; reading surfaces the
	// close frame so the writer can stop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer conn.Close()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("[ws] write to %s failed: %v", clientID, err)
				return
			}
		case <-done:
			return
		}
	}
}
