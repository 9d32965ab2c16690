package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The API is same-host only; no cross-origin browser clients.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsMessage struct {
	Message string `json:"message"`
}

// handleChatWS runs a chat conversation over a websocket: each inbound JSON
// message is one turn, each outbound frame the assistant's reply. The whole
// socket shares one session.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id := sessionID(r)
	s.log.Info("websocket session %s opened", id)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket session %s read error: %v", id, err)
			}
			return
		}
		if msg.Message == "" {
			continue
		}

		result := s.orch.HandleTurn(r.Context(), id, msg.Message)

		if s.store != nil {
			s.persistTurn(r, id, "user", msg.Message)
			if result.Response != "" {
				s.persistTurn(r, id, "assistant", result.Response)
			}
		}

		if err := conn.WriteJSON(chatResponse{
			SessionID: id,
			Response:  result.Response,
			Intent:    result.Intent.String(),
		}); err != nil {
			s.log.Warn("websocket session %s write error: %v", id, err)
			return
		}
	}
}
