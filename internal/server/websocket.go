package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/michaelbrown/crucible/internal/runner"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin UI; deployments front this with their own auth
	},
}

// wsIncoming is a message from the client: a chat turn or a live run.
type wsIncoming struct {
	Type     string `json:"type"` // "message" or "run"
	Content  string `json:"content,omitempty"`
	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`
	Input    string `json:"input,omitempty"`
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type    string `json:"type"` // "message", "result", "error"
	Content string `json:"content,omitempty"`
	Result  any    `json:"result,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Verify the conversation exists
	conv, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	for {
		var msg wsIncoming
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.logger.WithError(err).Debug("websocket read")
			return
		}

		switch msg.Type {
		case "message":
			if msg.Content == "" {
				wsWriteJSON(conn, wsOutgoing{Type: "error", Content: "content is required"})
				continue
			}
			reply, err := s.chatTurn(r.Context(), conv, msg.Content)
			if err != nil {
				wsWriteJSON(conn, wsOutgoing{Type: "error", Content: err.Error()})
				continue
			}
			wsWriteJSON(conn, wsOutgoing{Type: "message", Content: reply.Content})

		case "run":
			res := s.svc.Execute(r.Context(), runner.ExecutionRequest{
				Code:     msg.Code,
				Language: runner.Language(msg.Language),
				Input:    msg.Input,
			})
			s.recordRun(r.Context(), res)
			wsWriteJSON(conn, wsOutgoing{Type: "result", Result: res})

		default:
			wsWriteJSON(conn, wsOutgoing{Type: "error", Content: "unknown message type"})
		}
	}
}

func wsWriteJSON(conn *websocket.Conn, msg wsOutgoing) {
	// Write errors surface as read failures on the next loop iteration.
	_ = conn.WriteJSON(msg)
}
