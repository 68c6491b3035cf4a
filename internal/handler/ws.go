package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/bankshot/internal/middleware"
	"github.com/Dan9191/bankshot/internal/service"
	"github.com/Dan9191/bankshot/internal/session"
	"github.com/gorilla/websocket"
)

type socketMessage struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ChatSocket serves the chat over a WebSocket. Each {"type":"ask"} message
// is answered with an {"type":"answer"} message.
func (h *Handler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log := h.log.WithField("session", sess.ID)
	log.Info("Chat socket connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("Chat socket error: %v", err)
			}
			return
		}

		var msg socketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.send(conn, sess, socketMessage{Type: "error", Error: "Invalid message format"})
			continue
		}
		if msg.Type != "ask" {
			h.send(conn, sess, socketMessage{Type: "error", Error: "Unknown message type: " + msg.Type})
			continue
		}

		answer, err := h.svc.Ask(r.Context(), sess, msg.Question)
		switch {
		case errors.Is(err, service.ErrEmptyQuestion):
			continue
		case err != nil:
			h.send(conn, sess, socketMessage{Type: "error", Error: err.Error()})
		default:
			h.send(conn, sess, socketMessage{Type: "answer", Question: msg.Question, Answer: answer})
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, sess *session.Session, msg socketMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		h.log.WithField("session", sess.ID).Warnf("Failed to send chat message: %v", err)
	}
}
