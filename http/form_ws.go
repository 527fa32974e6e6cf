package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"grocerysales/schema"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 64 << 10
)

// formMessage is what the browser form sends over the session socket.
type formMessage struct {
	Type   string          `json:"type"` // predict | schema
	ID     string          `json:"id,omitempty"`
	Record json.RawMessage `json:"record,omitempty"`
}

type formReply struct {
	Type       string              `json:"type"` // prediction | schema | error
	ID         string              `json:"id,omitempty"`
	Result     *predictionResponse `json:"result,omitempty"`
	Schema     *schemaResponse     `json:"schema,omitempty"`
	Error      string              `json:"error,omitempty"`
	Violations []schema.Violation  `json:"violations,omitempty"`
}

// formSession serves one connected form. Each submitted record gets exactly
// one reply, in submission order.
type formSession struct {
	h      *handlers
	conn   *websocket.Conn
	send   chan formReply
	done   chan struct{}
	id     string
	logger *zap.Logger
}

func newUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(origins, origin)
		},
	}
}

func (h *handlers) handleFormSession(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &formSession{
		h:    h,
		conn: conn,
		send: make(chan formReply, 16),
		done: make(chan struct{}),
		id:   uuid.NewString(),
	}
	s.logger = h.logger.With(zap.String("session_id", s.id))
	s.logger.Info("form session opened")

	go s.writePump()
	s.readPump()
}

func (s *formSession) readPump() {
	defer func() {
		close(s.send)
		s.logger.Info("form session closed")
	}()

	s.conn.SetReadLimit(wsMaxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg formMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if !s.reply(formReply{Type: "error", Error: "malformed message: " + err.Error()}) {
				return
			}
			continue
		}
		if !s.reply(s.handle(msg)) {
			return
		}
	}
}

// reply queues r for the writer. It reports false once the writer is gone.
func (s *formSession) reply(r formReply) bool {
	select {
	case s.send <- r:
		return true
	case <-s.done:
		return false
	}
}

func (s *formSession) handle(msg formMessage) formReply {
	switch msg.Type {
	case "schema":
		resp := newSchemaResponse()
		return formReply{Type: "schema", ID: msg.ID, Schema: &resp}
	case "predict":
		record, err := s.h.validator.Decode(msg.Record)
		if err != nil {
			s.h.metrics.RecordRejected("ws")
			reply := formReply{Type: "error", ID: msg.ID, Error: err.Error()}
			var ve *schema.ValidationError
			if errors.As(err, &ve) {
				reply.Violations = ve.Violations
			}
			return reply
		}
		result, err := s.h.predict("ws", record)
		if err != nil {
			s.logger.Warn("prediction failed", zap.String("id", msg.ID), zap.Error(err))
			return formReply{Type: "error", ID: msg.ID, Error: s.h.display.Failure(err)}
		}
		return formReply{Type: "prediction", ID: msg.ID, Result: &result}
	default:
		return formReply{Type: "error", ID: msg.ID, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
}

func (s *formSession) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		close(s.done)
		s.conn.Close()
	}()

	for {
		select {
		case reply, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(reply); err != nil {
				s.logger.Warn("websocket write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
