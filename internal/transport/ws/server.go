// Package ws provides the WebSocket messaging channel for chat clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/anketa/internal/auth"
	"github.com/xiaot623/anketa/internal/config"
	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/logging"
	"github.com/xiaot623/anketa/internal/protocol"
)

// EventSink receives decoded inbound events.
type EventSink interface {
	Submit(ctx context.Context, ev domain.Event) error
}

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *Hub
	events   EventSink
	signer   *auth.Signer
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *Hub, events EventSink, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		hub:    h,
		events: events,
		signer: auth.NewSigner(cfg.AuthSecret),
		logger: logging.OrDiscard(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", "error", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read error", "conn_id", conn.ID, "error", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("failed to write message", "conn_id", conn.ID, "error", err)
				return
			}

		case <-s.hub.Done():
			return

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage decodes one frame and forwards it as an event.
func (s *Server) handleMessage(conn *Connection, data []byte) {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	if base.Type == protocol.TypeHello {
		s.handleHello(conn, data)
		return
	}
	if conn.User.ID == 0 {
		s.sendError(conn, protocol.ErrorCodeHelloRequired, "must send hello first")
		return
	}

	ev, err := decodeEvent(base.Type, data)
	if err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, err.Error())
		return
	}
	ev.From = conn.User

	if err := s.events.Submit(context.Background(), ev); err != nil {
		s.logger.Warn("event rejected", "user_id", conn.User.ID, "kind", ev.Kind, "error", err)
		s.sendError(conn, protocol.ErrorCodeBusy, err.Error())
	}
}

// handleHello binds the connection to the user named in the hello frame.
func (s *Server) handleHello(conn *Connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	id, err := domain.ParseUserID(msg.UserID)
	if err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "user_id must be a positive integer")
		return
	}

	if err := s.signer.Verify(id, msg.Token); err != nil {
		s.logger.Warn("hello refused", "conn_id", conn.ID, "user_id", id, "error", err)
		s.sendError(conn, protocol.ErrorCodeUnauthorized, "invalid token for user_id")
		return
	}

	s.hub.BindUser(conn, domain.User{ID: id, FullName: msg.FullName, Username: msg.Username})

	ack := protocol.HelloAckMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeHelloAck, Ts: time.Now().UnixMilli()},
		UserID:      id.String(),
	}
	s.hub.SendJSONToConnection(conn, ack)

	s.logger.Info("hello handshake completed", "conn_id", conn.ID, "user_id", id)
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *Connection, code, message string) {
	errMsg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeError, Ts: time.Now().UnixMilli()},
		Code:        code,
		Message:     message,
	}
	s.hub.SendJSONToConnection(conn, errMsg)
}
