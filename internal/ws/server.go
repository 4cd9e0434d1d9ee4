// Package ws serves the frontend event stream over WebSocket.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/muednote/internal/config"
	"github.com/xiaot623/gogo/muednote/internal/hub"
	"github.com/xiaot623/gogo/muednote/internal/protocol"
)

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub) *Server {
	return &Server{
		cfg: cfg,
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// the frontend runs from a local webview origin
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the request and streams signals to it until the
// peer goes away or the hub stops.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws)

	// Queued before registering so it is the first frame and the send
	// channel is still open.
	ack := protocol.HelloAckMessage{
		BaseMessage:  protocol.BaseMessage{Type: protocol.TypeHelloAck, Ts: time.Now().UnixMilli()},
		ConnectionID: conn.ID,
	}
	if err := s.hub.SendJSONToConnection(conn, ack); err != nil {
		log.Printf("Failed to send hello_ack to %s: %v", conn.ID, err)
	}

	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump drains frames from the connection. The stream is one-way, so
// anything the frontend sends is answered with an error.
func (s *Server) readPump(conn *hub.Connection) {
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
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if err := s.handleMessage(conn, message); errors.Is(err, hub.ErrConnectionClosed) {
			// the hub dropped this connection; stop reading
			break
		}
	}
}

// writePump writes queued messages and keepalive pings.
func (s *Server) writePump(conn *hub.Connection) {
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
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(conn *hub.Connection, data []byte) error {
	var baseMsg protocol.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		return s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid JSON message")
	}
	return s.sendError(conn, protocol.ErrorCodeReadOnly, "event stream is read-only: "+baseMsg.Type)
}

func (s *Server) sendError(conn *hub.Connection, code, message string) error {
	msg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeError, Ts: time.Now().UnixMilli()},
		Code:        code,
		Message:     message,
	}
	if err := s.hub.SendJSONToConnection(conn, msg); err != nil {
		log.Printf("Failed to send error to %s: %v", conn.ID, err)
		return err
	}
	return nil
}
