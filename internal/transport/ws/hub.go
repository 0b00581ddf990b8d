package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/logging"
)

// Connection represents a single WebSocket connection.
type Connection struct {
	ID   string
	User domain.User
	Conn *websocket.Conn
	Send chan []byte
	mu   sync.Mutex
}

// Hub manages all WebSocket connections, indexed by bound user.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// users maps a user id to the set of its connection IDs
	users map[domain.UserID]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	// done is closed when Run returns.
	done chan struct{}

	logger *slog.Logger
	mu     sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		users:       make(map[domain.UserID]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		done:        make(chan struct{}),
		logger:      logging.OrDiscard(logger),
	}
}

// Run starts the hub's main loop. When ctx is done it closes every
// connection and returns; later Register and Unregister calls do not block.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, conn := range h.connections {
				conn.Close()
			}
			h.mu.Unlock()
			close(h.done)
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			h.mu.Unlock()
			h.logger.Debug("connection registered", "conn_id", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				h.unbindLocked(conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			h.logger.Debug("connection unregistered", "conn_id", conn.ID, "user_id", conn.User.ID)
		}
	}
}

// NewConnection creates a new connection. It is not registered yet.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
	}
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// BindUser binds a connection to a user. A connection belongs to one user at a time.
func (h *Hub) BindUser(conn *Connection, user domain.User) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unbindLocked(conn)
	conn.User = user
	if h.users[user.ID] == nil {
		h.users[user.ID] = make(map[string]bool)
	}
	h.users[user.ID][conn.ID] = true
}

func (h *Hub) unbindLocked(conn *Connection) {
	if conn.User.ID == 0 || h.users[conn.User.ID] == nil {
		return
	}
	delete(h.users[conn.User.ID], conn.ID)
	if len(h.users[conn.User.ID]) == 0 {
		delete(h.users, conn.User.ID)
	}
}

// SendToUser queues data on every connection of the user.
func (h *Hub) SendToUser(userID domain.UserID, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	connIDs := h.users[userID]
	if len(connIDs) == 0 {
		return domain.ErrNotConnected
	}
	queued := 0
	for connID := range connIDs {
		conn, ok := h.connections[connID]
		if !ok {
			continue
		}
		select {
		case conn.Send <- data:
			queued++
		default:
			// Buffer full, close the connection
			h.logger.Warn("connection buffer full, closing", "conn_id", connID)
			go h.Unregister(conn)
		}
	}
	if queued == 0 {
		return ErrBufferFull
	}
	return nil
}

// SendJSONToUser sends a JSON message to every connection of the user.
func (h *Hub) SendJSONToUser(userID domain.UserID, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.SendToUser(userID, data)
}

// SendToConnection sends a message to a specific connection.
func (h *Hub) SendToConnection(conn *Connection, data []byte) error {
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// SendJSONToConnection sends a JSON message to a specific connection.
func (h *Hub) SendJSONToConnection(conn *Connection, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.SendToConnection(conn, data)
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// UserCount returns the number of users with at least one connection.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}

// IsConnected checks if a user has any active connections.
func (h *Hub) IsConnected(userID domain.UserID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

// ErrBufferFull is returned when the send buffer is full.
var ErrBufferFull = &BufferFullError{}

// BufferFullError represents a buffer full error.
type BufferFullError struct{}

func (e *BufferFullError) Error() string {
	return "send buffer full"
}
