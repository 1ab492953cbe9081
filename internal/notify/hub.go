package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"RentalLedger/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Message is the frame pushed to websocket subscribers.
type Message struct {
	Type     string          `json:"type"`
	Text     string          `json:"message"`
	Reminder models.Reminder `json:"reminder"`
}

// Hub pushes reminders to connected websocket clients. A client that cannot
// be written to is dropped.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	// send serialises writers; a gorilla connection allows only one.
	send sync.Mutex

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     logger,
		clients: map[*websocket.Conn]struct{}{},
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("reminder subscriber connected", zap.String("remote", r.RemoteAddr))

	// Drain reads so close frames and pings are handled.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

// Clients reports how many subscribers are connected.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Notify(_ context.Context, r models.Reminder) error {
	msg := Message{Type: "reminder", Text: r.Message(), Reminder: r}
	h.send.Lock()
	defer h.send.Unlock()

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(msg); err != nil {
			h.log.Warn("reminder push failed", zap.Error(err))
			h.drop(c)
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.send.Lock()
	defer h.send.Unlock()
	h.mu.Lock()
	conns := h.clients
	h.clients = map[*websocket.Conn]struct{}{}
	h.mu.Unlock()
	for c := range conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = c.Close()
	}
}
