package services

import (
	"sync"
	"time"

	"land-backend/internal/metrics"
	"land-backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 16
)

type hubClient struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan *models.Notification
}

// NotificationHub pushes freshly stored notifications to the websocket
// connections of their recipients. A user may hold several connections.
type NotificationHub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]map[*hubClient]bool
	log     logrus.FieldLogger
}

func NewNotificationHub(log logrus.FieldLogger) *NotificationHub {
	return &NotificationHub{
		clients: make(map[uuid.UUID]map[*hubClient]bool),
		log:     log,
	}
}

// Serve owns conn until the peer disconnects
func (h *NotificationHub) Serve(userID uuid.UUID, conn *websocket.Conn) {
	c := &hubClient{userID: userID, conn: conn, send: make(chan *models.Notification, wsSendBuffer)}
	h.register(c)

	go h.writePump(c)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
}

// Publish queues n for every connection of userID. Slow clients that have
// filled their buffer are dropped.
func (h *NotificationHub) Publish(userID uuid.UUID, n *models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- n:
		default:
			h.log.WithField("user_id", userID).Warn("notification client too slow, dropping connection")
			h.removeLocked(c)
		}
	}
}

// ClientCount returns the number of open connections for a user
func (h *NotificationHub) ClientCount(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Close disconnects every client
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *NotificationHub) register(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*hubClient]bool)
		h.clients[c.userID] = set
	}
	set[c] = true
	metrics.WebsocketClients.Inc()
}

func (h *NotificationHub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *NotificationHub) removeLocked(c *hubClient) {
	set := h.clients[c.userID]
	if !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	metrics.WebsocketClients.Dec()
}

func (h *NotificationHub) writePump(c *hubClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case n, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
