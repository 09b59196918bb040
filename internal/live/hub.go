// Package live streams order lifecycle events to websocket subscribers so
// a dashboard can follow orders moving from cart to delivery.
package live

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is a single order lifecycle notification.
type Event struct {
	Type      string    `json:"type"` // "order_opened", "crew_assigned", "order_delivered"
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans order events out to connected websocket clients. All map access
// happens on the Run goroutine; callers only touch channels.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan Event
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. Call Run in a goroutine before publishing.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 64),
	}
}

// Run owns the client set and dispatches broadcasts.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish queues an event for broadcast. Never blocks the request path:
// if the hub is saturated the event is dropped.
func (h *Hub) Publish(eventType, orderID string) {
	select {
	case h.broadcast <- Event{Type: eventType, OrderID: orderID, Timestamp: time.Now()}:
	default:
	}
}

// Handle upgrades the request and subscribes the connection to the feed.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, 64)}
	h.register <- cl

	go cl.writePump()
	go cl.readPump(h)
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; the feed is one-way. It exists to
// notice the peer going away.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}
