package websocket

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected staff dashboard. Scope is the coordinator's unit
// code; the student-services account connects with an empty scope and
// receives updates for every unit.
type Client struct {
	username string
	scope    string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

type broadcastMessage struct {
	unitCode string
	message  []byte
}

// Hub fans review updates out to connected dashboards by unit-code scope.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.Mutex
}

var hub = &Hub{
	clients:    make(map[*Client]bool),
	broadcast:  make(chan broadcastMessage),
	register:   make(chan *Client),
	unregister: make(chan *Client),
}

// Start launches the hub loop. Call once from main.
func Start() {
	go hub.run()
}

func (h *Hub) run() {
	log.Println("Review feed hub started")
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Review feed: %s connected (scope=%q)", client.username, client.scope)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if !client.wants(msg.unitCode) {
					continue
				}
				select {
				case client.send <- msg.message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// wants reports whether an update about unitCode should reach this client.
// Admin scope (empty) receives everything.
func (c *Client) wants(unitCode string) bool {
	if c.scope == "" {
		return true
	}
	return strings.EqualFold(c.scope, unitCode)
}

// ServeWS upgrades the connection and registers it with the hub under the
// given identity and unit-code scope.
func ServeWS(w http.ResponseWriter, r *http.Request, username, scope string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Review feed upgrade failed: %v", err)
		return
	}

	client := &Client{
		username: username,
		scope:    scope,
		conn:     conn,
		send:     make(chan []byte, 16),
		hub:      hub,
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// Dashboards only listen; drain until the peer goes away.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
