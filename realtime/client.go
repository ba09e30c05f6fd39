package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/anjiri1684/assignment_bidding/authz"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 64 * 1024
)

// Conn is the subset of *websocket.Conn a client needs.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one websocket connection.
type Client struct {
	ID   uuid.UUID
	hub  *Hub
	conn Conn
	send chan []byte

	// rooms is owned by the hub's Run goroutine.
	rooms map[string]struct{}

	mu       sync.RWMutex
	identity *authz.Identity
}

func NewClient(hub *Hub, conn Conn) *Client {
	return &Client{
		ID:    uuid.New(),
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, 256),
		rooms: make(map[string]struct{}),
	}
}

func (c *Client) Authenticate(id authz.Identity) {
	c.mu.Lock()
	c.identity = &id
	c.mu.Unlock()
}

func (c *Client) Identity() (authz.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return authz.Identity{}, false
	}
	return *c.identity, true
}

// Reply sends event to this client only.
func (c *Client) Reply(event string, payload any) {
	frame, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		log.WithError(err).WithField("event", event).Error("🔥 failed to encode reply")
		return
	}
	c.hub.replyTo(c, frame)
}

func (c *Client) Join(room string)  { c.hub.Join(c, room) }
func (c *Client) Leave(room string) { c.hub.Leave(c, room) }

// Serve registers c, starts its writer and blocks reading frames into handle
// until the connection fails. Teardown removes every room membership.
func (c *Client) Serve(handle func(c *Client, msg []byte)) {
	c.hub.Register(c)
	go c.writePump()
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("client", c.ID).Warn("websocket read error")
			}
			return
		}
		handle(c, msg)
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
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
