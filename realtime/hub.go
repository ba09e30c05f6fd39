// Package realtime fans lifecycle events out to connected websocket clients.
//
// A Hub owns client registration and room membership. All of its maps are
// touched only by the Run goroutine; everything else talks to it through
// channels. Delivery is fire-and-forget: a client whose send buffer is full is
// dropped, and nothing is replayed to clients that connect later.
package realtime

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"
)

// Broadcaster is what the core uses to publish events.
type Broadcaster interface {
	Emit(event string, payload any)
	EmitToRoom(room, event string, payload any)
}

// Frame is the shape of every server to client message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Envelope is a marshalled frame plus its target. An empty Room means every client.
type Envelope struct {
	Room  string          `json:"room,omitempty"`
	Frame json.RawMessage `json:"frame"`
}

type membership struct {
	client *Client
	room   string
}

type reply struct {
	client *Client
	frame  []byte
}

type Hub struct {
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	outbound   chan Envelope
	direct     chan reply
	done       chan struct{}

	relay Relay
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		outbound:   make(chan Envelope, 256),
		direct:     make(chan reply, 64),
		done:       make(chan struct{}),
	}
}

// WithRelay routes every emit through r so that all instances deliver it.
func (h *Hub) WithRelay(r Relay) *Hub {
	h.relay = r
	return h
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			log.WithField("client", c.ID).Debug("client registered")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				log.WithField("client", c.ID).Debug("client unregistered")
			}
		case m := <-h.join:
			if _, ok := h.clients[m.client]; !ok {
				continue
			}
			members, ok := h.rooms[m.room]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[m.room] = members
			}
			members[m.client] = struct{}{}
			m.client.rooms[m.room] = struct{}{}
		case m := <-h.leave:
			h.removeFromRoom(m.client, m.room)
		case env := <-h.outbound:
			h.deliver(env)
		case r := <-h.direct:
			if _, ok := h.clients[r.client]; ok {
				h.sendTo(r.client, r.frame)
			}
		}
	}
}

func (h *Hub) deliver(env Envelope) {
	targets := h.clients
	if env.Room != "" {
		targets = h.rooms[env.Room]
	}
	for c := range targets {
		h.sendTo(c, env.Frame)
	}
}

func (h *Hub) sendTo(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.WithField("client", c.ID).Warn("⚠️ send buffer full, dropping client")
		h.drop(c)
	}
}

// drop forgets c and closes its send channel. Only the Run goroutine calls it.
func (h *Hub) drop(c *Client) {
	for room := range c.rooms {
		h.removeFromRoom(c, room)
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) removeFromRoom(c *Client, room string) {
	delete(c.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Join(c *Client, room string) {
	select {
	case h.join <- membership{client: c, room: room}:
	case <-h.done:
	}
}

func (h *Hub) Leave(c *Client, room string) {
	select {
	case h.leave <- membership{client: c, room: room}:
	case <-h.done:
	}
}

func (h *Hub) replyTo(c *Client, frame []byte) {
	select {
	case h.direct <- reply{client: c, frame: frame}:
	case <-h.done:
	}
}

func (h *Hub) Emit(event string, payload any) {
	h.publish("", event, payload)
}

func (h *Hub) EmitToRoom(room, event string, payload any) {
	h.publish(room, event, payload)
}

func (h *Hub) publish(room, event string, payload any) {
	frame, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		log.WithError(err).WithField("event", event).Error("🔥 failed to encode event")
		return
	}
	env := Envelope{Room: room, Frame: frame}

	if h.relay != nil {
		err := h.relay.Publish(context.Background(), env)
		if err == nil {
			return
		}
		log.WithError(err).WithField("event", event).Warn("⚠️ relay publish failed, delivering locally")
	}
	h.Deliver(env)
}

// Deliver queues env for local clients only.
func (h *Hub) Deliver(env Envelope) {
	select {
	case h.outbound <- env:
	default:
		log.WithField("room", env.Room).Warn("⚠️ outbound queue full, event dropped")
	}
}
