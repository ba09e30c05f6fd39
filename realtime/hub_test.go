package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/require"
)

// fakeConn feeds inbound frames from a channel and records outbound text frames.
type fakeConn struct {
	in chan []byte

	mu     sync.Mutex
	out    [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-f.in
	if !ok {
		return 0, nil, errors.New("closed")
	}
	return websocket.TextMessage, msg, nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == websocket.TextMessage {
		f.out = append(f.out, data)
	}
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error          { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error         { return nil }
func (f *fakeConn) SetReadLimit(int64)                       {}
func (f *fakeConn) SetPongHandler(func(appData string) error) {}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, raw := range f.out {
		var fr struct {
			Event string `json:"event"`
		}
		if json.Unmarshal(raw, &fr) == nil {
			names = append(names, fr.Event)
		}
	}
	return names
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func connect(t *testing.T, h *Hub) (*Client, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	c := NewClient(h, conn)
	go c.Serve(func(*Client, []byte) {})
	t.Cleanup(func() { close(conn.in) })
	return c, conn
}

func TestEmitReachesEveryClient(t *testing.T) {
	h := startHub(t)
	_, a := connect(t, h)
	_, b := connect(t, h)

	require.Eventually(t, func() bool {
		h.Emit("new_bid", map[string]any{"bidAmount": 40})
		return len(a.events()) > 0 && len(b.events()) > 0
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, "new_bid", a.events()[0])
}

func TestRoomScopedDelivery(t *testing.T) {
	h := startHub(t)
	inside := newFakeConn()
	outside := newFakeConn()
	ci := NewClient(h, inside)
	co := NewClient(h, outside)
	h.Register(ci)
	h.Register(co)
	go ci.writePump()
	go co.writePump()

	room := AssignmentRoom("a1")
	ci.Join(room)
	h.EmitToRoom(room, "receive_message", map[string]any{"content": "hi"})

	require.Eventually(t, func() bool {
		return len(inside.events()) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"receive_message"}, inside.events())

	ci.Leave(room)
	h.EmitToRoom(room, "receive_message", map[string]any{"content": "again"})
	h.Emit("status_update", map[string]any{"status": "assigned"})

	require.Eventually(t, func() bool {
		return len(inside.events()) == 2 && len(outside.events()) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"receive_message", "status_update"}, inside.events())
	require.Equal(t, []string{"status_update"}, outside.events())
}

func TestTeardownRemovesMemberships(t *testing.T) {
	h := startHub(t)
	conn := newFakeConn()
	c := NewClient(h, conn)
	h.Register(c)
	c.Join(SubjectRoom("Mathematics"))
	h.Unregister(c)

	other := newFakeConn()
	co := NewClient(h, other)
	h.Register(co)
	go co.writePump()
	co.Join(SubjectRoom("Mathematics"))

	h.EmitToRoom(SubjectRoom("Mathematics"), "new_assignment", nil)
	require.Eventually(t, func() bool {
		return len(other.events()) == 1
	}, time.Second, 10*time.Millisecond)

	_, open := <-c.send
	require.False(t, open)
}

func TestSlowClientIsDropped(t *testing.T) {
	h := startHub(t)
	slow := NewClient(h, newFakeConn())
	h.Register(slow)

	for i := 0; i < 2*cap(slow.send)+10; i++ {
		h.Emit("new_bid", i)
		time.Sleep(100 * time.Microsecond)
	}
	require.Eventually(t, func() bool {
		return len(h.outbound) == 0
	}, time.Second, 10*time.Millisecond)

	buffered := 0
	for range slow.send {
		buffered++
	}
	require.Equal(t, cap(slow.send), buffered)
}

func TestReplyTargetsOneClient(t *testing.T) {
	h := startHub(t)
	a, connA := connect(t, h)
	_, connB := connect(t, h)

	require.Eventually(t, func() bool {
		a.Reply("error", map[string]string{"message": "nope"})
		return len(connA.events()) > 0
	}, time.Second, 10*time.Millisecond)
	require.Empty(t, connB.events())
}

type captureRelay struct {
	mu   sync.Mutex
	envs []Envelope
	err  error
}

func (r *captureRelay) Publish(_ context.Context, env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.envs = append(r.envs, env)
	return nil
}

func TestRelayCarriesEmits(t *testing.T) {
	relay := &captureRelay{}
	h := NewHub().WithRelay(relay)

	h.EmitToRoom(UserRoom([16]byte{1}), "status_update", map[string]string{"status": "delivered"})

	require.Len(t, relay.envs, 1)
	require.Equal(t, "user:01000000-0000-0000-0000-000000000000", relay.envs[0].Room)

	var fr Frame
	require.NoError(t, json.Unmarshal(relay.envs[0].Frame, &fr))
	require.Equal(t, "status_update", fr.Event)
	require.Empty(t, h.outbound)

	relay.err = errors.New("redis down")
	h.Emit("new_bid", nil)
	require.Len(t, h.outbound, 1)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Emit("new_bid", 1)
	r.EmitToRoom("assignment:x", "receive_message", 2)

	require.Len(t, r.Events(), 2)
	require.Equal(t, "assignment:x", r.Named("receive_message")[0].Room)
	r.Reset()
	require.Empty(t, r.Events())
}
