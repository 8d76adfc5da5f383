package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
)

type fakeConn struct {
	mu      sync.Mutex
	written []string
	types   []int
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(mt int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, mt)
	f.written = append(f.written, string(data))
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.written...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestBroadcastJSON(t *testing.T) {
	h := New("test", nil)
	go h.Run()
	defer h.Stop()

	conn := newFakeConn()
	client := NewClient(h, conn)
	go client.Run()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	if err := h.BroadcastJSON(map[string]int{"score": 10}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(conn.messages()) == 1 })
	if got := conn.messages()[0]; got != `{"score":10}` {
		t.Errorf("unexpected message %s", got)
	}

	conn.Close()
	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

func TestBroadcastTextFrames(t *testing.T) {
	h := New("text", nil)
	go h.Run()
	defer h.Stop()

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	if err := h.BroadcastJSON(map[string]int{"index": 1}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(conn.messages()) == 1 })
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.types[0] != websocket.TextMessage {
		t.Errorf("expected text frame, got %d", conn.types[0])
	}
}

func TestStopClosesClients(t *testing.T) {
	h := New("stop", nil)
	go h.Run()

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	h.Stop()
	h.Stop()
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	select {
	case <-conn.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not closed")
	}
	if NewClient(h, newFakeConn()) != nil {
		t.Error("stopped hub should not accept clients")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(nil)
	defer r.CloseAll()

	if err := r.BroadcastJSON("nobody", "x"); err != nil {
		t.Errorf("broadcast to unknown hub: %v", err)
	}
	if r.Len() != 0 {
		t.Error("broadcast must not create hubs")
	}

	a := r.Get("a")
	if r.Get("a") != a {
		t.Error("Get should return the same hub")
	}
	r.Get("b")
	if r.Len() != 2 {
		t.Errorf("expected 2 hubs, got %d", r.Len())
	}

	r.Close("a")
	select {
	case <-a.Done():
	default:
		t.Error("closed hub should be stopped")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 hub, got %d", r.Len())
	}
}
