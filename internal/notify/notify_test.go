package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	logger := zerolog.Nop()
	hub := NewHub(&logger)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Attach(w, r, r.URL.Query().Get("recipient"))
	}))
	t.Cleanup(server.Close)

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, recipientID string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?recipient=" + recipientID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConns(t *testing.T, hub *Hub, recipientID string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.conns[recipientID])
		hub.mu.RUnlock()
		if got == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("recipient %q never reached %d connections", recipientID, want)
}

func TestPublishReachesEveryConnectionOfRecipient(t *testing.T) {
	hub, server := newTestHub(t)

	first := dial(t, server, "alice")
	second := dial(t, server, "alice")
	other := dial(t, server, "bob")
	waitForConns(t, hub, "alice", 2)
	waitForConns(t, hub, "bob", 1)

	sent := Event{Kind: "welcome_message", Title: "Welcome", Message: "hi", SentAt: 42}
	hub.Publish("alice", sent)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		var got Event
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != sent {
			t.Fatalf("got %+v, want %+v", got, sent)
		}
	}

	// The other recipient hears nothing.
	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatalf("event leaked to another recipient")
	}
}

func TestConcurrentPublishesToOneConnection(t *testing.T) {
	hub, server := newTestHub(t)

	conn := dial(t, server, "alice")
	waitForConns(t, hub, "alice", 1)

	const publishes = 200
	var wg sync.WaitGroup
	for i := 0; i < publishes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish("alice", Event{Kind: "welcome_message", SentAt: 42})
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for i := 0; i < publishes; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publishers never finished")
	}
}

func TestClosedConnectionIsForgotten(t *testing.T) {
	hub, server := newTestHub(t)

	conn := dial(t, server, "alice")
	waitForConns(t, hub, "alice", 1)

	conn.Close()
	waitForConns(t, hub, "alice", 0)

	// Publishing into the void must not panic.
	hub.Publish("alice", Event{Kind: "welcome_message"})
}
