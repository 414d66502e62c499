package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, topic string) *Client {
	return &Client{
		id:    uuid.New(),
		hub:   hub,
		topic: topic,
		send:  make(chan []byte, 256),
	}
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		return received
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client did not receive message")
	}
	return Event{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.send:
		t.Fatal("client should not have received a message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRegistration(t *testing.T) {
	hub := runHub(t)
	client := mockClient(hub, TopicAdmin)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.rooms[TopicAdmin][client] {
		t.Fatal("client not registered in admin room")
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := runHub(t)
	topic := StudentTopic("a@x.com")
	client1 := mockClient(hub, topic)
	client2 := mockClient(hub, topic)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[topic]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[topic]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[topic] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
}

func TestPublishOrder_AdminAndOwner(t *testing.T) {
	hub := runHub(t)
	admin := mockClient(hub, TopicAdmin)
	owner := mockClient(hub, StudentTopic("a@x.com"))
	other := mockClient(hub, StudentTopic("b@x.com"))

	hub.register <- admin
	hub.register <- owner
	hub.register <- other
	time.Sleep(10 * time.Millisecond)

	hub.PublishOrder("order.status_updated", "a@x.com", map[string]any{"id": 1001, "status": "delivered"})

	for name, c := range map[string]*Client{"admin": admin, "owner": owner} {
		got := receive(t, c)
		if got.Type != "order.status_updated" {
			t.Errorf("%s: type: got %q", name, got.Type)
		}
		if !strings.Contains(string(got.Payload), `"status":"delivered"`) {
			t.Errorf("%s: payload: got %s", name, got.Payload)
		}
	}
	expectNothing(t, other)
}

func TestPublish_UnknownTopic(t *testing.T) {
	hub := runHub(t)
	admin := mockClient(hub, TopicAdmin)
	hub.register <- admin
	time.Sleep(10 * time.Millisecond)

	hub.Publish(StudentTopic("nobody@x.com"), Event{Type: "order.created", Payload: json.RawMessage(`{}`)})
	expectNothing(t, admin)
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := mockClient(hub, TopicAdmin)
	hub.register <- client
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.send; ok {
		t.Fatal("client send channel should be closed")
	}
}

func TestServeWS_DeliversEvents(t *testing.T) {
	hub := runHub(t)
	authorize := func(_ context.Context, token string) (string, error) {
		if token != "admin-token" {
			return "", errors.New("invalid")
		}
		return TopicAdmin, nil
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, authorize, w, r)
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// bad token is rejected before the upgrade
	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=nope", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token=admin-token", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// wait for registration
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.rooms[TopicAdmin])
		hub.mu.RUnlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.PublishOrder("order.created", "a@x.com", map[string]any{"id": 1001})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Event
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "order.created" {
		t.Errorf("type: got %q, want %q", got.Type, "order.created")
	}
}
