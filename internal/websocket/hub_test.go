package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, familyID string) *Client {
	return &Client{
		hub:      hub,
		conn:     nil,
		familyID: familyID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "fam-1")
	c2 := mockClient(hub, "fam-1")

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "fam-1")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastFamilyScoped(t *testing.T) {
	hub := NewHub(slog.Default())

	same := mockClient(hub, "fam-1")
	other := mockClient(hub, "fam-2")
	hub.Register(same)
	hub.Register(other)

	hub.Notify("fam-1", "sleep_log", "created", "abc-123")

	select {
	case data := <-same.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "sleep_log_created" {
			t.Errorf("type = %q, want %q", got.Type, "sleep_log_created")
		}
		if got.ID != "abc-123" {
			t.Errorf("id = %q, want %q", got.ID, "abc-123")
		}
	case <-time.After(time.Second):
		t.Fatal("same-family client did not receive broadcast")
	}

	select {
	case <-other.send:
		t.Fatal("other-family client received the broadcast")
	default:
	}
}

func TestBroadcastFullBufferDropsMessage(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "fam-1")
	hub.Register(c)

	// Fill the buffer, then one more; Broadcast must not block.
	for i := 0; i < sendBufferSize+1; i++ {
		hub.Broadcast("fam-1", NewMessage("note", "created", "n"))
	}

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
}
