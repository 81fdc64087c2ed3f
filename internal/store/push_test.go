package store

import (
	"testing"
	"time"

	"github.com/fernwood/nestling/internal/database"
	"github.com/fernwood/nestling/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, string) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	family, err := NewFamilyStore(db).Create("Push Test", "push-test")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return NewPushStore(db), family.ID
}

func TestPushSubscribe(t *testing.T) {
	ps, familyID := setupPushTestDB(t)

	sub, err := ps.Subscribe(familyID, "https://push.example/abc", "p256dh-1", "auth-1", "kitchen tablet")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.Endpoint != "https://push.example/abc" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}
	if sub.Device != "kitchen tablet" {
		t.Errorf("device = %q, want %q", sub.Device, "kitchen tablet")
	}

	// Re-subscribing the same endpoint refreshes keys instead of duplicating.
	again, err := ps.Subscribe(familyID, "https://push.example/abc", "p256dh-2", "auth-2", "kitchen tablet")
	if err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	if again.P256dhKey != "p256dh-2" {
		t.Errorf("p256dh = %q, want refreshed key", again.P256dhKey)
	}

	subs, err := ps.ListByFamily(familyID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}

	if err := ps.Delete(subs[0].ID); err != nil {
		t.Fatalf("delete subscription: %v", err)
	}
	subs, _ = ps.ListByFamily(familyID)
	if len(subs) != 0 {
		t.Errorf("subscriptions after delete = %d, want 0", len(subs))
	}
}

func TestPushSentDedupe(t *testing.T) {
	ps, familyID := setupPushTestDB(t)

	sent, err := ps.WasSent(familyID, model.NotifTypeOpenSleep, "sleep-123")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if sent {
		t.Error("first check reported already sent")
	}

	sent, err = ps.WasSent(familyID, model.NotifTypeOpenSleep, "sleep-123")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !sent {
		t.Error("duplicate not detected")
	}

	// A different ref id is a fresh notification.
	sent, err = ps.WasSent(familyID, model.NotifTypeOpenSleep, "sleep-456")
	if err != nil {
		t.Fatalf("fresh ref check: %v", err)
	}
	if sent {
		t.Error("fresh ref reported already sent")
	}
}

func TestPushPruneSent(t *testing.T) {
	ps, familyID := setupPushTestDB(t)

	if _, err := ps.WasSent(familyID, model.NotifTypeFeedGap, "feed-1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	// Nothing is older than a cutoff in the past.
	n, err := ps.PruneSent(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("prune past cutoff: %v", err)
	}
	if n != 0 {
		t.Errorf("pruned %d, want 0", n)
	}

	n, err = ps.PruneSent(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("prune future cutoff: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}

	// Pruned refs can fire again.
	sent, err := ps.WasSent(familyID, model.NotifTypeFeedGap, "feed-1")
	if err != nil {
		t.Fatalf("check after prune: %v", err)
	}
	if sent {
		t.Error("pruned ref still deduped")
	}
}
