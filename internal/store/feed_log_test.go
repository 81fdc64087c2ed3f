package store

import (
	"testing"
	"time"

	"github.com/fernwood/nestling/internal/database"
	"github.com/fernwood/nestling/internal/model"
)

func setupFeedTestDB(t *testing.T) (*FeedStore, *CaretakerStore, string, string) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	family, err := NewFamilyStore(db).Create("Feed Test", "feed-test")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	baby, err := NewBabyStore(db).Create(family.ID, "Max", "", model.GenderMale,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create baby: %v", err)
	}
	return NewFeedStore(db), NewCaretakerStore(db), family.ID, baby.ID
}

func TestFeedLogCRUD(t *testing.T) {
	fs, cs, familyID, babyID := setupFeedTestDB(t)

	caretaker, err := cs.Create(familyID, "mara", "Mara", "parent", "1234")
	if err != nil {
		t.Fatalf("create caretaker: %v", err)
	}

	when := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	amount := 4.5
	log, err := fs.Create(FeedFields{
		BabyID:      babyID,
		CaretakerID: &caretaker.ID,
		Time:        when,
		Type:        model.FeedTypeBottle,
		Amount:      &amount,
		UnitAbbr:    "oz",
	})
	if err != nil {
		t.Fatalf("create feed log: %v", err)
	}
	if log.Type != model.FeedTypeBottle {
		t.Errorf("type = %q, want %q", log.Type, model.FeedTypeBottle)
	}
	if log.Amount == nil || *log.Amount != 4.5 {
		t.Errorf("amount = %v, want 4.5", log.Amount)
	}
	if log.UnitAbbr != "oz" {
		t.Errorf("unit = %q, want %q", log.UnitAbbr, "oz")
	}
	if log.CaretakerName != "Mara" {
		t.Errorf("caretaker name = %q, want %q", log.CaretakerName, "Mara")
	}

	// Switch to a breast feed; bottle fields clear out.
	duration := 720
	updated, err := fs.Update(log.ID, FeedFields{
		BabyID:       babyID,
		CaretakerID:  &caretaker.ID,
		Time:         when,
		Type:         model.FeedTypeBreast,
		Side:         model.BreastSideLeft,
		FeedDuration: &duration,
	})
	if err != nil {
		t.Fatalf("update feed log: %v", err)
	}
	if updated.Type != model.FeedTypeBreast {
		t.Errorf("type = %q, want %q", updated.Type, model.FeedTypeBreast)
	}
	if updated.Side != model.BreastSideLeft {
		t.Errorf("side = %q, want %q", updated.Side, model.BreastSideLeft)
	}
	if updated.FeedDuration == nil || *updated.FeedDuration != 720 {
		t.Errorf("feed duration = %v, want 720", updated.FeedDuration)
	}
	if updated.Amount != nil {
		t.Errorf("amount = %v, want nil", updated.Amount)
	}

	if err := fs.SoftDelete(log.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	got, err := fs.GetByID(log.ID, familyID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after soft delete")
	}
}

func TestFeedLogLastFeedTime(t *testing.T) {
	fs, _, _, babyID := setupFeedTestDB(t)

	last, err := fs.LastFeedTime(babyID)
	if err != nil {
		t.Fatalf("last feed time on empty table: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("last feed = %v, want zero", last)
	}

	earlier := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)
	later := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for _, when := range []time.Time{later, earlier} {
		if _, err := fs.Create(FeedFields{
			BabyID: babyID, Time: when, Type: model.FeedTypeSolids, Food: "banana",
		}); err != nil {
			t.Fatalf("create feed log: %v", err)
		}
	}

	last, err = fs.LastFeedTime(babyID)
	if err != nil {
		t.Fatalf("last feed time: %v", err)
	}
	if !last.Equal(later) {
		t.Errorf("last feed = %v, want %v", last, later)
	}
}
