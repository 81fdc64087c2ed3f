package store

import (
	"testing"

	"github.com/fernwood/nestling/internal/database"
)

func setupSettingsTestDB(t *testing.T) (*SettingsStore, string) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	family, err := NewFamilyStore(db).Create("Settings Test", "settings-test")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return NewSettingsStore(db), family.ID
}

func TestSettingsDefaults(t *testing.T) {
	ss, familyID := setupSettingsTestDB(t)

	// First read materializes the default row.
	s, err := ss.GetByFamily(familyID)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if s.Timezone != "UTC" {
		t.Errorf("timezone = %q, want %q", s.Timezone, "UTC")
	}
	if s.DefaultBottleUnit != "oz" {
		t.Errorf("bottle unit = %q, want %q", s.DefaultBottleUnit, "oz")
	}
	if s.DefaultSolidsUnit != "g" {
		t.Errorf("solids unit = %q, want %q", s.DefaultSolidsUnit, "g")
	}

	// Second read returns the same row, not a new one.
	again, err := ss.GetByFamily(familyID)
	if err != nil {
		t.Fatalf("get settings again: %v", err)
	}
	if again.ID != s.ID {
		t.Errorf("second read id = %q, want %q", again.ID, s.ID)
	}
}

func TestSettingsUpdate(t *testing.T) {
	ss, familyID := setupSettingsTestDB(t)

	updated, err := ss.Update(familyID, "America/Denver", "ml", "g", 180, 3)
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.Timezone != "America/Denver" {
		t.Errorf("timezone = %q, want %q", updated.Timezone, "America/Denver")
	}
	if updated.DefaultBottleUnit != "ml" {
		t.Errorf("bottle unit = %q, want %q", updated.DefaultBottleUnit, "ml")
	}
	if updated.FeedGapMinutes != 180 {
		t.Errorf("feed gap = %d, want 180", updated.FeedGapMinutes)
	}
	if updated.OpenSleepAlertHours != 3 {
		t.Errorf("open sleep alert = %d, want 3", updated.OpenSleepAlertHours)
	}
}
