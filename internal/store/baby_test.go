package store

import (
	"testing"
	"time"

	"github.com/fernwood/nestling/internal/database"
	"github.com/fernwood/nestling/internal/model"
)

func setupBabyTestDB(t *testing.T) (*BabyStore, *FamilyStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBabyStore(db), NewFamilyStore(db)
}

func TestBabyCRUD(t *testing.T) {
	bs, fs := setupBabyTestDB(t)

	family, err := fs.Create("Hendersons", "hendersons")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	birth := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	baby, err := bs.Create(family.ID, "June", "Henderson", model.GenderFemale, birth)
	if err != nil {
		t.Fatalf("create baby: %v", err)
	}
	if baby.FirstName != "June" {
		t.Errorf("first name = %q, want %q", baby.FirstName, "June")
	}
	if baby.Gender != model.GenderFemale {
		t.Errorf("gender = %q, want %q", baby.Gender, model.GenderFemale)
	}
	if !baby.BirthDate.Equal(birth) {
		t.Errorf("birth date = %v, want %v", baby.BirthDate, birth)
	}
	if baby.DeletedAt != nil {
		t.Errorf("deleted_at = %v, want nil", baby.DeletedAt)
	}

	got, err := bs.GetByID(baby.ID, family.ID)
	if err != nil {
		t.Fatalf("get baby: %v", err)
	}
	if got == nil {
		t.Fatal("expected baby, got nil")
	}

	updated, err := bs.Update(baby.ID, family.ID, "Juniper", "Henderson", model.GenderFemale, birth)
	if err != nil {
		t.Fatalf("update baby: %v", err)
	}
	if updated.FirstName != "Juniper" {
		t.Errorf("first name = %q, want %q", updated.FirstName, "Juniper")
	}

	if err := bs.SoftDelete(baby.ID); err != nil {
		t.Fatalf("soft delete baby: %v", err)
	}
	got, err = bs.GetByID(baby.ID, family.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after soft delete")
	}
}

func TestBabyFamilyScoping(t *testing.T) {
	bs, fs := setupBabyTestDB(t)

	famA, _ := fs.Create("Family A", "family-a")
	famB, _ := fs.Create("Family B", "family-b")

	birth := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	baby, err := bs.Create(famA.ID, "Ana", "A", model.GenderFemale, birth)
	if err != nil {
		t.Fatalf("create baby: %v", err)
	}

	// Other family cannot see the record.
	got, err := bs.GetByID(baby.ID, famB.ID)
	if err != nil {
		t.Fatalf("cross-family get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for cross-family read")
	}

	listA, err := bs.List(famA.ID)
	if err != nil {
		t.Fatalf("list family a: %v", err)
	}
	if len(listA) != 1 {
		t.Errorf("family a babies = %d, want 1", len(listA))
	}
	listB, err := bs.List(famB.ID)
	if err != nil {
		t.Fatalf("list family b: %v", err)
	}
	if len(listB) != 0 {
		t.Errorf("family b babies = %d, want 0", len(listB))
	}
}

func TestBabyListOrdering(t *testing.T) {
	bs, fs := setupBabyTestDB(t)
	family, _ := fs.Create("Ordering", "ordering")

	older := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	younger := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	bs.Create(family.ID, "Big", "Sib", model.GenderMale, older)
	bs.Create(family.ID, "Little", "Sib", model.GenderFemale, younger)

	babies, err := bs.List(family.ID)
	if err != nil {
		t.Fatalf("list babies: %v", err)
	}
	if len(babies) != 2 {
		t.Fatalf("babies = %d, want 2", len(babies))
	}
	if babies[0].FirstName != "Little" {
		t.Errorf("first listed = %q, want youngest first", babies[0].FirstName)
	}
}
