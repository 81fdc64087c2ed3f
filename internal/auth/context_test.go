package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		CaretakerID: "ct-1",
		FamilyID:    "fam-1",
		Role:        "parent",
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.CaretakerID != "ct-1" {
		t.Errorf("CaretakerID = %q, want %q", got.CaretakerID, "ct-1")
	}
	if got.FamilyID != "fam-1" {
		t.Errorf("FamilyID = %q, want %q", got.FamilyID, "fam-1")
	}
	if got.Role != "parent" {
		t.Errorf("Role = %q, want %q", got.Role, "parent")
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestFamilyID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{FamilyID: "fam-42"})
	if FamilyID(ctx) != "fam-42" {
		t.Errorf("FamilyID = %q, want %q", FamilyID(ctx), "fam-42")
	}
	if FamilyID(context.Background()) != "" {
		t.Error("expected empty for missing context")
	}
}

func TestCaretakerID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{CaretakerID: "ct-7"})
	if CaretakerID(ctx) != "ct-7" {
		t.Errorf("CaretakerID = %q, want %q", CaretakerID(ctx), "ct-7")
	}
	if CaretakerID(context.Background()) != "" {
		t.Error("expected empty for missing context")
	}
}

func TestIsParent(t *testing.T) {
	if !IsParent(WithAuth(context.Background(), AuthContext{Role: "parent"})) {
		t.Error("expected IsParent = true for parent role")
	}
	if IsParent(WithAuth(context.Background(), AuthContext{Role: "sitter"})) {
		t.Error("expected IsParent = false for sitter role")
	}
	if IsParent(context.Background()) {
		t.Error("expected IsParent = false for missing context")
	}
}
