package auth

import (
	"testing"
	"time"
)

func TestTokenIssueAndVerify(t *testing.T) {
	ti := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := ti.Issue("ct-1", "fam-1", "parent")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	ac, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if ac.CaretakerID != "ct-1" {
		t.Errorf("CaretakerID = %q, want %q", ac.CaretakerID, "ct-1")
	}
	if ac.FamilyID != "fam-1" {
		t.Errorf("FamilyID = %q, want %q", ac.FamilyID, "fam-1")
	}
	if ac.Role != "parent" {
		t.Errorf("Role = %q, want %q", ac.Role, "parent")
	}
}

func TestTokenExpired(t *testing.T) {
	ti := NewTokenIssuer([]byte("test-secret"), -time.Minute)

	token, err := ti.Issue("ct-1", "fam-1", "parent")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := ti.Verify(token); err != ErrInvalidToken {
		t.Errorf("verify expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"), time.Hour)
	verifier := NewTokenIssuer([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue("ct-1", "fam-1", "parent")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Errorf("verify with wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	ti := NewTokenIssuer([]byte("test-secret"), time.Hour)
	for _, bad := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := ti.Verify(bad); err != ErrInvalidToken {
			t.Errorf("Verify(%q): err = %v, want ErrInvalidToken", bad, err)
		}
	}
}
