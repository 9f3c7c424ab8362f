package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("longenough1", 10)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if len(hash) != 60 {
		t.Fatalf("bcrypt hash length: got %d want 60", len(hash))
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("bcrypt hash prefix: got %q", hash[:4])
	}

	if !VerifyPassword(hash, "longenough1") {
		t.Fatalf("expected matching password to verify")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Fatalf("expected mismatching password to fail")
	}
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatalf("expected invalid hash to fail verification")
	}
}

func TestHashPasswordMinimumCost(t *testing.T) {
	// a cost below bcrypt's default is raised, never lowered
	hash, err := HashPassword("longenough1", 0)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.Contains(hash, "$10$") {
		t.Fatalf("expected cost 10 hash, got %q", hash)
	}
}
