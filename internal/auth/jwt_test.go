package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	Init("test-secret")

	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	userID, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if userID != 42 {
		t.Errorf("Expected user ID 42, got %d", userID)
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	Init("test-secret")

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ValidateToken(bad); err == nil {
			t.Errorf("ValidateToken(%q) should fail", bad)
		}
	}
}

func TestValidateToken_RejectsWrongKey(t *testing.T) {
	Init("secret-one")
	token, err := GenerateToken(7)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	Init("secret-two")
	if _, err := ValidateToken(token); err == nil {
		t.Error("Token signed with a different key should be rejected")
	}
}
