package auth

import (
	"testing"

	"land-backend/internal/config"
	"land-backend/internal/models"

	"github.com/google/uuid"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "land-backend"
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig("secret-one"))
	user := &models.User{ID: uuid.New(), Email: "approver@example.com", Role: models.RoleApprover, IsActive: true}

	token, err := mgr.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != models.RoleApprover {
		t.Fatalf("expected role %q, got %q", models.RoleApprover, claims.Role)
	}
}

func TestTokenRejectedWithOtherSecret(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleInputter, IsActive: true}
	token, err := NewJWTManager(testConfig("secret-one")).GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewJWTManager(testConfig("secret-two")).ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "correct horse") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestPasswordHashingRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if VerifyPassword("", "") {
		t.Fatal("empty hash must never verify")
	}
}
