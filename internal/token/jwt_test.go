package token

import (
	"testing"
	"time"

	"github.com/google/uuid"

	dErrors "autoquote/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-signing-key", "autoquote", "autoquote-api", 15*time.Minute)

	userID := uuid.New()
	sessionID := uuid.New()

	tokenStr, jti, err := svc.GenerateAccessToken(userID, sessionID)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if jti == "" {
		t.Fatalf("expected non-empty jti")
	}

	claims, err := svc.ValidateToken(tokenStr)
	if err != nil {
		t.Fatalf("unexpected error validating token: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.SessionID != sessionID.String() {
		t.Fatalf("expected session id %s, got %s", sessionID, claims.SessionID)
	}
	if claims.JTI != jti {
		t.Fatalf("expected jti %s, got %s", jti, claims.JTI)
	}
}

func TestValidateRejectsForeignKey(t *testing.T) {
	svc := NewJWTService("key-one", "autoquote", "autoquote-api", 15*time.Minute)
	other := NewJWTService("key-two", "autoquote", "autoquote-api", 15*time.Minute)

	tokenStr, _, err := svc.GenerateAccessToken(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}

	if _, err := other.ValidateToken(tokenStr); err == nil {
		t.Fatalf("expected validation failure for token signed with another key")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-signing-key", "autoquote", "autoquote-api", -time.Minute)

	tokenStr, _, err := svc.GenerateAccessToken(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}

	_, err = svc.ValidateToken(tokenStr)
	if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	svc := NewJWTService("test-signing-key", "autoquote", "autoquote-api", 15*time.Minute)
	if _, err := svc.ValidateToken(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
