package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-32-characters-long"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	handler := NewJWTHandler(testSecret, time.Hour)

	token, err := handler.GenerateAccessToken(42, "maria")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := handler.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", claims.UserID)
	}
	if claims.Username != "maria" {
		t.Errorf("Expected username maria, got %s", claims.Username)
	}
	if claims.Issuer != "easygrow" {
		t.Errorf("Expected issuer easygrow, got %s", claims.Issuer)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	handler := NewJWTHandler(testSecret, -time.Minute)

	token, err := handler.GenerateAccessToken(1, "expired")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := handler.ValidateAccessToken(token); err == nil {
		t.Error("Expected expired token to fail validation")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	handler := NewJWTHandler(testSecret, time.Hour)
	other := NewJWTHandler("a-completely-different-secret-value-here", time.Hour)

	token, err := handler.GenerateAccessToken(1, "maria")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Error("Expected token signed with different secret to fail validation")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	handler := NewJWTHandler(testSecret, time.Hour)

	if _, err := handler.ValidateAccessToken("not.a.token"); err == nil {
		t.Error("Expected garbage token to fail validation")
	}
}
