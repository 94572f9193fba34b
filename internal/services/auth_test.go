package services

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	s := NewAuthService("test-secret", time.Hour)

	token, err := s.GenerateToken("listener-1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.ListenerID != "listener-1" {
		t.Errorf("ListenerID = %q, want listener-1", claims.ListenerID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a", time.Hour)
	verifier := NewAuthService("secret-b", time.Hour)

	token, err := issuer.GenerateToken("listener-1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	s := NewAuthService("test-secret", -time.Minute)

	token, err := s.GenerateToken("listener-1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := s.ValidateToken(token); err == nil {
		t.Error("expired token should not validate")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	s := NewAuthService("test-secret", time.Hour)
	if _, err := s.ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage token should not validate")
	}
}
