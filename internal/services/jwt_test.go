package services_test

import (
	"testing"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/services"
)

func TestJWTRoundTrip(t *testing.T) {
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "test-secret"})

	token, err := jwtService.GenerateToken("alice", "session-1", true)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.Username != "alice" || claims.SessionID != "session-1" || !claims.IsAdmin {
		t.Errorf("claims mismatch: %+v", claims)
	}

	if _, err := jwtService.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token should be rejected")
	}

	other := services.NewJWTService(&config.Config{JWTSecret: "different-secret"})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}
