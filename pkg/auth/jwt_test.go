package auth_test

import (
	"testing"

	"quiprend-service/internal/config"
	"quiprend-service/pkg/auth"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", Expire: 1},
	}
	m.Run()
}

func TestPlayerTokenRoundTrip(t *testing.T) {
	playerID := uuid.New()

	token, err := auth.GeneratePlayerToken(playerID, "ABC123", true)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := auth.ParsePlayerToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.PlayerID != playerID.String() {
		t.Fatalf("playerID = %s, want %s", claims.PlayerID, playerID)
	}
	if claims.GameCode != "ABC123" {
		t.Fatalf("gameCode = %s, want ABC123", claims.GameCode)
	}
	if !claims.Spectator {
		t.Fatal("spectator flag lost")
	}
}

func TestParsePlayerTokenRejectsGarbage(t *testing.T) {
	if _, err := auth.ParsePlayerToken("not-a-token"); err == nil {
		t.Fatal("expected parse error")
	}
}
