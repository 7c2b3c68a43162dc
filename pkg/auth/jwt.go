package auth

import (
	"errors"
	"time"

	"quiprend-service/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims bind a token to one seat of one game. Tokens are minted when a
// player creates or joins a game and are the only credential the service
// knows about.
type Claims struct {
	PlayerID  string `json:"playerId"`
	GameCode  string `json:"gameCode"`
	Spectator bool   `json:"spectator"`
	jwt.RegisteredClaims
}

func GeneratePlayerToken(playerID uuid.UUID, gameCode string, spectator bool) (string, error) {
	duration := time.Duration(config.GlobalConfig.JWT.Expire) * time.Hour
	claims := Claims{
		PlayerID:  playerID.String(),
		GameCode:  gameCode,
		Spectator: spectator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   gameCode,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GlobalConfig.JWT.Secret))
}

func ParsePlayerToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
