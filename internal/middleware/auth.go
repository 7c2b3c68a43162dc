package middleware

import (
	"errors"
	"net/http"
	"strings"

	pkgAuth "quiprend-service/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextPlayerIDKey = "playerID"
	ContextGameCodeKey = "gameCode"
)

// AuthRequired validates the player token and stashes the player identity
// and the game code it is bound to on the request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := pkgAuth.ParsePlayerToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		playerID, err := uuid.Parse(claims.PlayerID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextPlayerIDKey, playerID)
		c.Set(ContextGameCodeKey, claims.GameCode)
		c.Next()
	}
}

func extractBearerToken(authHeader string) (string, error) {
	if strings.TrimSpace(authHeader) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
