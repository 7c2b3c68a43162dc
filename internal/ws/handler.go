package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"quiprend-service/internal/service/game"
	pkgAuth "quiprend-service/pkg/auth"
	appErr "quiprend-service/pkg/errors"
	"quiprend-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventFeed delivers the ordered event stream for one game. The returned
// cancel func must be called when the consumer is done.
type EventFeed interface {
	SubscribeEvents(ctx context.Context, code string) (<-chan game.Event, func())
}

type Handler struct {
	gameSvc *game.Service
	feed    EventFeed
}

func NewHandler(gameSvc *game.Service, feed EventFeed) *Handler {
	return &Handler{gameSvc: gameSvc, feed: feed}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

func (h *Handler) HandleGameWS(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game code"})
		return
	}

	token, err := getTokenFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	claims, err := pkgAuth.ParsePlayerToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if claims.GameCode != code {
		c.JSON(http.StatusForbidden, gin.H{"error": "token is for a different game"})
		return
	}
	playerID, err := uuid.Parse(claims.PlayerID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, err := h.gameSvc.GetState(c.Request.Context(), code, playerID); err != nil {
		if errors.Is(err, appErr.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket connection",
		zap.String("gameCode", code),
		zap.String("playerID", playerID.String()),
	)

	events, cancel := h.feed.SubscribeEvents(c.Request.Context(), code)
	client := newClient(conn, playerID, code, events, cancel)
	client.run()
}

func getTokenFromRequest(c *gin.Context) (string, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token != "" {
		return token, nil
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
			if token != "" {
				return token, nil
			}
		}
	}
	return "", errors.New("missing token")
}

type client struct {
	conn      *websocket.Conn
	playerID  uuid.UUID
	code      string
	events    <-chan game.Event
	cancel    func()
	done      chan struct{}
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, playerID uuid.UUID, code string, events <-chan game.Event, cancel func()) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		playerID:  playerID,
		code:      code,
		events:    events,
		cancel:    cancel,
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

// readPump exists only to notice the peer going away. The event stream is
// one-directional; all player actions arrive over the HTTP API.
func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.cancel()
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logger.Log.Info("WS read error", zap.Error(err),
				zap.String("playerID", c.playerID.String()), zap.String("gameCode", c.code))
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				logger.Log.Info("WS write error", zap.Error(err),
					zap.String("playerID", c.playerID.String()), zap.String("gameCode", c.code))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
