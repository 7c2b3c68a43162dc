package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"quiprend-service/internal/middleware"
	"quiprend-service/internal/service"
	"quiprend-service/internal/ws"
	pkgAuth "quiprend-service/pkg/auth"
	appErr "quiprend-service/pkg/errors"
	"quiprend-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Game, services.Store)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/quiprend/v1")
	{
		games := v1.Group("/games")
		{
			games.POST("", handler.CreateGame)
			games.POST("/:code/join", handler.JoinGame)
			games.POST("/:code/spectate", handler.JoinAsSpectator)

			authed := games.Group("")
			authed.Use(middleware.AuthRequired())
			{
				authed.GET("/:code", handler.GetState)
				authed.POST("/:code/ready", handler.ToggleReady)
				authed.POST("/:code/start", handler.StartGame)
				authed.POST("/:code/play", handler.Play)
				authed.POST("/:code/resolve", handler.ResolveTurn)
				authed.POST("/:code/choose-row", handler.ChooseRow)
				authed.POST("/:code/restart", handler.RestartGame)
				authed.POST("/:code/leave", handler.LeaveGame)
			}
		}

		v1.GET("/archives", handler.ListArchives)
		v1.GET("/archives/:code", handler.GetArchive)
	}

	r.GET("/ws/game/:code", wsHandler.HandleGameWS)
}

type createGameBody struct {
	Name string `json:"name" binding:"required"`
}

type joinGameBody struct {
	Name string `json:"name" binding:"required"`
}

type playBody struct {
	Card int `json:"card" binding:"required,min=1"`
}

type chooseRowBody struct {
	RowIndex *int `json:"rowIndex" binding:"required"`
}

func (h *Handler) CreateGame(c *gin.Context) {
	var body createGameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.services.Game.CreateGame(c.Request.Context(), body.Name)
	if err != nil {
		h.handleGameError(c, err)
		return
	}

	token, err := pkgAuth.GeneratePlayerToken(g.HostID, g.Code, false)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Created(c, gin.H{
		"code":     g.Code,
		"playerId": g.HostID,
		"token":    token,
	})
}

func (h *Handler) JoinGame(c *gin.Context) {
	h.join(c, false)
}

func (h *Handler) JoinAsSpectator(c *gin.Context) {
	h.join(c, true)
}

func (h *Handler) join(c *gin.Context, spectator bool) {
	var body joinGameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	var (
		playerID uuid.UUID
		err      error
	)
	if spectator {
		_, playerID, err = h.services.Game.JoinAsSpectator(c.Request.Context(), code, body.Name)
	} else {
		_, playerID, err = h.services.Game.JoinGame(c.Request.Context(), code, body.Name)
	}
	if err != nil {
		h.handleGameError(c, err)
		return
	}

	token, err := pkgAuth.GeneratePlayerToken(playerID, code, spectator)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Created(c, gin.H{
		"code":     code,
		"playerId": playerID,
		"token":    token,
	})
}

func (h *Handler) GetState(c *gin.Context) {
	code, playerID, ok := h.gameIdentity(c)
	if !ok {
		return
	}

	view, err := h.services.Game.GetState(c.Request.Context(), code, playerID)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) ToggleReady(c *gin.Context) {
	code, playerID, ok := h.gameIdentity(c)
	if !ok {
		return
	}
	if err := h.services.Game.ToggleReady(c.Request.Context(), code, playerID); err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

func (h *Handler) StartGame(c *gin.Context) {
	code, playerID, ok := h.gameIdentity(c)
	if !ok {
		return
	}
	if err := h.services.Game.StartGame(c.Request.Context(), code, playerID); err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "started"})
}

// Play commits a card then immediately attempts resolution. The attempt is
// idempotent and version-guarded, so it is safe for every submitter to try;
// losing the race to another resolver is not an error worth reporting.
func (h *Handler) Play(c *gin.Context) {
	code, playerID, ok := h.gameIdentity(c)
	if !ok {
		return
	}

	var body playBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Game.SubmitPlay(c.Request.Context(), code, playerID, body.Card); err != nil {
		h.handleGameError(c, err)
		return
	}

	if err := h.services.Game.TryResolveTurn(c.Request.Context(), code); err != nil &&
		!errors.Is(err, appErr.ErrVersionConflict) {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "played"})
}

func (h *Handler) ResolveTurn(c *gin.Context) {
	code, _, ok := h.gameIdentity(c)
	if !ok {
		return
	}
	if err := h.services.Game.TryResolveTurn(c.Request.Context(), code); err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

func (h *Handler) ChooseRow(c *gin.Context) {
	code, playerID, ok := h.gameIdentity(c)
	if !ok {
		return
	}

	var body chooseRowBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Game.ResolveRowChoice(c.Request.Context(), code, playerID, *body.RowIndex); err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "resolved"})
}

func (h *Handler) RestartGame(c *gin.Context) {
	code, playerID, ok := h.gameIdentity(c)
	if !ok {
		return
	}
	if err := h.services.Game.RestartGame(c.Request.Context(), code, playerID); err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "restarted"})
}

func (h *Handler) LeaveGame(c *gin.Context) {
	code, playerID, ok := h.gameIdentity(c)
	if !ok {
		return
	}
	if err := h.services.Game.LeaveGame(c.Request.Context(), code, playerID); err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "left"})
}

func (h *Handler) ListArchives(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Archive.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"items": result.Items,
		"total": result.Total,
		"page":  page,
		"size":  size,
	})
}

func (h *Handler) GetArchive(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	arch, logs, err := h.services.Archive.Get(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, appErr.ErrGameNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"archive": arch,
		"history": logs,
	})
}

// gameIdentity pulls the authenticated player and checks the token was
// minted for the game named in the path.
func (h *Handler) gameIdentity(c *gin.Context) (string, uuid.UUID, bool) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	v, ok := c.Get(middleware.ContextPlayerIDKey)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return "", uuid.Nil, false
	}
	playerID, ok := v.(uuid.UUID)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return "", uuid.Nil, false
	}

	tokenCode, _ := c.Get(middleware.ContextGameCodeKey)
	if tokenCode != code {
		response.Error(c, http.StatusForbidden, "token is for a different game")
		return "", uuid.Nil, false
	}
	return code, playerID, true
}

func (h *Handler) handleGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrGameNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErr.ErrInvalidRow),
		errors.Is(err, appErr.ErrInvalidPlayerName),
		errors.Is(err, appErr.ErrCardNotInHand),
		errors.Is(err, appErr.ErrNotEnoughPlayers),
		errors.Is(err, appErr.ErrPlayersNotReady),
		errors.Is(err, appErr.ErrNotEnoughCards):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrAlreadyPlayed),
		errors.Is(err, appErr.ErrGameNotJoinable),
		errors.Is(err, appErr.ErrGameNotPlaying),
		errors.Is(err, appErr.ErrGameFull),
		errors.Is(err, appErr.ErrRowChoicePending):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErr.ErrNotActivePlayer),
		errors.Is(err, appErr.ErrPlayerNotFound):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErr.ErrVersionConflict):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return parsed, nil
}
