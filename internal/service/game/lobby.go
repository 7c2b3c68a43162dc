package game

import (
	"context"
	"strings"
	"time"

	appErr "quiprend-service/pkg/errors"
	"quiprend-service/pkg/logger"
	"quiprend-service/pkg/utils/random"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const gameCodeLength = 6

// CreateGame opens a new table in waiting status with the creator as host.
func (s *Service) CreateGame(ctx context.Context, hostName string) (*Game, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, appErr.ErrInvalidPlayerName
	}

	host := &Player{
		ID:   uuid.New(),
		Name: hostName,
		Hand: []int{},
	}
	g := &Game{
		Code:      random.Code(gameCodeLength),
		Status:    StatusWaiting,
		HostID:    host.ID,
		Players:   []*Player{host},
		Rows:      []Row{},
		MaxRounds: s.cfg.MaxRounds,
		CreatedAt: time.Now(),
	}
	if err := s.store.Save(ctx, g); err != nil {
		return nil, err
	}

	logger.Log.Info("game created",
		zap.String("gameCode", g.Code),
		zap.String("host", hostName),
	)
	return g, nil
}

// JoinGame appends a new active player to a waiting game.
func (s *Service) JoinGame(ctx context.Context, code, name string) (*Game, uuid.UUID, error) {
	return s.join(ctx, code, name, false)
}

// JoinAsSpectator appends a spectator. Spectators are accepted at any point
// of the game's life; they never hold cards and never gate a turn.
func (s *Service) JoinAsSpectator(ctx context.Context, code, name string) (*Game, uuid.UUID, error) {
	return s.join(ctx, code, name, true)
}

func (s *Service) join(ctx context.Context, code, name string, spectator bool) (*Game, uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, uuid.Nil, appErr.ErrInvalidPlayerName
	}

	g, err := s.store.Load(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, uuid.Nil, err
	}
	if !spectator {
		if g.Status != StatusWaiting {
			return nil, uuid.Nil, appErr.ErrGameNotJoinable
		}
		if len(g.ActivePlayers()) >= s.cfg.MaxPlayers {
			return nil, uuid.Nil, appErr.ErrGameFull
		}
	}

	p := &Player{
		ID:          uuid.New(),
		Name:        name,
		Hand:        []int{},
		IsSpectator: spectator,
		Ready:       spectator,
	}
	g.Players = append(g.Players, p)
	if err := s.store.Save(ctx, g); err != nil {
		return nil, uuid.Nil, err
	}

	logger.Log.Info("player joined",
		zap.String("gameCode", g.Code),
		zap.String("player", name),
		zap.Bool("spectator", spectator),
	)
	return g, p.ID, nil
}

// ToggleReady flips the player's ready flag while the game is waiting.
func (s *Service) ToggleReady(ctx context.Context, code string, playerID uuid.UUID) error {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if g.Status != StatusWaiting {
		return appErr.ErrGameNotJoinable
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return appErr.ErrPlayerNotFound
	}
	if p.IsSpectator {
		return appErr.ErrNotActivePlayer
	}
	p.Ready = !p.Ready
	return s.store.Save(ctx, g)
}

// StartGame transitions a waiting game to playing: seeds the rows, deals
// the first hands, and opens turn 1 of round 1. Host only.
func (s *Service) StartGame(ctx context.Context, code string, playerID uuid.UUID) error {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if g.HostID != playerID {
		return appErr.ErrUnauthorized
	}
	if g.Status != StatusWaiting {
		return appErr.ErrGameNotJoinable
	}

	active := g.ActivePlayers()
	if len(active) < s.cfg.MinPlayers {
		return appErr.ErrNotEnoughPlayers
	}
	for _, p := range active {
		if !p.Ready {
			return appErr.ErrPlayersNotReady
		}
	}

	g.Round = 1
	if err := s.dealRound(g); err != nil {
		return err
	}
	g.Status = StatusPlaying
	g.TurnResolved = false
	g.WaitingForRowChoice = nil
	g.PendingCard = nil
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	logger.Log.Info("game started",
		zap.String("gameCode", g.Code),
		zap.Int("players", len(active)),
	)
	return nil
}

// RestartGame resets a table back to waiting for another game. Scores and
// hands are wiped; the player list (spectators included) stays. Host only.
func (s *Service) RestartGame(ctx context.Context, code string, playerID uuid.UUID) error {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if g.HostID != playerID {
		return appErr.ErrUnauthorized
	}

	for _, p := range g.Players {
		if !p.IsSpectator {
			p.Score = 0
			p.Ready = false
		}
		p.Hand = []int{}
		p.PlayedCard = nil
	}
	g.Status = StatusWaiting
	g.Round = 0
	g.CurrentTurn = 0
	g.Rows = []Row{}
	g.TurnResolved = false
	g.WaitingForRowChoice = nil
	g.PendingCard = nil
	g.FinishReason = ""
	return s.store.Save(ctx, g)
}

// LeaveGame removes the player from a waiting game, or converts them to a
// spectator mid-game so card accounting for the running round stays intact.
// A player who owes a row choice cannot leave; the stalled turn would have
// no way to resume.
func (s *Service) LeaveGame(ctx context.Context, code string, playerID uuid.UUID) error {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return err
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return appErr.ErrPlayerNotFound
	}
	if g.WaitingForRowChoice != nil && *g.WaitingForRowChoice == playerID {
		return appErr.ErrRowChoicePending
	}

	if g.Status == StatusPlaying && !p.IsSpectator {
		p.IsSpectator = true
		p.Hand = []int{}
		p.PlayedCard = nil
		p.Ready = true
	} else {
		players := make([]*Player, 0, len(g.Players)-1)
		for _, other := range g.Players {
			if other.ID != playerID {
				players = append(players, other)
			}
		}
		g.Players = players
	}

	if g.HostID == playerID {
		for _, other := range g.Players {
			if !other.IsSpectator {
				g.HostID = other.ID
				break
			}
		}
	}
	return s.store.Save(ctx, g)
}
