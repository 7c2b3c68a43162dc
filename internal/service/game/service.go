package game

import (
	"context"
	"sort"

	appErr "quiprend-service/pkg/errors"
	"quiprend-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	MaxRounds      int
	CardsPerPlayer int
	RowCount       int
	RowCapacity    int
	ScoreLimit     int
	DeckSize       int
	MinPlayers     int
	MaxPlayers     int
}

func defaultConfig() Config {
	return Config{
		MaxRounds:      6,
		CardsPerPlayer: 10,
		RowCount:       4,
		RowCapacity:    5,
		ScoreLimit:     66,
		DeckSize:       104,
		MinPlayers:     2,
		MaxPlayers:     10,
	}
}

// withDefaults fills zero fields so a partially specified config (for
// example one mapped from a YAML file with some keys omitted) still yields
// a playable rule set.
func (c Config) withDefaults() Config {
	def := defaultConfig()
	if c.MaxRounds <= 0 {
		c.MaxRounds = def.MaxRounds
	}
	if c.CardsPerPlayer <= 0 {
		c.CardsPerPlayer = def.CardsPerPlayer
	}
	if c.RowCount <= 0 {
		c.RowCount = def.RowCount
	}
	if c.RowCapacity <= 0 {
		c.RowCapacity = def.RowCapacity
	}
	if c.ScoreLimit <= 0 {
		c.ScoreLimit = def.ScoreLimit
	}
	if c.DeckSize <= 0 {
		c.DeckSize = def.DeckSize
	}
	if c.MinPlayers <= 0 {
		c.MinPlayers = def.MinPlayers
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = def.MaxPlayers
	}
	return c
}

// Service owns every mutation of the Game aggregate. All operations follow
// the same shape: load a snapshot from the store, mutate it, save it back
// under the optimistic version guard.
type Service struct {
	store   Store
	history History
	cfg     Config
}

// NewService builds the game service. history may be nil when durable
// archival is not wired (tests, dev mode without a database).
func NewService(store Store, history History, cfg Config) *Service {
	return &Service{
		store:   store,
		history: history,
		cfg:     cfg.withDefaults(),
	}
}

// SubmitPlay records a player's committed card for the current turn.
func (s *Service) SubmitPlay(ctx context.Context, code string, playerID uuid.UUID, card int) error {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return err
	}
	if g.Status != StatusPlaying {
		return appErr.ErrGameNotPlaying
	}
	// Placement clears PlayedCard, so a player whose card already landed
	// would otherwise pass the HasPlayed gate and commit twice in one turn.
	if g.TurnResolved || g.WaitingForRowChoice != nil {
		return appErr.ErrAlreadyPlayed
	}

	p := g.PlayerByID(playerID)
	if p == nil {
		return appErr.ErrPlayerNotFound
	}
	if p.IsSpectator {
		return appErr.ErrNotActivePlayer
	}
	if p.HasPlayed() {
		return appErr.ErrAlreadyPlayed
	}

	hand := make([]int, 0, len(p.Hand))
	found := false
	for _, c := range p.Hand {
		if c == card && !found {
			found = true
			continue
		}
		hand = append(hand, c)
	}
	if !found {
		return appErr.ErrCardNotInHand
	}

	p.Hand = hand
	p.PlayedCard = &card
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}

	s.recordAction(ctx, HistoryEntry{
		GameCode:   g.Code,
		Round:      g.Round,
		Turn:       g.CurrentTurn,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Action:     "played",
		Card:       card,
		RowIndex:   -1,
	})
	return nil
}

// pendingPlays returns the not-yet-placed plays of the turn, sorted by
// ascending card value. Placement clears PlayedCard, so re-deriving the
// list after every placement (and after a resumed row choice) always yields
// exactly the remaining work.
func pendingPlays(g *Game) []Play {
	plays := make([]Play, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsSpectator || !p.HasPlayed() {
			continue
		}
		plays = append(plays, Play{PlayerID: p.ID, Name: p.Name, Card: *p.PlayedCard})
	}
	sort.Slice(plays, func(i, j int) bool { return plays[i].Card < plays[j].Card })
	return plays
}

func (s *Service) publish(ctx context.Context, code string, ev Event) {
	if err := s.store.Publish(ctx, code, ev); err != nil {
		logger.Log.Warn("failed to publish game event",
			zap.String("gameCode", code),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
	}
}

func (s *Service) recordAction(ctx context.Context, e HistoryEntry) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordAction(ctx, e); err != nil {
		logger.Log.Warn("failed to record turn history",
			zap.String("gameCode", e.GameCode),
			zap.String("action", e.Action),
			zap.Error(err),
		)
	}
}

func (s *Service) archiveResult(ctx context.Context, g *Game) {
	if s.history == nil {
		return
	}
	scores := make([]FinalScore, 0, len(g.Players))
	for _, p := range g.Players {
		scores = append(scores, FinalScore{
			PlayerID:  p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Spectator: p.IsSpectator,
		})
	}
	if err := s.history.SaveResult(ctx, g.Code, g.FinishReason, g.Round, scores); err != nil {
		logger.Log.Warn("failed to archive finished game",
			zap.String("gameCode", g.Code),
			zap.Error(err),
		)
	}
}
