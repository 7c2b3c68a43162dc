package game

import (
	"context"

	"github.com/google/uuid"
)

// PlayerView is a player's state as shown to a specific observer. Hands and
// uncommitted plays belong to their owner only; everyone else sees counts.
type PlayerView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Ready       bool      `json:"ready"`
	IsSpectator bool      `json:"isSpectator"`
	IsHost      bool      `json:"isHost"`
	HandSize    int       `json:"handSize"`
	HasPlayed   bool      `json:"hasPlayed"`
	Hand        []int     `json:"hand,omitempty"`
	PlayedCard  *int      `json:"playedCard,omitempty"`
}

// StateView is the whole-game snapshot tailored to one observer.
type StateView struct {
	Code                string       `json:"code"`
	Status              Status       `json:"status"`
	Round               int          `json:"round"`
	CurrentTurn         int          `json:"currentTurn"`
	MaxRounds           int          `json:"maxRounds"`
	Rows                []Row        `json:"rows"`
	TurnResolved        bool         `json:"turnResolved"`
	WaitingForRowChoice *uuid.UUID   `json:"waitingForRowChoice,omitempty"`
	PendingCard         *int         `json:"pendingCard,omitempty"`
	FinishReason        FinishReason `json:"finishReason,omitempty"`
	Players             []PlayerView `json:"players"`
}

// GetState returns the observer-tailored snapshot of a game.
func (s *Service) GetState(ctx context.Context, code string, forPlayer uuid.UUID) (*StateView, error) {
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return nil, err
	}

	view := &StateView{
		Code:                g.Code,
		Status:              g.Status,
		Round:               g.Round,
		CurrentTurn:         g.CurrentTurn,
		MaxRounds:           g.MaxRounds,
		Rows:                g.Rows,
		TurnResolved:        g.TurnResolved,
		WaitingForRowChoice: g.WaitingForRowChoice,
		PendingCard:         g.PendingCard,
		FinishReason:        g.FinishReason,
		Players:             make([]PlayerView, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		pv := PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			Ready:       p.Ready,
			IsSpectator: p.IsSpectator,
			IsHost:      p.ID == g.HostID,
			HandSize:    len(p.Hand),
			HasPlayed:   p.HasPlayed(),
		}
		if p.ID == forPlayer {
			pv.Hand = append([]int(nil), p.Hand...)
			pv.PlayedCard = p.PlayedCard
		}
		view.Players = append(view.Players, pv)
	}
	return view, nil
}
