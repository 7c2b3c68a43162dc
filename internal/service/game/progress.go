package game

import (
	"context"
	"sort"

	appErr "quiprend-service/pkg/errors"
	"quiprend-service/pkg/logger"

	"go.uber.org/zap"
)

// advanceTurn runs after every play of the turn placed without a stall or a
// score-limit finish. It bumps the turn counter, rolls the round over when
// the hands are empty, and re-deals or finishes the game as needed. The
// stall bookkeeping is cleared on every branch.
func (s *Service) advanceTurn(ctx context.Context, g *Game) error {
	g.CurrentTurn++
	if g.CurrentTurn > s.cfg.CardsPerPlayer {
		if g.Round >= g.MaxRounds {
			return s.finish(ctx, g, FinishRoundsCompleted)
		}
		g.Round++
		if err := s.dealRound(g); err != nil {
			return err
		}
		logger.Log.Info("new round dealt",
			zap.String("gameCode", g.Code),
			zap.Int("round", g.Round),
		)
		s.publish(ctx, g.Code, Event{Kind: EventNewRound, Round: g.Round})
	}

	g.TurnResolved = false
	g.WaitingForRowChoice = nil
	g.PendingCard = nil
	return s.store.Save(ctx, g)
}

// dealRound replaces the table with a fresh shuffle: one seed card per row,
// then a full sorted hand for every active player. Scores carry over
// untouched; only cards move.
func (s *Service) dealRound(g *Game) error {
	active := g.ActivePlayers()
	deck := FreshShuffledDeck(s.cfg.DeckSize)
	if len(deck) < s.cfg.RowCount+len(active)*s.cfg.CardsPerPlayer {
		return appErr.ErrNotEnoughCards
	}

	g.Rows = make([]Row, s.cfg.RowCount)
	for i := range g.Rows {
		g.Rows[i] = Row{deck[0]}
		deck = deck[1:]
	}

	for _, p := range g.Players {
		if p.IsSpectator {
			p.Hand = []int{}
		} else {
			hand := append([]int(nil), deck[:s.cfg.CardsPerPlayer]...)
			deck = deck[s.cfg.CardsPerPlayer:]
			sort.Ints(hand)
			p.Hand = hand
		}
		p.PlayedCard = nil
	}

	g.CurrentTurn = 1
	return nil
}
